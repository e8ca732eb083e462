package sender

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"random-sticker-sender/internal/ports"
)

// Названия стратегий в конфигурации.
const (
	StrategyRandom     = "random"
	StrategyRoundRobin = "round_robin"
)

// NewStrategy возвращает стратегию по ее названию из конфигурации.
func NewStrategy(name string) (ports.Strategy, error) {
	switch name {
	case "", StrategyRandom:
		return NewRandomStrategy(), nil
	case StrategyRoundRobin:
		return NewRoundRobinStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// RandomStrategy выбирает равномерно распределенный индекс в [0, size).
type RandomStrategy struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomStrategy создает стратегию со случайным зерном.
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRandomStrategy создает детерминированную стратегию.
func NewSeededRandomStrategy(seed1, seed2 uint64) *RandomStrategy {
	return &RandomStrategy{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *RandomStrategy) Next(size int) (int, error) {
	if size <= 0 {
		return 0, ErrEmptyCatalog
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(size), nil
}

// RoundRobinStrategy перебирает стикеры по кругу.
type RoundRobinStrategy struct {
	// currentIndex хранит число уже сделанных выборов.
	currentIndex atomic.Uint32
}

// NewRoundRobinStrategy создает Round Robin стратегию.
func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{}
}

// Next возвращает следующий индекс, инкрементируя счетчик по кругу.
func (s *RoundRobinStrategy) Next(size int) (int, error) {
	if size <= 0 {
		return 0, ErrEmptyCatalog
	}
	idx := s.currentIndex.Add(1) - 1
	return int(idx % uint32(size)), nil
}
