package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
	"golang.org/x/xerrors"

	"random-sticker-sender/internal/ports"
)

// Terminal обеспечивает интерактивный ввод данных для входа через терминал.
// Он реализует интерфейс ports.Prompter.
type Terminal struct {
	mu      sync.Mutex
	phone   string
	in      *bufio.Reader
	out     io.Writer
	stdinfd int

	isTerminal func(fd int) bool
	readHidden func(fd int) ([]byte, error)
}

var _ ports.Prompter = (*Terminal)(nil)

// NewTerminal создает новый экземпляр Terminal.
// Непустой phone будет возвращен на первый запрос номера вместо ввода.
func NewTerminal(phone string) *Terminal {
	return newTerminal(phone, os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

func newTerminal(phone string, in io.Reader, out io.Writer, fd int) *Terminal {
	return &Terminal{
		phone:      phone,
		in:         bufio.NewReader(in),
		out:        out,
		stdinfd:    fd,
		isTerminal: term.IsTerminal,
		readHidden: term.ReadPassword,
	}
}

// PhoneNumber запрашивает номер телефона.
// Заданный заранее номер используется один раз: если его отклонят, номер будет запрошен.
func (t *Terminal) PhoneNumber(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phone != "" {
		phone := t.phone
		t.phone = ""
		fmt.Fprintln(t.out, "Using phone number from configuration")
		return phone, nil
	}
	return t.readLine(ctx, "Enter phone number: ", "phone number")
}

// Code запрашивает код подтверждения.
// В терминале код вводится без отображения.
func (t *Terminal) Code(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isTerminal(t.stdinfd) {
		return t.readLine(ctx, "Enter code: ", "code")
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(t.out, "Enter code: ")
		raw, err := t.readHidden(t.stdinfd)
		fmt.Fprintln(t.out) // Новая строка после ввода
		if err != nil {
			return "", xerrors.Errorf("failed to read code: %w", err)
		}
		if code := strings.TrimSpace(string(raw)); code != "" {
			return code, nil
		}
	}
}

// readLine печатает prompt и читает непустую строку.
func (t *Terminal) readLine(ctx context.Context, prompt, what string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(t.out, prompt)
		line, err := t.in.ReadString('\n')
		value := strings.TrimSpace(line)
		if err != nil {
			if err == io.EOF && value != "" {
				return value, nil
			}
			return "", xerrors.Errorf("failed to read %s: %w", what, err)
		}
		if value != "" {
			return value, nil
		}
	}
}
