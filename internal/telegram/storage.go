package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"
	"github.com/gotd/td/session"
)

var (
	// ErrWrongEncryptionKey возвращается, когда хранилище зашифровано другим ключом.
	ErrWrongEncryptionKey = errors.New("wrong encryption key")
	// ErrEmptyEncryptionKey возвращается для пустого ключа.
	ErrEmptyEncryptionKey = errors.New("encryption key is empty")
)

var _ session.Storage = (*EncryptedFileStorage)(nil)

// EncryptedFileStorage хранит сессию MTProto в файле, зашифрованном age
// по парольной фразе (scrypt).
type EncryptedFileStorage struct {
	path       string
	passphrase string
	// workFactor — log2 параметра N для scrypt, 0 — значение age по умолчанию.
	workFactor int

	mux sync.Mutex
}

// NewEncryptedFileStorage создает хранилище. Файл не читается до первого обращения.
func NewEncryptedFileStorage(path, passphrase string, workFactor int) (*EncryptedFileStorage, error) {
	if passphrase == "" {
		return nil, ErrEmptyEncryptionKey
	}
	if workFactor < 0 || workFactor > 30 {
		return nil, fmt.Errorf("scrypt work factor %d out of range", workFactor)
	}
	return &EncryptedFileStorage{path: path, passphrase: passphrase, workFactor: workFactor}, nil
}

// Path возвращает путь к файлу сессии.
func (f *EncryptedFileStorage) Path() string {
	return f.path
}

// Exists сообщает, была ли сессия уже сохранена.
func (f *EncryptedFileStorage) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Verify проверяет, что существующий файл расшифровывается текущим ключом.
func (f *EncryptedFileStorage) Verify(ctx context.Context) error {
	_, err := f.LoadSession(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	return err
}

// LoadSession реализует session.Storage.
func (f *EncryptedFileStorage) LoadSession(_ context.Context) ([]byte, error) {
	f.mux.Lock()
	defer f.mux.Unlock()

	ciphertext, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	identity, err := age.NewScryptIdentity(f.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		if errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, ErrWrongEncryptionKey
		}
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}
	return data, nil
}

// StoreSession реализует session.Storage. Файл заменяется атомарно.
func (f *EncryptedFileStorage) StoreSession(_ context.Context, data []byte) error {
	f.mux.Lock()
	defer f.mux.Unlock()

	recipient, err := age.NewScryptRecipient(f.passphrase)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}
	if f.workFactor > 0 {
		recipient.SetWorkFactor(f.workFactor)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(ciphertext.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
