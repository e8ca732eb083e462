package term

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipedTerminal(phone, input string) (*Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	t := newTerminal(phone, strings.NewReader(input), out, -1)
	t.isTerminal = func(int) bool { return false }
	return t, out
}

func TestTerminal_PresetPhoneUsedOnce(t *testing.T) {
	tm, out := pipedTerminal("+100", "+200\n")

	phone, err := tm.PhoneNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+100", phone)
	assert.NotContains(t, out.String(), "+100")

	phone, err = tm.PhoneNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+200", phone)
	assert.Contains(t, out.String(), "Enter phone number: ")
}

func TestTerminal_SkipsEmptyLines(t *testing.T) {
	tm, out := pipedTerminal("", "\n   \n+300\n")

	phone, err := tm.PhoneNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+300", phone)
	assert.Equal(t, 3, strings.Count(out.String(), "Enter phone number: "))
}

func TestTerminal_CodeFromPipe(t *testing.T) {
	tm, _ := pipedTerminal("", " 12345 \n")

	code, err := tm.Code(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12345", code)
}

func TestTerminal_LastLineWithoutNewline(t *testing.T) {
	tm, _ := pipedTerminal("", "54321")

	code, err := tm.Code(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "54321", code)
}

func TestTerminal_EOF(t *testing.T) {
	tm, _ := pipedTerminal("", "")

	_, err := tm.Code(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "failed to read code")
}

func TestTerminal_CanceledContext(t *testing.T) {
	tm, out := pipedTerminal("", "+100\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tm.PhoneNumber(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestTerminal_HiddenCodeInput(t *testing.T) {
	out := &bytes.Buffer{}
	tm := newTerminal("", strings.NewReader(""), out, 7)
	tm.isTerminal = func(fd int) bool { return fd == 7 }

	inputs := [][]byte{[]byte(""), []byte("777\n")}
	tm.readHidden = func(fd int) ([]byte, error) {
		require.Equal(t, 7, fd)
		next := inputs[0]
		inputs = inputs[1:]
		return next, nil
	}

	code, err := tm.Code(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "777", code)
	assert.Equal(t, 2, strings.Count(out.String(), "Enter code: "))
	assert.NotContains(t, out.String(), "777")
}

func TestTerminal_HiddenCodeError(t *testing.T) {
	tm := newTerminal("", strings.NewReader(""), io.Discard, 7)
	tm.isTerminal = func(int) bool { return true }
	readErr := errors.New("inappropriate ioctl")
	tm.readHidden = func(int) ([]byte, error) { return nil, readErr }

	_, err := tm.Code(context.Background())
	require.ErrorIs(t, err, readErr)
}
