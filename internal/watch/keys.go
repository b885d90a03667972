package watch

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ctrlC is the byte a raw-mode terminal delivers for Ctrl-C instead of
// raising SIGINT.
const ctrlC = 3

// IsQuitKey reports whether the key press should end a watch session.
func IsQuitKey(key byte) bool {
	return key == 'q' || key == 'Q' || key == ctrlC
}

// KeyListener delivers single key presses from a terminal in raw mode.
// When the input is not a terminal the listener is inert: Keys never
// fires and Restore is a no-op, so piped runs stop on signals alone.
type KeyListener struct {
	fd       int
	oldState *term.State
	keys     chan byte
}

// ListenKeys puts the input in raw mode and starts a reader goroutine.
// Callers must Restore before printing normal terminal output on exit.
func ListenKeys(in *os.File) *KeyListener {
	l := &KeyListener{fd: int(in.Fd()), keys: make(chan byte, 1)}
	if !term.IsTerminal(l.fd) {
		return l
	}
	oldState, err := term.MakeRaw(l.fd)
	if err != nil {
		return l
	}
	l.oldState = oldState
	go l.loop(in)
	return l
}

// Keys is the channel key presses arrive on.
func (l *KeyListener) Keys() <-chan byte {
	return l.keys
}

// Restore returns the terminal to its previous mode. Safe to call when
// raw mode was never entered, and safe to call more than once.
func (l *KeyListener) Restore() {
	if l.oldState == nil {
		return
	}
	_ = term.Restore(l.fd, l.oldState)
	l.oldState = nil
}

func (l *KeyListener) loop(in io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		select {
		case l.keys <- buf[0]:
		default:
			// Drop keys nobody is waiting for.
		}
	}
}
