package main

import (
	"os"

	"golang.org/x/term"
)

// startKeyboard puts stdin in raw mode and reads it byte by byte into the
// returned channel. The reader goroutine never touches the machine; the step
// loop drains the channel and raises interrupts between steps. The returned
// stop function restores the terminal.
//
// If stdin is not a terminal (piped input, CI), raw mode is skipped and the
// bytes are delivered as-is.
func startKeyboard() (<-chan byte, func()) {
	keys := make(chan byte, 64)

	fd := int(os.Stdin.Fd())
	var oldState *term.State
	if term.IsTerminal(fd) {
		if s, err := term.MakeRaw(fd); err == nil {
			oldState = s
		}
	}

	raw := oldState != nil
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 0 {
				continue
			}
			b := buf[0]
			// Raw mode sends CR for Enter and DEL for Backspace.
			if raw && b == '\r' {
				b = '\n'
			}
			if raw && b == 0x7F {
				b = 0x08
			}
			select {
			case keys <- b:
			default: // machine is behind; drop the key
			}
		}
	}()

	stop := func() {
		if oldState != nil {
			_ = term.Restore(fd, oldState)
			oldState = nil
		}
	}
	return keys, stop
}
