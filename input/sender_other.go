//go:build !windows

package input

import "fmt"

// WindowSender needs user32 and only exists on Windows
type WindowSender struct{}

var _ Sender = (*WindowSender)(nil)

func FindWindow(pid uint32) (*WindowSender, error) {
	return nil, fmt.Errorf("pid %d: %w", pid, ErrUnsupported)
}

func (w *WindowSender) Send(Event, bool) error {
	return ErrUnsupported
}

func (w *WindowSender) CursorPosition() (Position, error) {
	return Position{}, ErrUnsupported
}
