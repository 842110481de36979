//go:build windows

package input

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procSendMessageW   = user32.NewProc("SendMessageW")
	procPostMessageW   = user32.NewProc("PostMessageW")
	procMapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
	procGetCursorPos   = user32.NewProc("GetCursorPos")
	procScreenToClient = user32.NewProc("ScreenToClient")
	procGetWindow      = user32.NewProc("GetWindow")
)

const (
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208

	mkLButton = 0x0001
	mkRButton = 0x0002
	mkShift   = 0x0004
	mkControl = 0x0008
	mkMButton = 0x0010

	mapvkVKToVSC = 0
	gwOwner      = 4

	// lParam bits of a key up: previous state down, transition up
	keyUpFlags = 0xC0000000
)

// WindowSender posts window messages to the game's top level window
type WindowSender struct {
	hwnd windows.HWND
	log  *logger.Logger
}

var _ Sender = (*WindowSender)(nil)

var (
	enumOnce     sync.Once
	enumCallback uintptr
	enumMu       sync.Mutex
	enumPID      uint32
	enumFound    windows.HWND
)

func enumWindow(hwnd windows.HWND, _ uintptr) uintptr {
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid != enumPID {
		return 1
	}
	if !windows.IsWindowVisible(hwnd) {
		return 1
	}
	if owner, _, _ := procGetWindow.Call(uintptr(hwnd), gwOwner); owner != 0 {
		return 1
	}
	enumFound = hwnd
	return 0
}

// FindWindow returns a sender for the visible top level window of pid
func FindWindow(pid uint32) (*WindowSender, error) {
	enumOnce.Do(func() {
		enumCallback = windows.NewCallback(enumWindow)
	})

	enumMu.Lock()
	defer enumMu.Unlock()
	enumPID = pid
	enumFound = 0
	// EnumWindows reports an error when the callback stops it early
	_ = windows.EnumWindows(enumCallback, nil)
	if enumFound == 0 {
		return nil, fmt.Errorf("pid %d: %w", pid, ErrWindowNotFound)
	}

	w := &WindowSender{
		hwnd: enumFound,
		log:  logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.Black, fmt.Sprintf("window-%d", pid))),
	}
	w.log.Infoln("Sending input to window", fmt.Sprintf("0x%x", uintptr(w.hwnd)))
	return w, nil
}

func scanCode(key Key) uintptr {
	code, _, _ := procMapVirtualKeyW.Call(uintptr(key), mapvkVKToVSC)
	return code
}

func (w *WindowSender) message(msg uint32, wparam, lparam uintptr, wait bool) error {
	if wait {
		// SendMessage blocks until the window procedure returns
		procSendMessageW.Call(uintptr(w.hwnd), uintptr(msg), wparam, lparam)
		return nil
	}
	if ok, _, err := procPostMessageW.Call(uintptr(w.hwnd), uintptr(msg), wparam, lparam); ok == 0 {
		return fmt.Errorf("PostMessage 0x%04x: %w", msg, err)
	}
	return nil
}

func buttonMessages(b Button) (down, up uint32, flag uintptr) {
	switch b {
	case ButtonRight:
		return wmRButtonDown, wmRButtonUp, mkRButton
	case ButtonMiddle:
		return wmMButtonDown, wmMButtonUp, mkMButton
	}
	return wmLButtonDown, wmLButtonUp, mkLButton
}

func (w *WindowSender) Send(ev Event, wait bool) error {
	switch ev.Kind {
	case KeyDown:
		return w.message(wmKeyDown, uintptr(ev.Key), 1|scanCode(ev.Key)<<16, wait)
	case KeyUp:
		return w.message(wmKeyUp, uintptr(ev.Key), 1|scanCode(ev.Key)<<16|keyUpFlags, wait)
	}

	down, up, flag := buttonMessages(ev.Button)
	var wparam uintptr
	if ev.Mods.Has(ModShift) {
		wparam |= mkShift
	}
	if ev.Mods.Has(ModCtrl) {
		wparam |= mkControl
	}
	lparam := uintptr(uint16(ev.Pos.Y))<<16 | uintptr(uint16(ev.Pos.X))

	if ev.Kind == ButtonDown {
		return w.message(down, wparam|flag, lparam, wait)
	}
	return w.message(up, wparam, lparam, wait)
}

type point struct {
	X, Y int32
}

func (w *WindowSender) CursorPosition() (Position, error) {
	var pt point
	if ok, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); ok == 0 {
		return Position{}, fmt.Errorf("GetCursorPos: %w", err)
	}
	if ok, _, err := procScreenToClient.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&pt))); ok == 0 {
		return Position{}, fmt.Errorf("ScreenToClient: %w", err)
	}
	return Position{X: int(pt.X), Y: int(pt.Y)}, nil
}
