//go:build windows

package hotkey

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"unicode"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

const (
	modAlt      = 0x0001
	modControl  = 0x0002
	modShift    = 0x0004
	modWin      = 0x0008
	modNoRepeat = 0x4000

	wmHotkey   = 0x0312
	wmQuit     = 0x0012
	pmNoRemove = 0x0000
)

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// windowsListener uses RegisterHotKey with a thread message queue. Hotkeys
// belong to the registering thread, so Register starts a message loop on a
// locked OS thread, registers there and reports the outcome before
// returning. Listen runs the callbacks the loop forwards.
type windowsListener struct {
	mu       sync.Mutex
	threadID uint32
	loopErr  error

	events chan func()
	quit   chan struct{}
	done   chan struct{}

	closeOnce sync.Once
}

// NewListener returns the Windows hotkey listener.
func NewListener() (Listener, error) {
	if err := procRegisterHotKey.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &windowsListener{quit: make(chan struct{})}, nil
}

func (l *windowsListener) Register(handlers map[string]func()) error {
	if l.done != nil {
		return errors.New("hotkeys already registered")
	}

	combos := make([]string, 0, len(handlers))
	for s := range handlers {
		combos = append(combos, s)
	}
	sort.Strings(combos)

	l.events = make(chan func())
	l.done = make(chan struct{})
	ready := make(chan error, 1)
	go l.loop(combos, handlers, ready)
	return <-ready
}

func winModifiers(combo Combo) uintptr {
	mods := uintptr(modNoRepeat)
	for _, m := range combo.Modifiers {
		switch m {
		case ModCtrl:
			mods |= modControl
		case ModAlt:
			mods |= modAlt
		case ModShift:
			mods |= modShift
		case ModSuper:
			mods |= modWin
		}
	}
	return mods
}

// loop owns the OS thread the hotkeys are registered on. A combo another
// application holds is skipped and reported; the loop only gives up when
// nothing registered.
func (l *windowsListener) loop(combos []string, handlers map[string]func(), ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)

	byID := make(map[uintptr]func(), len(combos))
	defer func() {
		for id := range byID {
			procUnregisterHotKey.Call(0, id)
		}
	}()

	var failed []string
	for i, s := range combos {
		combo, err := ParseCombo(s)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", s, err))
			continue
		}
		id := uintptr(i + 1)
		vk := uintptr(unicode.ToUpper(combo.Key))
		if r, _, err := procRegisterHotKey.Call(0, id, winModifiers(combo), vk); r == 0 {
			failed = append(failed, fmt.Sprintf("%s (%v)", s, err))
			continue
		}
		byID[id] = handlers[s]
	}

	if len(byID) == 0 {
		ready <- &RegisterError{Failed: failed}
		return
	}

	// the thread needs a message queue before Close can post WM_QUIT to it
	var m msg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmNoRemove)
	l.mu.Lock()
	l.threadID = windows.GetCurrentThreadId()
	l.mu.Unlock()

	if len(failed) > 0 {
		ready <- &RegisterError{Failed: failed, Registered: len(byID)}
	} else {
		ready <- nil
	}

	for {
		r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case -1:
			l.mu.Lock()
			l.loopErr = fmt.Errorf("GetMessage: %w", err)
			l.mu.Unlock()
			return
		case 0:
			return
		}
		if m.message != wmHotkey {
			continue
		}
		fn := byID[m.wParam]
		if fn == nil {
			continue
		}
		select {
		case l.events <- fn:
		case <-l.quit:
			return
		}
	}
}

func (l *windowsListener) Listen(ctx context.Context) error {
	if l.done == nil {
		return errors.New("hotkeys not registered")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.events:
			fn()
		case <-l.done:
			l.mu.Lock()
			err := l.loopErr
			l.mu.Unlock()
			if err != nil {
				return err
			}
			return errors.New("hotkey message loop stopped")
		}
	}
}

// Close stops the message loop; hotkeys are unregistered on its thread.
func (l *windowsListener) Close() error {
	l.closeOnce.Do(func() {
		close(l.quit)
		l.mu.Lock()
		threadID := l.threadID
		l.mu.Unlock()
		if threadID != 0 {
			procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0)
		}
		if l.done != nil {
			<-l.done
		}
	})
	return nil
}
