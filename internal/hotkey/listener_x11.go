//go:build linux || freebsd || openbsd || netbsd || dragonfly

package hotkey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// pollInterval is how often the keyboard state is sampled. A key press lasts
// far longer than this.
const pollInterval = 20 * time.Millisecond

// CapsLock and NumLock are not part of the mask, so combos fire regardless of
// lock state.
const relevantMask = uint16(xproto.ModMaskShift | xproto.ModMaskControl | xproto.ModMask1 | xproto.ModMask4)

// keymap is the 256-bit pressed-key vector returned by QueryKeymap.
type keymap [32]byte

func (k *keymap) down(code xproto.Keycode) bool {
	return k[code/8]&(1<<(code%8)) != 0
}

type chord struct {
	code xproto.Keycode
	mods uint16
}

// x11Listener observes the keyboard with QueryKeymap instead of grabbing
// keys, so combos keep reaching the focused application. A combo fires once
// when its key goes down while exactly its modifiers are held; holding the
// key does not repeat it.
type x11Listener struct {
	conn     *xgb.Conn
	keycodes map[rune]xproto.Keycode
	modcodes map[uint16][]xproto.Keycode
	interval time.Duration

	mu       sync.Mutex
	bindings map[chord]func()

	closeOnce sync.Once
}

// NewListener connects to the X server named by $DISPLAY.
func NewListener() (Listener, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("%w: DISPLAY is not set (an X11 or XWayland session is required)", ErrUnavailable)
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	setup := xproto.Setup(conn)
	keycodes, err := loadKeycodes(conn, setup)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	modcodes, err := loadModifierCodes(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &x11Listener{
		conn:     conn,
		keycodes: keycodes,
		modcodes: modcodes,
		interval: pollInterval,
		bindings: make(map[chord]func()),
	}, nil
}

// loadKeycodes maps ASCII letters and digits to the keycode producing them
// unshifted.
func loadKeycodes(conn *xgb.Conn, setup *xproto.SetupInfo) (map[rune]xproto.Keycode, error) {
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to read keyboard mapping: %w", err)
	}

	per := int(reply.KeysymsPerKeycode)
	codes := make(map[rune]xproto.Keycode)
	if per == 0 {
		return codes, nil
	}
	for i := 0; i < int(count) && i*per < len(reply.Keysyms); i++ {
		sym := reply.Keysyms[i*per]
		if sym >= 0x80 {
			continue
		}
		r := rune(sym)
		if !isComboKey(byte(r)) {
			continue
		}
		if _, seen := codes[r]; !seen {
			codes[r] = setup.MinKeycode + xproto.Keycode(i)
		}
	}
	return codes, nil
}

// loadModifierCodes maps each relevant modifier mask bit to the keycodes
// that set it (Control_L and Control_R for ControlMask, and so on).
func loadModifierCodes(conn *xgb.Conn) (map[uint16][]xproto.Keycode, error) {
	reply, err := xproto.GetModifierMapping(conn).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to read modifier mapping: %w", err)
	}

	per := int(reply.KeycodesPerModifier)
	codes := make(map[uint16][]xproto.Keycode)
	for i, code := range reply.Keycodes {
		if code == 0 || per == 0 {
			continue
		}
		bit := uint16(1) << (i / per)
		if bit&relevantMask == 0 {
			continue
		}
		codes[bit] = append(codes[bit], code)
	}
	return codes, nil
}

func modifierMask(combo Combo) uint16 {
	var mask uint16
	for _, m := range combo.Modifiers {
		switch m {
		case ModCtrl:
			mask |= xproto.ModMaskControl
		case ModAlt:
			mask |= xproto.ModMask1
		case ModShift:
			mask |= xproto.ModMaskShift
		case ModSuper:
			mask |= xproto.ModMask4
		}
	}
	return mask
}

func (l *x11Listener) Register(handlers map[string]func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	combos := make([]string, 0, len(handlers))
	for c := range handlers {
		combos = append(combos, c)
	}
	sort.Strings(combos)

	var failed []string
	registered := 0
	for _, s := range combos {
		combo, err := ParseCombo(s)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", s, err))
			continue
		}
		code, ok := l.keycodes[combo.Key]
		if !ok {
			failed = append(failed, fmt.Sprintf("%s (no keycode for %q)", s, combo.Key))
			continue
		}
		l.bindings[chord{code: code, mods: modifierMask(combo)}] = handlers[s]
		registered++
	}

	if len(failed) > 0 {
		return &RegisterError{Failed: failed, Registered: registered}
	}
	return nil
}

// modifiers returns the relevant modifier mask held in k.
func (l *x11Listener) modifiers(k *keymap) uint16 {
	var mask uint16
	for bit, codes := range l.modcodes {
		for _, code := range codes {
			if k.down(code) {
				mask |= bit
				break
			}
		}
	}
	return mask
}

// pressed returns the handlers whose key went down between prev and cur, in
// keycode order.
func (l *x11Listener) pressed(prev, cur *keymap) []func() {
	mods := l.modifiers(cur)

	l.mu.Lock()
	defer l.mu.Unlock()

	var fns []func()
	for i := 0; i < 256; i++ {
		code := xproto.Keycode(i)
		if !cur.down(code) || prev.down(code) {
			continue
		}
		if fn := l.bindings[chord{code: code, mods: mods}]; fn != nil {
			fns = append(fns, fn)
		}
	}
	return fns
}

func (l *x11Listener) Listen(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// keys already down when listening starts do not fire
	prev, err := l.queryKeymap()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		cur, err := l.queryKeymap()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, fn := range l.pressed(&prev, &cur) {
			fn()
		}
		prev = cur
	}
}

func (l *x11Listener) queryKeymap() (keymap, error) {
	var k keymap
	reply, err := xproto.QueryKeymap(l.conn).Reply()
	if err != nil {
		return k, fmt.Errorf("failed to query keyboard state: %w", err)
	}
	if reply == nil {
		return k, errors.New("X server connection closed")
	}
	copy(k[:], reply.Keys)
	return k, nil
}

func (l *x11Listener) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.bindings = make(map[chord]func())
		l.mu.Unlock()
		l.conn.Close()
	})
	return nil
}
