//go:build windows

package hotkey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An unusual combo so the test does not collide with the desktop's own.
const testCombo = "<ctrl>+<alt>+<shift>+<super>+q"

func TestRegisterHappensBeforeListen(t *testing.T) {
	first, err := NewListener()
	require.NoError(t, err)
	defer first.Close()

	if err := first.Register(map[string]func(){testCombo: func() {}}); err != nil {
		t.Skipf("RegisterHotKey unavailable in this session: %v", err)
	}

	// the combo is now held, so a second listener fails in Register itself
	second, err := NewListener()
	require.NoError(t, err)
	err = second.Register(map[string]func(){testCombo: func() {}})
	var regErr *RegisterError
	require.ErrorAs(t, err, &regErr)
	assert.Zero(t, regErr.Registered)
	assert.Len(t, regErr.Failed, 1)
	require.NoError(t, second.Close())
}

func TestRegisterToleratesHeldCombos(t *testing.T) {
	first, err := NewListener()
	require.NoError(t, err)
	defer first.Close()

	if err := first.Register(map[string]func(){testCombo: func() {}}); err != nil {
		t.Skipf("RegisterHotKey unavailable in this session: %v", err)
	}

	second, err := NewListener()
	require.NoError(t, err)
	err = second.Register(map[string]func(){
		testCombo:                        func() {},
		"<ctrl>+<alt>+<shift>+<super>+w": func() {},
	})
	var regErr *RegisterError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, 1, regErr.Registered)

	// the loop keeps running for the combo that did register
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, second.Listen(ctx))
	require.NoError(t, second.Close())
}

func TestListenWithoutRegister(t *testing.T) {
	l, err := NewListener()
	require.NoError(t, err)
	assert.Error(t, l.Listen(context.Background()))
	assert.NoError(t, l.Close())
}
