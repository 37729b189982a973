package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/berrythewa/multiclip/internal/storage"
	"github.com/berrythewa/multiclip/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	dir   string
	store string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MULTICLIP_CONFIG", filepath.Join(dir, "config.yaml"))
	for _, key := range []string{"MULTICLIP_STORE", "MULTICLIP_LOG_LEVEL", "MULTICLIP_LOG_FILE", "MULTICLIP_BACKENDS"} {
		t.Setenv(key, "")
	}
	return &cliEnv{dir: dir, store: filepath.Join(dir, "multiclip.json")}
}

// run executes the command tree against the env's store.
func (e *cliEnv) run(args ...string) (string, string, error) {
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--store", e.store}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) slotStore(t *testing.T) *storage.SlotStore {
	t.Helper()
	s, err := storage.NewSlotStore(storage.StoreConfig{Path: e.store})
	require.NoError(t, err)
	return s
}

func (e *cliEnv) seed(t *testing.T, values map[types.SlotID]string) {
	t.Helper()
	s := e.slotStore(t)
	for _, slot := range types.AllSlots() {
		if v, ok := values[slot]; ok {
			_, err := s.Assign(slot, v)
			require.NoError(t, err)
		}
	}
}

func TestListEmpty(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run("list")
	require.NoError(t, err)
	assert.Equal(t, "No slots yet.\n", out)
}

func TestListSortedWithPreview(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t, map[types.SlotID]string{
		"B": "bee",
		"1": "line one\nline two",
		"A": strings.Repeat("a", 50),
	})

	out, _, err := env.run("list")
	require.NoError(t, err)
	assert.Equal(t,
		"1: line one line two\n"+
			"A: "+strings.Repeat("a", 40)+"\n"+
			"B: bee\n",
		out)
}

func TestClear(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t, map[types.SlotID]string{"A": "x"})

	out, _, err := env.run("clear", "a")
	require.NoError(t, err)
	assert.Equal(t, "Cleared slot A\n", out)

	_, ok := env.slotStore(t).Get("A")
	assert.False(t, ok)
	assert.Len(t, env.slotStore(t).Load().History, 1, "history is kept")
}

func TestClearMissingSlot(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run("clear", "Z")
	require.Error(t, err)
	assert.Equal(t, "slot Z not found", err.Error())
}

func TestClearInvalidSlot(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run("clear", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidSlot)

	_, _, err = env.run("clear")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t, map[types.SlotID]string{"C": "multi\nline"})

	out, _, err := env.run("show", "c")
	require.NoError(t, err)
	assert.Equal(t, "multi\nline\n", out)

	_, _, err = env.run("show", "D")
	assert.EqualError(t, err, "slot D is empty")
}

func TestExportImportRoundTrip(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t, map[types.SlotID]string{"A": "alpha", "9": "nine"})
	exported := filepath.Join(env.dir, "backup", "export.json")

	out, _, err := env.run("export", exported)
	require.NoError(t, err)
	assert.Equal(t, "Exported successfully\n", out)

	_, err = env.slotStore(t).Clear("A")
	require.NoError(t, err)

	out, _, err = env.run("import", exported)
	require.NoError(t, err)
	assert.Equal(t, "Imported successfully\n", out)

	got, ok := env.slotStore(t).Get("A")
	require.True(t, ok)
	assert.Equal(t, "alpha", got.Content)
	assert.Len(t, env.slotStore(t).Load().History, 2)
}

func TestImportDefaultsMissingKeys(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t, map[types.SlotID]string{"A": "old"})
	file := filepath.Join(env.dir, "import.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"slots":{"B":{"content":"bee","time":"2024-05-01T10:00:00+00:00"}}}`), 0o644))

	_, _, err := env.run("import", file)
	require.NoError(t, err)

	store := env.slotStore(t).Load()
	assert.Equal(t, []types.SlotID{"B"}, store.SortedSlots())
	assert.Empty(t, store.History)
}

func TestImportRejectsInvalidInput(t *testing.T) {
	tests := map[string]string{
		"malformed":    `{"slots":`,
		"not object":   `[1,2,3]`,
		"invalid slot": `{"slots":{"AA":{"content":"x","time":"2024-05-01T10:00:00Z"}}}`,
		"invalid hist": `{"history":[{"slot":"0","content":"x","time":"2024-05-01T10:00:00Z"}]}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			env := newCLIEnv(t)
			env.seed(t, map[types.SlotID]string{"A": "keep"})
			before, err := os.ReadFile(env.store)
			require.NoError(t, err)

			file := filepath.Join(env.dir, "bad.json")
			require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

			out, _, err := env.run("import", file)
			assert.Error(t, err)
			assert.NotContains(t, out, "Imported successfully")

			after, err := os.ReadFile(env.store)
			require.NoError(t, err)
			assert.Equal(t, before, after, "store must be untouched")
		})
	}
}

func TestImportMissingFile(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run("import", filepath.Join(env.dir, "nope.json"))
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	env := newCLIEnv(t)
	s := env.slotStore(t)
	for _, step := range []struct {
		slot    types.SlotID
		content string
	}{{"A", "first"}, {"B", "second"}, {"A", "third"}} {
		_, err := s.Assign(step.slot, step.content)
		require.NoError(t, err)
	}

	out, _, err := env.run("history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "A: first"))
	assert.True(t, strings.HasSuffix(lines[2], "A: third"))

	out, _, err = env.run("history", "-n", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "A: third"))

	out, _, err = env.run("history", "--slot", "a", "-r", "--json")
	require.NoError(t, err)
	var entries []types.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Content)
	assert.Equal(t, "first", entries[1].Content)

	_, _, err = env.run("history", "--slot", "!")
	assert.ErrorIs(t, err, types.ErrInvalidSlot)
}

func TestHistoryEmpty(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run("history")
	require.NoError(t, err)
	assert.Equal(t, "No history yet.\n", out)
}

func TestBindings(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run("bindings")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 35)
	assert.Equal(t, "A: assign <ctrl>+a | paste <alt>+a", lines[0])
	assert.Equal(t, "9: assign <ctrl>+9 | paste <alt>+9", lines[34])
}

func TestBindingsFollowConfig(t *testing.T) {
	env := newCLIEnv(t)
	configPath := filepath.Join(env.dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("hotkeys:\n  assign_modifier: super\n  paste_modifier: shift\n"), 0o644))

	out, _, err := env.run("--config", configPath, "bindings")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "A: assign <super>+a | paste <shift>+a\n"))
}

func TestInvalidConfigFails(t *testing.T) {
	env := newCLIEnv(t)
	configPath := filepath.Join(env.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("hotkeys:\n  paste_modifier: ctrl\n"), 0o644))

	_, _, err := env.run("--config", configPath, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestDaemonRejectsArguments(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run("daemon", "extra")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	env := newCLIEnv(t)
	configPath := filepath.Join(env.dir, "nested", "config.yaml")

	out, _, err := env.run("--config", configPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, configPath)
	assert.FileExists(t, configPath)

	_, _, err = env.run("--config", configPath, "config", "init")
	assert.Error(t, err, "init refuses to overwrite without --force")

	out, _, err = env.run("--config", configPath, "config", "show", "--format", "json")
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, env.store, shown["store_path"])

	out, _, err = env.run("--config", configPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, configPath+"\n", out)
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	SetVersionInfo("1.2.3", "today", "abc123")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "none") })

	out, _, err := env.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Commit:     abc123")
}
