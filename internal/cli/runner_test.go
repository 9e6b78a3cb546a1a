package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/mastertasks/internal/model"
	"github.com/idilsaglam/mastertasks/internal/store"
	"github.com/idilsaglam/mastertasks/internal/store/memory"
)

// env isolates a test from the user's config and data.
type env struct {
	t       *testing.T
	dataDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"MASTERTASKS_DATA_DIR", "MASTERTASKS_PLATFORM", "MASTERTASKS_LOG_LEVEL", "MASTERTASKS_THEME"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("MASTERTASKS_THEME", "mono")
	return &env{t: t, dataDir: t.TempDir()}
}

func (e *env) run(args ...string) (code int, stdout, stderr string) {
	e.t.Helper()
	var out, errb bytes.Buffer
	full := append([]string{"--data-dir", e.dataDir}, args...)
	code = Run(context.Background(), full, &out, &errb)
	return code, out.String(), errb.String()
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	code, out, errOut := e.run(args...)
	if code != 0 {
		e.t.Fatalf("%v: exit %d\nstdout: %s\nstderr: %s", args, code, out, errOut)
	}
	return out
}

func TestAddListDone(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "Buy", "milk")
	e.mustRun("add", "-c", "work", "Ship release")

	out := e.mustRun("ls")
	for _, want := range []string{"1. [ ] Buy milk [personal]", "2. [ ] Ship release [work]"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}

	e.mustRun("done", "2")
	out = e.mustRun("ls", "--filter", "completed")
	if !strings.Contains(out, "2. [x] Ship release") {
		t.Errorf("completed filter should keep the storage index:\n%s", out)
	}
	if strings.Contains(out, "Buy milk") {
		t.Errorf("completed filter shows a pending task:\n%s", out)
	}
}

func TestEditAndRemoveByID(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "draft")

	var info store.DebugInfo
	if err := json.Unmarshal([]byte(e.mustRun("debug", "--format", "json")), &info); err != nil {
		t.Fatalf("debug json: %v", err)
	}
	if info.TasksCount != 1 {
		t.Fatalf("TasksCount = %d, want 1", info.TasksCount)
	}
	id := info.Tasks[0].ID

	e.mustRun("edit", id, "final", "-c", "urgent")
	out := e.mustRun("ls", "--search", "FINAL")
	if !strings.Contains(out, "final [urgent]") {
		t.Errorf("edit not visible:\n%s", out)
	}

	e.mustRun("rm", id)
	if out := e.mustRun("ls"); !strings.Contains(out, "no tasks") {
		t.Errorf("rm left tasks behind:\n%s", out)
	}
}

func TestEditKeepsCategory(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "-c", "study", "read")
	e.mustRun("edit", "1", "read chapter 2")
	out := e.mustRun("ls")
	if !strings.Contains(out, "read chapter 2 [study]") {
		t.Errorf("category should be kept:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "no command given"},
		{"unknown command", []string{"nope"}, "unknown command"},
		{"unknown flag", []string{"ls", "--bogus"}, "unknown flag"},
		{"add without title", []string{"add"}, "requires at least 1 arg"},
		{"bad category", []string{"add", "-c", "hobby", "x"}, "invalid category"},
		{"bad filter", []string{"ls", "--filter", "later"}, "unknown filter"},
		{"index out of range", []string{"done", "3"}, "index out of range"},
		{"unknown id", []string{"rm", "no-such-id"}, "no task with id"},
		{"clear without yes", []string{"clear"}, "--yes"},
		{"bad debug format", []string{"debug", "--format", "xml"}, "unknown format"},
		{"bad platform", []string{"--platform", "toaster", "ls"}, "platform"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			code, _, errOut := e.run(tt.args...)
			if code != 2 {
				t.Errorf("exit = %d, want 2 (stderr %q)", code, errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr = %q, want it to mention %q", errOut, tt.want)
			}
		})
	}
}

func TestClear(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "a")
	e.mustRun("add", "b")
	e.mustRun("clear", "--yes")
	if out := e.mustRun("stats"); !strings.Contains(out, "Total 0") {
		t.Errorf("stats after clear:\n%s", out)
	}
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "-c", "work", "a")
	e.mustRun("add", "-c", "work", "b")
	e.mustRun("done", "1")
	out := e.mustRun("stats")
	for _, want := range []string{"Total 2", "[work] 2", "[study] 0", "50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestInfoAndSelfTest(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("--platform", "desktop", "info")
	if !strings.Contains(out, store.KindEmbedded.Description()) {
		t.Errorf("info:\n%s", out)
	}
	if !strings.Contains(out, "fallback: no") {
		t.Errorf("info should report no fallback:\n%s", out)
	}
	if !strings.Contains(out, "durable:  yes") {
		t.Errorf("info should report durable storage:\n%s", out)
	}

	out = e.mustRun("--platform", "native", "selftest")
	if !strings.Contains(out, "passed") || !strings.Contains(out, "bbolt") {
		t.Errorf("selftest:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(e.dataDir, "tasks.db")); err != nil {
		t.Errorf("native backend file: %v", err)
	}
}

func TestFallbackWarns(t *testing.T) {
	e := newEnv(t)
	// a regular file where the data dir should be makes both backends fail
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	e.dataDir = filepath.Join(blocker, "sub")

	code, out, errOut := e.run("add", "temp")
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "added") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(errOut, "lost on exit") {
		t.Errorf("stderr should warn about the fallback: %q", errOut)
	}
}

func TestDebugYAMLAndExport(t *testing.T) {
	e := newEnv(t)
	e.mustRun("add", "-c", "study", "exam")

	var dump map[string]any
	if err := yaml.Unmarshal([]byte(e.mustRun("debug")), &dump); err != nil {
		t.Fatalf("debug yaml: %v", err)
	}
	if dump["tasksCount"] != 1 {
		t.Errorf("tasksCount = %v, want 1", dump["tasksCount"])
	}

	path := filepath.Join(t.TempDir(), "out.json")
	out := e.mustRun("export", path)
	if !strings.Contains(out, "exported 1 tasks") {
		t.Errorf("export output %q", out)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var stored []model.StoredTask
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("export json: %v", err)
	}
	if len(stored) != 1 || stored[0].Title != "exam" || stored[0].Category != model.CategoryStudy {
		t.Errorf("exported %+v", stored)
	}
}

func TestVersion(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "1.2.3"

	var out bytes.Buffer
	// version must work even with a broken config
	code := Run(context.Background(), []string{"--config", "/does/not/exist.yaml", "version"}, &out, &bytes.Buffer{})
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if got := out.String(); got != "tasks 1.2.3\n" {
		t.Errorf("version output %q", got)
	}
}

func TestConfigFileDataDir(t *testing.T) {
	newEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("data_dir: "+dir+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errb bytes.Buffer
	if code := Run(context.Background(), []string{"--config", cfgPath, "add", "x"}, &out, &errb); code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errb.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "tasks.sqlite")); err != nil {
		t.Errorf("config data_dir not used: %v", err)
	}
}

// vanishingBackend serves the collection once, then reports it empty, as if
// another process deleted everything in between.
type vanishingBackend struct {
	*memory.Store
	loads int
}

func (b *vanishingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == store.CollectionKey {
		b.loads++
		if b.loads > 1 {
			return []byte("[]"), true, nil
		}
	}
	return b.Store.Get(ctx, key)
}

func TestRemove_TaskVanishes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mem := memory.New()
	seed := `[{"id":"t1","title":"gone soon","completed":false,"category":"work","createdAt":"2026-01-02T03:04:05.000Z"}]`
	if err := mem.Set(ctx, store.CollectionKey, []byte(seed)); err != nil {
		t.Fatal(err)
	}
	a := &app{openEmbedded: func(context.Context) (store.Backend, error) {
		return &vanishingBackend{Store: mem}, nil
	}}

	var out, errb bytes.Buffer
	code := run(ctx, a, []string{"--data-dir", e.dataDir, "--platform", "desktop", "rm", "1"}, &out, &errb)
	if code != 1 {
		t.Fatalf("exit = %d, want 1 (stderr %q)", code, errb.String())
	}
	if strings.Contains(out.String(), "removed") {
		t.Errorf("stdout = %q, should not report success", out.String())
	}
	if !strings.Contains(errb.String(), "disappeared") {
		t.Errorf("stderr = %q", errb.String())
	}
}
