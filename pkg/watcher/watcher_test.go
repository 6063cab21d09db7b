package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	var last atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
	if l := last.Load(); l != 9 {
		t.Errorf("expected the last trigger to run, got %d", l)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func tempSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.jsonl")
	if err := os.WriteFile(path, []byte(`{"id":"a"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitChanged(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	path := tempSource(t)
	var calls atomic.Int32
	w, err := NewWatcher(path,
		WithDebounceDuration(30*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"id":"b"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitChanged(t, w)
	if calls.Load() == 0 {
		t.Error("OnChange not called")
	}
}

func TestWatcher_DetectsRenameOver(t *testing.T) {
	path := tempSource(t)
	w, err := NewWatcher(path, WithDebounceDuration(30*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if w.IsPolling() {
		t.Skip("fsnotify unavailable")
	}

	time.Sleep(50 * time.Millisecond)
	tmp := filepath.Join(filepath.Dir(path), ".items.jsonl.tmp")
	if err := os.WriteFile(tmp, []byte(`{"id":"c"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitChanged(t, w)
}

func TestWatcher_Polling(t *testing.T) {
	path := tempSource(t)
	w, err := NewWatcher(path,
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(25*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"id":"a"}`+"\n"+`{"id":"b"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitChanged(t, w)
}

func TestWatcher_PollingSelection(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		fsType FilesystemType
		want   bool
	}{
		{"local", "", FSTypeLocal, false},
		{"env", "yes", FSTypeLocal, true},
		{"nfs", "", FSTypeNFS, true},
		{"fuse", "0", FSTypeFUSE, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ForcePollEnv, tt.env)
			orig := detectFilesystemTypeFunc
			detectFilesystemTypeFunc = func(string) FilesystemType { return tt.fsType }
			t.Cleanup(func() { detectFilesystemTypeFunc = orig })

			w, err := NewWatcher(tempSource(t), WithPollInterval(time.Hour))
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()
			if got := w.IsPolling(); got != tt.want {
				t.Errorf("IsPolling = %v, want %v", got, tt.want)
			}
			if got := w.FilesystemType(); got != tt.fsType {
				t.Errorf("FilesystemType = %v, want %v", got, tt.fsType)
			}
		})
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	path := tempSource(t)
	var (
		mu   sync.Mutex
		errs []error
	)
	w, err := NewWatcher(path,
		WithPollInterval(20*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(errs) != 1 || !errors.Is(errs[0], ErrFileRemoved) {
		t.Errorf("errors = %v, want one ErrFileRemoved", errs)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w, err := NewWatcher(tempSource(t))
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("started before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("started after Stop")
	}
	w.Stop()

	if err := w.Start(); err != nil {
		t.Errorf("restart = %v", err)
	}
	w.Stop()
}

func TestWatcher_PathAndInterval(t *testing.T) {
	path := tempSource(t)
	w, err := NewWatcher(path, WithPollInterval(500*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if abs, _ := filepath.Abs(path); w.Path() != abs {
		t.Errorf("Path = %s, want %s", w.Path(), abs)
	}
	if w.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval = %v", w.PollInterval())
	}
}

func TestFilesystemType_String(t *testing.T) {
	tests := []struct {
		fsType FilesystemType
		want   string
		remote bool
	}{
		{FSTypeUnknown, "unknown", false},
		{FSTypeLocal, "local", false},
		{FSTypeNFS, "nfs", true},
		{FSTypeSMB, "smb", true},
		{FSTypeFUSE, "fuse", true},
		{FilesystemType(99), "unknown", false},
	}
	for _, tt := range tests {
		if got := tt.fsType.String(); got != tt.want {
			t.Errorf("FilesystemType(%d).String() = %q, want %q", tt.fsType, got, tt.want)
		}
		if got := tt.fsType.Remote(); got != tt.remote {
			t.Errorf("FilesystemType(%d).Remote() = %v", tt.fsType, got)
		}
	}
}

func TestEnvBool(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "true": true, "TRUE": true, " yes ": true, "y": true, "on": true,
		"0": false, "false": false, "no": false, "": false, "maybe": false,
	} {
		t.Setenv("FLEXLIST_TEST_BOOL", value)
		if got := envBool("FLEXLIST_TEST_BOOL"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestDetectFilesystemType_Paths(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("DetectFilesystemType(\"\") = %v", got)
	}
	// A missing file is classified by its directory and must not panic.
	_ = DetectFilesystemType(filepath.Join(t.TempDir(), "missing.jsonl"))
}
