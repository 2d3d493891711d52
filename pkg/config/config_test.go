package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/nodedocs/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodedocs.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
catalog = "catalog.yaml"

[task]
title = "Engine"
native_modules = ["Engine", "UMG"]
content_paths = ["/Game/Props"]
pin_display = "both"
skip_xml = false

[cache]
backend = "redis"
url = "redis://localhost:6379/0"
ttl = "1h"

[history]
backend = "mongo"
uri = "mongodb://localhost:27017"

[server]
addr = ":9090"
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if want := filepath.Join(filepath.Dir(path), "catalog.yaml"); f.Catalog != want {
		t.Errorf("Catalog = %q, want %q", f.Catalog, want)
	}
	if diff := cmp.Diff([]string{"Engine", "UMG"}, f.Task.NativeModules); diff != "" {
		t.Errorf("NativeModules mismatch (-want +got):\n%s", diff)
	}
	if f.Task.PinDisplay != PinDisplayBoth {
		t.Errorf("PinDisplay = %q, want both", f.Task.PinDisplay)
	}
	if f.Cache.TTL.Duration != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", f.Cache.TTL)
	}
	if f.Cache.Prefix != DefaultRedisPrefix {
		t.Errorf("Cache.Prefix = %q, want default", f.Cache.Prefix)
	}
	if f.History.Database != DefaultMongoDatabase {
		t.Errorf("History.Database = %q, want default", f.History.Database)
	}
	if f.Server.Addr != ":9090" || f.Server.CollectInterval.Duration != DefaultCollectInterval {
		t.Errorf("Server = %+v", f.Server)
	}
	if f.Render.DPI != DefaultDPI {
		t.Errorf("Render.DPI = %v, want %d", f.Render.DPI, DefaultDPI)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"unknown key", "[task]\ntitel = \"x\"\n", errors.ErrCodeInvalidConfig},
		{"bad syntax", "[task\n", errors.ErrCodeInvalidConfig},
		{"bad cache backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig},
		{"bad history backend", "[history]\nbackend = \"sql\"\n", errors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	t.Chdir(t.TempDir())
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if f.Cache.Backend != BackendFile || f.Path != "" {
		t.Errorf("Load(\"\") = %+v, want defaults", f)
	}
}

func TestSettingsValidateAndSetDefaults(t *testing.T) {
	s := Settings{NativeModules: []string{"Engine"}}
	if err := s.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title, DefaultTitle)
	}
	if want := filepath.Join(DefaultOutputRoot, DefaultTitle); s.OutputDir != want {
		t.Errorf("OutputDir = %q, want %q", s.OutputDir, want)
	}
	if s.PinDisplay != DefaultPinDisplay {
		t.Errorf("PinDisplay = %q, want %q", s.PinDisplay, DefaultPinDisplay)
	}
	if !s.GenerateImages() || !s.GenerateXML() {
		t.Error("images and XML should be enabled by default")
	}

	s.Title = ""
	if err := s.ValidateAndSetDefaults(); err != nil || s.Title != "" {
		t.Errorf("second call changed settings: title=%q err=%v", s.Title, err)
	}
}

func TestSettingsInvalid(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
	}{
		{"no sources", Settings{Title: "x"}},
		{"bad pin display", Settings{NativeModules: []string{"Engine"}, PinDisplay: "sometimes"}},
		{"bad module", Settings{NativeModules: []string{"Engine Core"}}},
		{"relative path", Settings{ContentPaths: []string{"Game/Props"}}},
		{"traversal", Settings{ContentPaths: []string{"/Game/../Secret"}}},
		{"nothing to do", Settings{NativeModules: []string{"Engine"}, SkipImages: true, SkipXML: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.ValidateAndSetDefaults(); err == nil {
				t.Error("ValidateAndSetDefaults() error = nil")
			}
		})
	}
}

func TestPinDisplay(t *testing.T) {
	tests := []struct {
		mode             PinDisplay
		simple, advanced bool
	}{
		{PinDisplayNone, false, false},
		{PinDisplayHidden, true, false},
		{PinDisplayAdvanced, false, true},
		{PinDisplayBoth, true, true},
	}
	for _, tt := range tests {
		if tt.mode.Simple() != tt.simple || tt.mode.Advanced() != tt.advanced {
			t.Errorf("%s: Simple()=%v Advanced()=%v, want %v %v", tt.mode, tt.mode.Simple(), tt.mode.Advanced(), tt.simple, tt.advanced)
		}
	}

	s := Settings{NativeModules: []string{"Engine"}, PinDisplay: "NONE"}
	if err := s.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if s.GenerateImages() {
		t.Error("pin_display=none should disable images")
	}
}

func TestClone(t *testing.T) {
	s := Settings{NativeModules: []string{"Engine"}}
	if err := s.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	c := s.Clone()
	c.NativeModules[0] = "UMG"
	if s.NativeModules[0] != "Engine" {
		t.Error("Clone shares slices with the original")
	}
	if c.validated {
		t.Error("Clone should reset validation")
	}
}

func TestOutputDirFor(t *testing.T) {
	root := filepath.Join("out", "docs")
	tests := []struct {
		title string
		want  string
	}{
		{"Engine Docs", "Engine_Docs"},
		{"a/b", "a_b"},
		{"../escape", "__escape"},
		{".", "_"},
		{"...", "_."},
		{"  ", "_"},
	}
	for _, tt := range tests {
		got := OutputDirFor(root, tt.title)
		if want := filepath.Join(root, tt.want); got != want {
			t.Errorf("OutputDirFor(%q) = %q, want %q", tt.title, got, want)
		}
		if filepath.Clean(got) == filepath.Clean(root) || filepath.Dir(got) != root {
			t.Errorf("OutputDirFor(%q) = %q escapes %q", tt.title, got, root)
		}
	}
}

func TestSettingsRejectDotTitle(t *testing.T) {
	for _, title := range []string{".", "..", "/", "./"} {
		s := Settings{Title: title, NativeModules: []string{"Engine"}}
		if err := s.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("title %q: error = %v, want INVALID_INPUT", title, err)
		}
	}
}
