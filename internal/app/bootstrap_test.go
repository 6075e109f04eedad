package app

import (
	"context"
	"fmt"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"csx_ticker/internal/domain"

	"github.com/disintegration/imaging"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestBootstrap_SyncAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/abc.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		imaging.Encode(w, imaging.New(48, 48, color.NRGBA{B: 255, A: 255}), imaging.PNG)
	}))
	defer server.Close()

	dir := t.TempDir()
	cfg := fmt.Sprintf(`
console:
  enabled: true
storage:
  enabled: true
  path: %s
assets:
  dir: %s
  logo_url_template: %s/%%s.png
logging:
  dir: %s
`, filepath.Join(dir, "db", "csx.db"), filepath.Join(dir, "logos"), server.URL, filepath.Join(dir, "logs"))

	b := NewBootstrap(writeConfig(t, dir, cfg))
	if err := b.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer b.Close()

	b.SyncAssets(context.Background())

	abc := b.Directory.Company("ABC")
	if abc.Name != "ACLEDA Bank PLC" {
		t.Errorf("Expected seeded name, got %s", abc.Name)
	}
	if abc.LogoPath == "" {
		t.Error("Expected ABC logo to be recorded")
	}
	if gti := b.Directory.Company("GTI"); gti.LogoPath != "" {
		t.Errorf("GTI logo should be missing, got %s", gti.LogoPath)
	}
}

func TestBootstrap_NewTicker(t *testing.T) {
	dir := t.TempDir()
	b := NewBootstrap(writeConfig(t, dir, fmt.Sprintf("console:\n  enabled: true\nlogging:\n  dir: %s\n", filepath.Join(dir, "logs"))))
	if err := b.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer b.Close()

	if _, ok := b.Directory.(domain.StaticDirectory); !ok {
		t.Errorf("Expected static directory without storage, got %T", b.Directory)
	}

	ticker, err := b.NewTicker(domain.NewMultiRenderer())
	if err != nil {
		t.Fatalf("NewTicker failed: %v", err)
	}
	if ticker.Armed() {
		t.Error("Ticker should not be armed before Start")
	}

	// Storage disabled: sync is a no-op
	b.SyncAssets(context.Background())
}

func TestBootstrap_MissingConfig(t *testing.T) {
	b := NewBootstrap(filepath.Join(t.TempDir(), "nope.yaml"))
	if err := b.Initialize(); err == nil {
		t.Error("Expected error for missing config")
	}
}
