package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/muninboard/pkg/config"
)

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, "dir = \""+filepath.ToSlash(dir)+"\"\n")

	out, err := execute(t, "cache", "path", "-c", cfg)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

func TestCacheClearCommand(t *testing.T) {
	status := captureUI(t)
	cfg := writeTestConfig(t, "")

	if _, err := execute(t, "cache", "clear", "-c", cfg); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(status.String(), "disabled") {
		t.Errorf("clearing a disabled cache should say so, got %q", status.String())
	}
}

func TestCacheScope(t *testing.T) {
	es := config.Defaults().Directory
	mongo := es
	mongo.Backend = config.BackendMongo
	fileA := es
	fileA.Backend, fileA.File.Path = config.BackendFile, "/srv/a.json"
	fileB := fileA
	fileB.File.Path = "/srv/b.json"

	scopes := map[string]bool{}
	for _, d := range []config.DirectoryConfig{es, mongo, fileA, fileB} {
		scope := cacheScope(d)
		if !strings.HasSuffix(scope, ":") {
			t.Errorf("scope %q should end with a separator", scope)
		}
		scopes[scope] = true
	}
	if len(scopes) != 4 {
		t.Errorf("directories should not share a cache scope: %v", scopes)
	}
	if got := cacheScope(es); got != "es:munin-node:" {
		t.Errorf("elasticsearch scope = %q", got)
	}
}
