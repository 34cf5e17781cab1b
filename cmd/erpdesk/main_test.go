package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "storage_dir = \"" + filepath.Join(dir, "store") + "\"\nlog_file = \"none\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestCacheClear(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"cache", "clear", "--config", writeConfig(t)})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out.String(), "menu cache cleared") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestResolveWithoutCache(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"resolve", "/app/fcm/gl/slip", "--config", writeConfig(t)})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no cached menus") {
		t.Fatalf("resolve error = %v", err)
	}
}

func TestResolveRequiresPath(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"resolve"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected argument error")
	}
}
