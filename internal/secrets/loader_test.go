package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadInlineValue(t *testing.T) {
	secret, err := Load(Source{Name: "api key", Value: "  s3cret  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "s3cret" {
		t.Fatalf("expected the trimmed secret, got %q", secret)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("file-secret\n"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}

	secret, err := Load(Source{Name: "api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The file takes precedence over the inline value.
	if secret != "file-secret" {
		t.Fatalf("expected the file secret, got %q", secret)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(Source{Name: "api key", File: "/does/not/exist"}); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: path}); err == nil {
		t.Fatalf("expected an error for an empty file")
	}
}

func TestLoadUnconfigured(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatalf("expected an error when nothing is configured")
	}
}
