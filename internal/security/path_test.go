package security

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveWithinValidPath(t *testing.T) {
	base := t.TempDir()

	resolved, err := ResolveWithin(base, "talos-report.pdf")
	if err != nil {
		t.Fatalf("ResolveWithin returned error: %v", err)
	}
	if resolved != filepath.Join(base, "talos-report.pdf") {
		t.Fatalf("unexpected path %s", resolved)
	}
}

func TestResolveWithinBlocksEscape(t *testing.T) {
	base := t.TempDir()
	_, err := ResolveWithin(base, "..", "etc", "passwd")
	if !errors.Is(err, ErrPathEscape) {
		t.Fatalf("expected ErrPathEscape, got %v", err)
	}
}

func TestResolveWithinEmptyBase(t *testing.T) {
	_, err := ResolveWithin("", "talos-report.pdf")
	if err == nil || err.Error() != "base directory is required" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveWithinAbsoluteElementStaysInside(t *testing.T) {
	base := t.TempDir()
	resolved, err := ResolveWithin(base, "/etc/passwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resolved, base) {
		t.Errorf("resolved path %s should be within base %s", resolved, base)
	}
}

func TestValidateFilename(t *testing.T) {
	valid := []string{"talos-report.pdf", "report (1).pdf", "..hidden.pdf"}
	for _, name := range valid {
		if err := ValidateFilename(name); err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
		}
	}

	invalid := map[string]bool{
		"":             false,
		"  ":           false,
		".":            false,
		"..":           false,
		"../evil.pdf":  true,
		"dir/evil.pdf": true,
		`dir\evil.pdf`: true,
		"/etc/passwd":  true,
		"nul\x00.pdf":  false,
	}
	for name, escapes := range invalid {
		err := ValidateFilename(name)
		if !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("%q: expected ErrInvalidFilename, got %v", name, err)
		}
		if escapes && !errors.Is(err, ErrPathEscape) {
			t.Errorf("%q: expected ErrPathEscape, got %v", name, err)
		}
	}
}
