// Package testsupport holds fixtures and golden-file helpers shared by the
// package tests. Set UPDATE_GOLDENS=1 to rewrite goldens from current output.
package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// LoadDefinition reads a JSON definition fixture.
func LoadDefinition(t *testing.T, path string) *model.Definition {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read definition: %v", err)
	}
	return MustParseDefinition(t, string(data))
}

// MustParseDefinition parses an inline JSON definition.
func MustParseDefinition(t *testing.T, raw string) *model.Definition {
	t.Helper()
	def, err := model.FromJSON([]byte(raw))
	if err != nil {
		t.Fatalf("parse definition: %v", err)
	}
	return def
}

// MustField builds a field or fails the test.
func MustField(t *testing.T, cfg model.FieldConfig) *model.Field {
	t.Helper()
	f, err := model.NewField(cfg)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	return f
}

func updating() bool { return os.Getenv("UPDATE_GOLDENS") != "" }

// AssertGolden compares got with the golden file at path, or rewrites the
// file when goldens are being updated.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()
	if updating() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	if diff := cmp.Diff(MustReadGoldenString(t, path), got); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// MustReadGoldenString reads a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written, so callers can check they agree.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
