package schema

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const petDocument = `openapi: 3.0.3
info: {title: pets, version: "1"}
paths:
  /pets:
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name: {type: string, maxLength: 20}
      responses:
        "201": {description: created}
`

func TestParseSource(t *testing.T) {
	cases := []struct {
		raw  string
		kind SourceKind
		err  bool
	}{
		{raw: "forms/openapi.yaml", kind: SourceKindFile},
		{raw: "https://example.com/openapi.json", kind: SourceKindURL},
		{raw: "http://localhost:8080/spec", kind: SourceKindURL},
		{raw: "   ", err: true},
		{raw: "http://", err: true},
		{raw: "https:///openapi.json", err: true},
	}
	for _, tc := range cases {
		src, err := ParseSource(tc.raw)
		if tc.err {
			if err == nil {
				t.Fatalf("ParseSource(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseSource(%q): %v", tc.raw, err)
		}
		if src.Kind() != tc.kind {
			t.Fatalf("ParseSource(%q) kind = %s, want %s", tc.raw, src.Kind(), tc.kind)
		}
	}

	if _, err := SourceFromURL("ftp://example.com/x"); err == nil {
		t.Fatalf("expected ftp scheme to be rejected")
	}
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte(petDocument), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := NewLoader().Load(context.Background(), SourceFromFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Location() != path {
		t.Fatalf("location = %q, want %q", doc.Location(), path)
	}

	def, err := doc.Definition(context.Background(), "createPet")
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if def.FieldCount() != 1 {
		t.Fatalf("expected one field, got %d", def.FieldCount())
	}
	el, ok := def.FindChildByID("name")
	if !ok {
		t.Fatalf("expected name field")
	}
	f, _ := el.AsField()
	if !f.HasValidator(model.ValidatorRequired) || !f.HasValidator(model.ValidatorMaxLength) {
		t.Fatalf("expected required and maxLength validators, got %+v", f.Validators())
	}
}

func TestLoader_FS(t *testing.T) {
	fsys := fstest.MapFS{"specs/pets.yaml": {Data: []byte(petDocument)}}

	doc, err := NewLoader(WithFS(fsys)).Load(context.Background(), SourceFromFS("specs/pets.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(string(doc.Raw()), "createPet") {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	if _, err := NewLoader().Load(context.Background(), SourceFromFS("specs/pets.yaml")); err == nil {
		t.Fatalf("expected error without a filesystem")
	}
	if _, err := NewLoader(WithFS(fsys)).Load(context.Background(), SourceFromFS("missing.yaml")); err == nil {
		t.Fatalf("expected error for missing entry")
	}
}

func TestLoader_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(petDocument))
	}))
	defer srv.Close()

	loader := NewLoader(WithHTTPClient(srv.Client()))

	src, err := SourceFromURL(srv.URL + "/openapi.yaml")
	if err != nil {
		t.Fatalf("SourceFromURL: %v", err)
	}
	doc, err := loader.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := doc.Definition(context.Background(), ""); err != nil {
		t.Fatalf("Definition: %v", err)
	}

	missing, _ := SourceFromURL(srv.URL + "/nope")
	if _, err := loader.Load(context.Background(), missing); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestLoader_Errors(t *testing.T) {
	loader := NewLoader()

	if _, err := loader.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx, SourceFromFile("x.yaml")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loader.Load(context.Background(), SourceFromFile(empty)); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
