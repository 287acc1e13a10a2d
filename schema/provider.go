package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Provider produces a raw introspection document.
// SchemaKey identifies the document for caching and must be stable.
type Provider interface {
	LoadSchema(ctx context.Context) ([]byte, error)
	SchemaKey() string
}

// FileProvider reads an introspection document from disk.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &FileProvider{path: path}
}

func (p *FileProvider) LoadSchema(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", p.path, err)
	}
	return raw, nil
}

func (p *FileProvider) SchemaKey() string { return p.path }

// StaticProvider serves an in-memory document.
type StaticProvider struct {
	Key string
	Raw []byte
}

func (p StaticProvider) LoadSchema(context.Context) ([]byte, error) { return p.Raw, nil }
func (p StaticProvider) SchemaKey() string                          { return p.Key }
