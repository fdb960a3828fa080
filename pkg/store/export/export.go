package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sink stores a rendered chart under name.
type Sink interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// FileSink writes charts below a local directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	path := name
	if s.dir != "" && !filepath.IsAbs(name) {
		path = filepath.Join(s.dir, name)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// ObjectKey builds an object name like "charts/SYD-MEL_2024-01-01_2024-01-07.svg".
func ObjectKey(prefix, origin, destination, start, end, ext string) string {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if s == "" {
			return "any"
		}
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
				return r
			}
			return '_'
		}, s)
	}
	name := fmt.Sprintf("%s-%s_%s_%s.%s", clean(origin), clean(destination), clean(start), clean(end), ext)
	return prefix + name
}
