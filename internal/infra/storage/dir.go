package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

// ErrInvalidName rejects file names that are not a single path segment.
var ErrInvalidName = errors.New("invalid payload file name")

// Dir reads payloads from "<root>/<filename>.json" on local disk.
type Dir struct {
	Root string
}

func NewDir(root string) *Dir { return &Dir{Root: root} }

// Load implements analytics.Source.
func (d *Dir) Load(_ context.Context, filename string) (*analytics.Payload, error) {
	if err := checkName(filename); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(d.Root, filename+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filename, analytics.ErrNotFound)
		}
		return nil, err
	}
	return decode(filename, raw)
}

// Check implements the health checker used by the router.
func (d *Dir) Check(context.Context) error {
	info, err := os.Stat(d.Root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.Root)
	}
	return nil
}

func checkName(filename string) error {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}
	return nil
}

func decode(filename string, raw []byte) (*analytics.Payload, error) {
	p, err := analytics.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", filename, err)
	}
	if p.Filename == "" {
		p.Filename = filename
	}
	return p, nil
}

// Filenames lists payload files by modification time, newest first.
func (d *Dir) Filenames(_ context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, err
	}
	type item struct {
		name string
		mod  int64
	}
	var items []item
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, item{name: strings.TrimSuffix(e.Name(), ".json"), mod: info.ModTime().UnixNano()})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].mod != items[j].mod {
			return items[i].mod > items[j].mod
		}
		return items[i].name < items[j].name
	})
	out := make([]string, 0, len(items))
	for i, it := range items {
		if i == limit {
			break
		}
		out = append(out, it.name)
	}
	return out, nil
}
