package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

func TestDir_Load(t *testing.T) {
	root := t.TempDir()
	doc := `{"stats":{"temp":{"min":1,"mean":2,"max":3}},"missing":{"temp":0}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "air.csv.json"), []byte(doc), 0o644))

	p, err := NewDir(root).Load(context.Background(), "air.csv")

	require.NoError(t, err)
	assert.Equal(t, "air.csv", p.Filename)
	assert.Equal(t, []string{"temp"}, p.Columns)
}

func TestDir_Load_NotFound(t *testing.T) {
	_, err := NewDir(t.TempDir()).Load(context.Background(), "nope.csv")
	assert.ErrorIs(t, err, analytics.ErrNotFound)
}

func TestDir_Load_Malformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.csv.json"), []byte(`{"stats":`), 0o644))

	_, err := NewDir(root).Load(context.Background(), "bad.csv")
	assert.ErrorIs(t, err, analytics.ErrMalformed)
}

func TestDir_Load_RejectsTraversal(t *testing.T) {
	d := NewDir(t.TempDir())
	for _, name := range []string{"", "..", "../etc/passwd", `a\b`} {
		_, err := d.Load(context.Background(), name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestDir_Check(t *testing.T) {
	root := t.TempDir()
	assert.NoError(t, NewDir(root).Check(context.Background()))
	assert.Error(t, NewDir(filepath.Join(root, "missing")).Check(context.Background()))
}

func TestMinio_Key(t *testing.T) {
	s := &Minio{prefix: "reports/"}
	assert.Equal(t, "reports/air.csv.json", s.Key("air.csv"))
}

func TestDir_Filenames_NewestFirst(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"old.csv", "new.csv", "mid.csv"} {
		path := filepath.Join(root, name+".json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		mod := base.Add(time.Duration([]int{0, 2, 1}[i]) * time.Hour)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	names, err := NewDir(root).Filenames(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"new.csv", "mid.csv", "old.csv"}, names)

	names, err = NewDir(root).Filenames(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new.csv"}, names)
}
