package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lox/holdem/internal/fileutil"
	"github.com/lox/holdem/internal/game"
)

// File stores each table's snapshot as <dir>/<table id>.json. Writes are
// atomic so a crash never leaves a truncated snapshot behind.
type File struct {
	dir string
}

// NewFile creates a file store rooted at dir.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) path(tableID string) (string, error) {
	if tableID == "" || tableID != filepath.Base(tableID) {
		return "", fmt.Errorf("invalid table id %q", tableID)
	}
	return filepath.Join(f.dir, tableID+".json"), nil
}

func (f *File) Save(ctx context.Context, tableID string, snap game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(tableID)
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, 0o600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	})
}

func (f *File) Load(ctx context.Context, tableID string) (game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return game.Snapshot{}, err
	}
	path, err := f.path(tableID)
	if err != nil {
		return game.Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, err
	}
	return decode(data)
}

func (f *File) Delete(ctx context.Context, tableID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(tableID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
