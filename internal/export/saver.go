package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Saver persists a finished document and returns where it went.
type Saver interface {
	Save(ctx context.Context, doc *Document) (string, error)
}

// DirSaver writes documents into a directory, creating it when missing.
type DirSaver struct {
	Dir    string
	Logger *slog.Logger
}

func NewDirSaver(dir string, logger *slog.Logger) *DirSaver {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "."
	}
	return &DirSaver{Dir: dir, Logger: logger}
}

func (s *DirSaver) Save(ctx context.Context, doc *Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(doc.Filename))
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	s.Logger.Info("export.saved", "path", path, "bytes", len(doc.Data))
	return path, nil
}
