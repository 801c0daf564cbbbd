package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/storage"
)

// Sink writes artifacts under a directory on the local filesystem.
type Sink struct {
	dir  string
	logg *logger.Logger
}

func NewSink(dir string, logg *logger.Logger) (*Sink, error) {
	if dir == "" {
		return nil, errors.New("local sink directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	return &Sink{dir: dir, logg: logg}, nil
}

func (s *Sink) Dir() string { return s.dir }

// Put writes data to a temp file first and links it into place, so readers
// never see a partial artifact. Existing names are refused with
// storage.ErrExists.
func (s *Sink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("closing artifact: %w", err)
	}

	// Link fails when target exists, so a stored artifact is never replaced
	// behind a reference already handed out.
	target := filepath.Join(s.dir, base)
	err = os.Link(tmpName, target)
	cleanup()
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%s: %w", base, storage.ErrExists)
	}
	if err != nil {
		return "", fmt.Errorf("moving artifact into place: %w", err)
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"path": target, "bytes": len(data)})
		s.logg.Debug(ctx, "artifact written")
	}
	return target, nil
}
