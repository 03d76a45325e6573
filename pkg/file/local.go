package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// LocalSource reads the database from the local filesystem.
type LocalSource struct {
	path string
}

func NewLocalSource(path string) (*LocalSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return &LocalSource{path: filepath.Clean(path)}, nil
}

func (s *LocalSource) Name() string { return s.path }

// Open stats the file first so an unchanged file is not reopened. The
// version is derived from modification time and size.
func (s *LocalSource) Open(ctx context.Context, ifChanged string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrOperationCanceled, err)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, s.path)
	}

	version := localVersion(info)
	if ifChanged != "" && ifChanged == version {
		return nil, ErrNotModified
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	return &Object{Body: f, Version: version, Size: info.Size()}, nil
}

func localVersion(info fs.FileInfo) string {
	return strconv.FormatInt(info.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(info.Size(), 36)
}
