package file

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/robotwatch/pkg/logger"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

// Object is an opened database document.
type Object struct {
	Body    io.ReadCloser
	Version string // opaque change marker: ETag or mtime/size
	Size    int64
}

// Source is a place a robots database document is read from.
type Source interface {
	// Open returns the current document. When ifChanged is non-empty and
	// equals the current version, Open returns ErrNotModified and no body.
	Open(ctx context.Context, ifChanged string) (*Object, error)
	// Name identifies the source in logs. Its extension selects the format.
	Name() string
}

// Loader adapts src into a robots.LoaderFunc. After the first successful
// load, an unchanged source yields robots.ErrNotModified so the store keeps
// its snapshot without re-parsing.
func Loader(src Source, log *slog.Logger, opts ...robots.Option) robots.LoaderFunc {
	if log == nil {
		log = logger.Discard()
	}
	opts = append([]robots.Option{robots.WithLogger(log)}, opts...)

	var (
		mu   sync.Mutex
		last string
	)
	return func(ctx context.Context) (*robots.Database, error) {
		mu.Lock()
		defer mu.Unlock()

		start := time.Now()
		obj, err := src.Open(ctx, last)
		if errors.Is(err, ErrNotModified) {
			return nil, robots.ErrNotModified
		}
		if err != nil {
			return nil, errors.Join(robots.ErrDatabaseLoad, err)
		}
		defer obj.Body.Close()

		db, err := robots.Parse(obj.Body, robots.FormatFromName(src.Name()), opts...)
		if err != nil {
			return nil, err
		}
		last = obj.Version

		log.InfoContext(ctx, "robots database fetched",
			logger.Source(src.Name()),
			slog.String("version", obj.Version),
			slog.Int64("size", obj.Size),
			logger.Duration(time.Since(start)),
		)
		return db, nil
	}
}

// NewSource picks an S3Source for "s3://bucket/key" locations and a
// LocalSource for everything else.
func NewSource(ctx context.Context, location string, cfg S3Config, opts ...S3Option) (Source, error) {
	if bucket, key, ok := ParseS3URL(location); ok {
		cfg.Bucket = bucket
		return NewS3Source(ctx, cfg, key, opts...)
	}
	return NewLocalSource(location)
}

// ParseS3URL splits "s3://bucket/key" into its parts.
func ParseS3URL(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
