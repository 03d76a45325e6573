package robots

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoaderFunc builds a fresh database snapshot.
type LoaderFunc func(ctx context.Context) (*Database, error)

// Store publishes the current Database snapshot to concurrent readers.
// Reloads build a complete new snapshot and swap the pointer, so a reader
// never observes a partially loaded database.
type Store struct {
	current atomic.Pointer[Database]
	reload  singleflight.Group
	logger  *slog.Logger
	onSwap  func(*Database)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger for reload events.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSwapHook registers a callback invoked after every successful swap.
func WithSwapHook(fn func(*Database)) StoreOption {
	return func(s *Store) { s.onSwap = fn }
}

// NewStore returns a store serving db. db may be nil until the first Reload.
func NewStore(db *Database, opts ...StoreOption) *Store {
	s := &Store{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	if db != nil {
		s.current.Store(db)
	}
	return s
}

// Database returns the current snapshot, or nil if none is loaded.
func (s *Store) Database() *Database {
	return s.current.Load()
}

// Swap installs db and returns the previous snapshot.
func (s *Store) Swap(db *Database) *Database {
	if db == nil {
		return s.current.Load()
	}
	prev := s.current.Swap(db)
	if s.onSwap != nil {
		s.onSwap(db)
	}
	return prev
}

// Detect runs detection against the current snapshot.
func (s *Store) Detect(ip, userAgent string) (Result, error) {
	db := s.current.Load()
	if db == nil {
		return Result{}, ErrNoDatabase
	}
	return db.Detect(ip, userAgent)
}

// Reload builds a new snapshot with load and swaps it in. Concurrent calls
// share one load. On failure the current snapshot stays in place. A loader
// returning ErrNotModified leaves the snapshot as is and Reload returns nil.
func (s *Store) Reload(ctx context.Context, load LoaderFunc) error {
	_, err, _ := s.reload.Do("reload", func() (any, error) {
		err := s.load(ctx, load)
		if err != nil {
			s.logger.ErrorContext(ctx, "robots database reload failed", slog.Any("error", err))
		}
		return nil, err
	})
	return err
}

func (s *Store) load(ctx context.Context, load LoaderFunc) error {
	start := time.Now()
	db, err := load(ctx)
	if errors.Is(err, ErrNotModified) && s.current.Load() != nil {
		s.logger.DebugContext(ctx, "robots database unchanged")
		return nil
	}
	if err != nil {
		return err
	}
	if db == nil {
		return errors.Join(ErrDatabaseLoad, errors.New("loader returned no database"))
	}
	s.Swap(db)
	st := db.Stats()
	s.logger.InfoContext(ctx, "robots database swapped",
		slog.Int("robots", st.Robots),
		slog.Int("patterns", st.Patterns),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Watch reloads every interval until ctx is cancelled. Failures are logged and
// the previous snapshot keeps serving.
func (s *Store) Watch(ctx context.Context, interval time.Duration, load LoaderFunc) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Reload(ctx, load)
		}
	}
}
