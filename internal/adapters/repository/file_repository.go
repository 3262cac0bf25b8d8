package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/taskmaster/taskstore/internal/domain/entities"
	"github.com/taskmaster/taskstore/internal/domain/schema"
	"github.com/taskmaster/taskstore/internal/infrastructure/logger"
	"github.com/taskmaster/taskstore/internal/infrastructure/metrics"
	"github.com/taskmaster/taskstore/internal/ports"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644

	defaultQueueSize = 16
)

// FileStoreRepository implements the StoreRepository interface on top of a
// single JSON file. Reads go straight to disk; writes are funnelled through
// one goroutine so they apply strictly in arrival order.
type FileStoreRepository struct {
	path    string
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Metrics

	requests  chan writeRequest
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// writeRequest carries either a replacement store or a mutation applied
// to the freshly loaded one.
type writeRequest struct {
	store  *entities.Store
	mutate func(*entities.Store) error
	reply  chan writeReply
}

type writeReply struct {
	result ports.WriteResult
	err    error
}

// Option configures a FileStoreRepository
type Option func(*FileStoreRepository)

// WithClock overrides the clock used to date migrated legacy tasks
func WithClock(now func() time.Time) Option {
	return func(r *FileStoreRepository) {
		r.now = now
	}
}

// WithMetrics attaches Prometheus collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *FileStoreRepository) {
		r.metrics = m
	}
}

// WithQueueSize sets how many writes may wait for the writer goroutine
func WithQueueSize(n int) Option {
	return func(r *FileStoreRepository) {
		if n > 0 {
			r.requests = make(chan writeRequest, n)
		}
	}
}

// NewFileStoreRepository creates a repository for path and starts its
// writer goroutine. Call Close to stop it.
func NewFileStoreRepository(path string, log *logger.Logger, opts ...Option) *FileStoreRepository {
	r := &FileStoreRepository{
		path:     path,
		now:      time.Now,
		logger:   log.WithComponent("store"),
		requests: make(chan writeRequest, defaultQueueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.run()

	return r
}

// Path returns the backing file path
func (r *FileStoreRepository) Path() string {
	return r.path
}

// Load reads and normalises the store file. Any failure is logged and the
// default store returned.
func (r *FileStoreRepository) Load(ctx context.Context) *entities.Store {
	store, _ := r.load()
	return store
}

// LoadWithSource is Load that also reports which on-disk format was found.
func (r *FileStoreRepository) LoadWithSource(ctx context.Context) (*entities.Store, string) {
	return r.load()
}

func (r *FileStoreRepository) load() (*entities.Store, string) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.metrics.StoreLoad(metrics.LoadMissing)
			return entities.NewStore(), metrics.LoadMissing
		}
		r.logger.Errorw("Failed to read store file", "path", r.path, "error", err)
		r.metrics.StoreLoad(metrics.LoadFailed)
		return entities.NewStore(), metrics.LoadFailed
	}

	doc := schema.Detect(data)
	if bad, ok := doc.(schema.Unrecognized); ok {
		r.logger.Errorw("Failed to parse store file", "path", r.path, "error", bad.Err)
		r.metrics.StoreLoad(metrics.LoadFailed)
		return entities.NewStore(), metrics.LoadFailed
	}

	store, migrated := schema.Resolve(doc, r.now())
	if migrated {
		r.logger.Infow("Migrated legacy store on read", "path", r.path, "tasks", len(store.AllTasks))
		r.metrics.StoreLoad(metrics.LoadLegacy)
		return store, metrics.LoadLegacy
	}
	r.metrics.StoreLoad(metrics.LoadCurrent)
	return store, metrics.LoadCurrent
}

// Write coerces candidate and hands it to the writer goroutine. Non-object
// candidates are rejected before any I/O.
func (r *FileStoreRepository) Write(ctx context.Context, candidate any) (ports.WriteResult, error) {
	store, err := schema.Coerce(candidate)
	if err != nil {
		r.metrics.StoreWrite(metrics.WriteInvalid)
		return ports.WriteResult{}, err
	}
	return r.WriteStore(ctx, store)
}

// WriteStore queues an already well-formed store for writing and waits for
// the outcome. If ctx ends after the write was queued, the write may still
// be applied.
func (r *FileStoreRepository) WriteStore(ctx context.Context, store *entities.Store) (ports.WriteResult, error) {
	return r.submit(ctx, writeRequest{store: store})
}

// Update loads the current store inside the writer goroutine, lets mutate
// change it and persists the result if anything changed. An error from
// mutate aborts the write and is returned as is.
func (r *FileStoreRepository) Update(ctx context.Context, mutate func(*entities.Store) error) (ports.WriteResult, error) {
	return r.submit(ctx, writeRequest{mutate: mutate})
}

func (r *FileStoreRepository) submit(ctx context.Context, req writeRequest) (ports.WriteResult, error) {
	req.reply = make(chan writeReply, 1)

	select {
	case <-r.quit:
		return ports.WriteResult{}, entities.ErrWriterClosed
	default:
	}

	select {
	case r.requests <- req:
		r.metrics.SetQueueDepth(len(r.requests))
	case <-r.quit:
		return ports.WriteResult{}, entities.ErrWriterClosed
	case <-ctx.Done():
		return ports.WriteResult{}, ctx.Err()
	}

	select {
	case reply := <-req.reply:
		return reply.result, reply.err
	case <-r.done:
		select {
		case reply := <-req.reply:
			return reply.result, reply.err
		default:
			return ports.WriteResult{}, entities.ErrWriterClosed
		}
	case <-ctx.Done():
		return ports.WriteResult{}, ctx.Err()
	}
}

// Close stops accepting writes, finishes the queued ones and waits for the
// writer goroutine to exit.
func (r *FileStoreRepository) Close() error {
	r.closeOnce.Do(func() {
		close(r.quit)
	})
	<-r.done
	return nil
}

func (r *FileStoreRepository) run() {
	defer close(r.done)

	for {
		select {
		case req := <-r.requests:
			r.serve(req)
		case <-r.quit:
			for {
				select {
				case req := <-r.requests:
					r.serve(req)
				default:
					return
				}
			}
		}
	}
}

func (r *FileStoreRepository) serve(req writeRequest) {
	r.metrics.SetQueueDepth(len(r.requests))

	start := time.Now()
	result, err := r.apply(req)
	r.logger.LogStoreWrite(r.path, result.Changed, float64(time.Since(start).Nanoseconds())/1e6, err)

	switch {
	case err != nil:
		r.metrics.StoreWrite(metrics.WriteFailed)
	case result.Changed:
		r.metrics.StoreWrite(metrics.WriteWritten)
	default:
		r.metrics.StoreWrite(metrics.WriteUnchanged)
	}

	req.reply <- writeReply{result: result, err: err}
}

// apply persists the requested store unless it already matches what is on
// disk. Legacy and unreadable files are always rewritten so a valid
// current-layout file replaces them.
func (r *FileStoreRepository) apply(req writeRequest) (ports.WriteResult, error) {
	current, source := r.load()
	skippable := source == metrics.LoadCurrent || source == metrics.LoadMissing

	existing, err := schema.Canonical(current)
	if err != nil {
		skippable = false
	}

	target := req.store
	if req.mutate != nil {
		if err := req.mutate(current); err != nil {
			return ports.WriteResult{}, err
		}
		target = current
	}

	candidate, err := schema.Canonical(target)
	if err != nil {
		return ports.WriteResult{}, fmt.Errorf("%w: %v", entities.ErrStoreWrite, err)
	}

	if skippable && bytes.Equal(existing, candidate) {
		return ports.WriteResult{Changed: false}, nil
	}

	content, err := schema.Pretty(target)
	if err != nil {
		return ports.WriteResult{}, fmt.Errorf("%w: %v", entities.ErrStoreWrite, err)
	}

	if err := r.persist(content); err != nil {
		return ports.WriteResult{}, fmt.Errorf("%w: %v", entities.ErrStoreWrite, err)
	}

	return ports.WriteResult{Changed: true}, nil
}

func (r *FileStoreRepository) persist(content []byte) error {
	if err := os.MkdirAll(filepath.Dir(r.path), dirPerms); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	if err := atomic.WriteFile(r.path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	// atomic.WriteFile creates its temp file 0600
	if err := os.Chmod(r.path, filePerms); err != nil {
		return fmt.Errorf("set store file permissions: %w", err)
	}

	return nil
}
