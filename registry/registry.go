// Package registry keeps a set of callbacks that may register and unregister
// callbacks, including themselves, while they are being run.
package registry

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/homier/stablemap/v2"
)

// ID identifies a registered callback.
type ID uint64

// Callback is invoked by Run with Run's context.
type Callback func(ctx context.Context)

// Registry is a set of callbacks safe for concurrent use.
type Registry struct {
	nextID atomic.Uint64
	logger *zap.Logger

	mu struct {
		sync.Mutex
		callbacks *stablemap.StableMap[ID, Callback]
		// running counts in-flight Run calls, compaction waits for zero.
		running int
	}
}

// Option configures a Registry.
type Option func(r *Registry)

// WithLogger sets the logger for recovered panics and compactions.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New returns an empty registry with room for capacity callbacks.
func New(capacity int, opts ...Option) *Registry {
	r := &Registry{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}

	r.mu.callbacks = stablemap.New[ID, Callback](capacity)

	return r
}

// Register adds cb and returns its id. Safe to call from a running callback.
func (r *Registry) Register(cb Callback) ID {
	id := ID(r.nextID.Add(1))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.mu.callbacks.Insert(id, cb)

	return id
}

// Unregister removes the callback. A callback removed during Run is not
// invoked afterwards by that Run.
func (r *Registry) Unregister(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.mu.callbacks.Remove(id)

	return ok
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.mu.callbacks.Len()
}

// Run invokes every callback registered when it starts, in slot order. The
// lock is released around each invocation. Callbacks registered meanwhile
// may take over a freed slot before the cursor reaches it and then run in
// this pass too; ones appended past the starting bound wait for the next Run.
//
// A panicking callback is logged and skipped. Run stops early with the
// context's error once ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	r.mu.Lock()
	r.mu.running++
	n := r.mu.callbacks.IndexLen()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.mu.running--
		if r.mu.running == 0 && r.mu.callbacks.MaybeCompact() {
			r.logger.Debug("compacted callbacks", zap.Stringer("stats", r.mu.callbacks.Stats()))
		}
	}()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "registry: run interrupted at slot %d of %d", i, n)
		}

		r.mu.Lock()
		id, cb, ok := r.mu.callbacks.GetByIndexKeyValue(i)
		r.mu.Unlock()

		if !ok {
			continue
		}

		r.invoke(ctx, id, i, cb)
	}

	return nil
}

func (r *Registry) invoke(ctx context.Context, id ID, slot int, cb Callback) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("callback panicked",
				zap.Uint64("id", uint64(id)),
				zap.Int("slot", slot),
				zap.Any("panic", p),
			)
		}
	}()

	cb(ctx)
}
