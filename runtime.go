package quadbench

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrRuntimeClosed is the panic value raised by Sum after Close.
var ErrRuntimeClosed = errors.New("quadbench: runtime is closed")

// RuntimeConfig sizes the worker pool behind a Runtime.
type RuntimeConfig struct {
	Workers         int   // Pool size (default: GOMAXPROCS)
	Grain           int64 // Minimum indices per chunk (default: 1024)
	ChunksPerWorker int   // Upper bound on chunks per worker per Sum (default: 4)
}

// DefaultRuntimeConfig returns a pool sized to the current GOMAXPROCS.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Workers:         runtime.GOMAXPROCS(0),
		Grain:           1024,
		ChunksPerWorker: 4,
	}
}

func (c RuntimeConfig) withDefaults() RuntimeConfig {
	def := DefaultRuntimeConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.Grain <= 0 {
		c.Grain = def.Grain
	}
	if c.ChunksPerWorker <= 0 {
		c.ChunksPerWorker = def.ChunksPerWorker
	}
	return c
}

// Runtime is a fixed pool of worker goroutines that implements Reducer.
//
// A process normally starts one Runtime before its first parallel
// integration and closes it on shutdown. Sum may be called from many
// goroutines at once, but a term must never call Sum on the Runtime that is
// evaluating it: the pool would wait on itself.
type Runtime struct {
	cfg   RuntimeConfig
	tasks chan chunk
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// chunk is one contiguous slice of a Sum call, owned by a single worker.
type chunk struct {
	lo, hi int64
	term   func(int64) float64
	out    *float64
	call   *reduction
}

// reduction tracks the chunks of a single Sum call.
type reduction struct {
	wg        sync.WaitGroup
	panicked  atomic.Bool
	panicOnce sync.Once
	panicVal  any
}

func (r *reduction) recordPanic(v any) {
	r.panicOnce.Do(func() {
		r.panicVal = v
		r.panicked.Store(true)
	})
}

// NewRuntime starts the worker pool.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	cfg = cfg.withDefaults()
	rt := &Runtime{
		cfg:   cfg,
		tasks: make(chan chunk, cfg.Workers),
	}

	rt.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go rt.worker()
	}
	return rt
}

// Workers returns the pool size.
func (rt *Runtime) Workers() int {
	return rt.cfg.Workers
}

// Close stops the workers after queued chunks drain. It is safe to call
// more than once.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return nil
	}
	rt.closed = true
	close(rt.tasks)
	rt.mu.Unlock()

	rt.wg.Wait()
	return nil
}

func (rt *Runtime) worker() {
	defer rt.wg.Done()
	for c := range rt.tasks {
		rt.run(c)
	}
}

func (rt *Runtime) run(c chunk) {
	defer c.call.wg.Done()
	defer func() {
		if v := recover(); v != nil {
			c.call.recordPanic(v)
		}
	}()

	// A sibling chunk already failed; the caller re-panics, nothing to add.
	if c.call.panicked.Load() {
		return
	}

	sum := 0.0
	for i := c.lo; i < c.hi; i++ {
		sum += c.term(i)
	}
	*c.out = sum
}

// Sum implements Reducer. The range is cut into contiguous chunks of at
// least Grain indices, each summed on one worker; partial sums are combined
// in chunk order once every chunk has finished. A panic raised by term is
// re-raised on the calling goroutine.
func (rt *Runtime) Sum(lo, hi int64, term func(i int64) float64) float64 {
	rt.mu.RLock()
	if rt.closed {
		rt.mu.RUnlock()
		panic(ErrRuntimeClosed)
	}

	span := hi - lo
	if span <= 0 {
		rt.mu.RUnlock()
		return 0
	}

	count, size := rt.plan(span)
	if count == 1 {
		rt.mu.RUnlock()
		return serialSum(lo, hi, term)
	}

	partials := make([]float64, count)
	call := &reduction{}
	call.wg.Add(int(count))
	for k := int64(0); k < count; k++ {
		start := lo + k*size
		end := min(start+size, hi)
		rt.tasks <- chunk{lo: start, hi: end, term: term, out: &partials[k], call: call}
	}
	rt.mu.RUnlock()

	call.wg.Wait()
	if call.panicked.Load() {
		panic(call.panicVal)
	}

	sum := 0.0
	for _, p := range partials {
		sum += p
	}
	return sum
}

// plan returns the number of chunks and the chunk length for span indices.
// Every chunk but the last holds exactly size indices.
func (rt *Runtime) plan(span int64) (count, size int64) {
	limit := int64(rt.cfg.Workers * rt.cfg.ChunksPerWorker)
	count = min(span/rt.cfg.Grain, limit)
	if count < 1 {
		count = 1
	}
	size = (span + count - 1) / count
	// Ceil division can leave the tail empty; drop those chunks.
	count = (span + size - 1) / size
	return count, size
}
