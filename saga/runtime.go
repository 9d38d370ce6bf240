package saga

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"

	"github.com/on-the-ground/saga_ive_go/saga/internal/actionqueue"
	"github.com/on-the-ground/saga_ive_go/saga/internal/taskset"
)

// ErrorHandler inspects an unrecovered saga error. Returning nil marks the
// error as handled; returning non-nil passes it to the next handler in
// registration order.
type ErrorHandler func(error) error

// Runtime interprets saga procedures. It owns the action channel, the
// registry of running instances, and the error-handler chain. Construct one
// per use with New; a Runtime must not be copied.
type Runtime struct {
	store   Store
	queue   *actionqueue.Queue[Action]
	tasks   *taskset.Set
	logger  *zap.Logger
	metrics *metrics

	mu          sync.RWMutex
	errHandlers []ErrorHandler

	// forks tracks detached children so Run can join the whole tree.
	forks sync.WaitGroup
}

// Option configures a Runtime under construction.
type Option func(*options)

type options struct {
	store   Store
	logger  *zap.Logger
	config  Config
	metrics prometheus.Registerer
}

// WithStore attaches the store Put and Select resolve against.
func WithStore(store Store) Option {
	return func(o *options) { o.store = store }
}

// WithLogger sets the runtime's structured logger. Defaults to a no-op.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConfig overrides the default Config.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithMetrics registers the runtime's prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.metrics = reg }
}

// New constructs a Runtime.
func New(opts ...Option) *Runtime {
	o := options{config: DefaultConfig(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{
		store:  o.store,
		queue:  actionqueue.New[Action](o.config.ChannelCapacity),
		tasks:  taskset.New(o.config.TaskShards),
		logger: o.logger,
	}
	if o.metrics != nil {
		rt.metrics = newMetrics(o.metrics, func() float64 {
			return float64(rt.queue.Len())
		})
	}
	return rt
}

// Run interprets proc as the root saga instance. It returns once the root
// and every structurally tracked forked child have completed: detached
// children are never cancelled by the parent's completion, but they are
// always joined here.
//
// An unhandled root failure is returned; unhandled failures of detached
// children are logged and counted but never surface through Run.
func (rt *Runtime) Run(ctx context.Context, proc Saga, args ...any) error {
	err := rt.runInstance(ctx, proc, args)
	rt.forks.Wait()
	return err
}

// Dispatch forwards action to the store (when one is attached) and then
// enqueues it on the action channel, in that order. It suspends while the
// channel is full, failing only on ctx cancellation.
func (rt *Runtime) Dispatch(ctx context.Context, action Action) error {
	if rt.store != nil {
		rt.store.Dispatch(action)
	}
	if err := rt.queue.Enqueue(ctx, action); err != nil {
		return err
	}
	rt.metrics.actionEnqueued()
	return nil
}

// AddErrorHandler appends handler to the chain consulted on unrecovered
// saga errors, in registration order.
func (rt *Runtime) AddErrorHandler(handler ErrorHandler) {
	rt.mu.Lock()
	rt.errHandlers = append(rt.errHandlers, handler)
	rt.mu.Unlock()
}

// RunningSagas reports how many saga instances are currently live.
func (rt *Runtime) RunningSagas() int {
	return rt.tasks.Len()
}

// runInstance drives one saga instance through the interpreter loop and
// routes its unrecovered error, if any, through the handler chain. The
// returned error is the unhandled remainder.
func (rt *Runtime) runInstance(ctx context.Context, proc Saga, args []any) error {
	id := uuid.NewString()
	rt.tasks.Add(id)
	rt.metrics.sagaStarted()
	startedAt := time.Now()
	rt.logger.Debug("saga instance started", zap.String("saga_id", id))

	err := Interpret(ctx, proc, func(ctx context.Context, eff Effect) (any, error) {
		rt.logger.Debug("resolving effect",
			zap.String("saga_id", id),
			zap.String("effect", EffectKind(eff)),
		)
		res := rt.resolve(ctx, eff)
		return res.value, res.err
	}, args...)

	if err != nil {
		err = rt.handleError(err)
	}

	rt.tasks.Remove(id)
	rt.metrics.sagaFinished(err)
	lifetime := timespan.BetweenTimes(startedAt, time.Now())
	rt.logger.Debug("saga instance finished",
		zap.String("saga_id", id),
		zap.Duration("lifetime", lifetime.Duration()),
		zap.Error(err),
	)
	return err
}

// handleError consults the handler chain in registration order. The first
// handler that does not itself fail has handled the error; a panicking
// handler counts as a failing one. The error escalates when every handler
// fails or none is registered.
func (rt *Runtime) handleError(err error) error {
	rt.mu.RLock()
	handlers := make([]ErrorHandler, len(rt.errHandlers))
	copy(handlers, rt.errHandlers)
	rt.mu.RUnlock()

	for _, handler := range handlers {
		hErr := safeHandle(handler, err)
		if hErr == nil {
			return nil
		}
		rt.logger.Debug("error handler failed, trying next", zap.Error(hErr))
	}
	return err
}

func safeHandle(handler ErrorHandler, err error) (hErr error) {
	defer func() {
		if r := recover(); r != nil {
			hErr = sagaPanic(r)
		}
	}()
	return handler(err)
}
