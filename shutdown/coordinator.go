package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"
)

// Coordinator runs registered handlers phase by phase when shutdown is
// triggered by a signal or an explicit call.
type Coordinator struct {
	config Config

	mu           sync.Mutex
	handlers     []registration
	shutdownOnce sync.Once
	shutdownErr  error
	done         chan struct{}
	result       *Result
	signalChan   chan os.Signal
	start        time.Time
}

// NewCoordinator creates a coordinator with no handlers registered.
func NewCoordinator(config Config) *Coordinator {
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = DefaultConfig().DefaultTimeout
	}
	if config.DefaultPhase == 0 {
		config.DefaultPhase = DefaultConfig().DefaultPhase
	}

	return &Coordinator{
		config:     config,
		done:       make(chan struct{}),
		signalChan: make(chan os.Signal, 1),
	}
}

// Register adds a handler at the default phase.
func (c *Coordinator) Register(name string, handler Handler) {
	c.RegisterWithPhase(name, handler, c.config.DefaultPhase)
}

// RegisterWithPhase adds a handler at a specific phase. Lower phases shut
// down first; handlers in one phase shut down concurrently.
func (c *Coordinator) RegisterWithPhase(name string, handler Handler, phase int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers = append(c.handlers, registration{
		name:    name,
		handler: handler,
		phase:   phase,
	})
}

// RegisterFunc registers a plain function at the default phase.
func (c *Coordinator) RegisterFunc(name string, fn func(ctx context.Context) error) {
	c.Register(name, Func(fn))
}

// RegisterFuncWithPhase registers a plain function at a specific phase.
func (c *Coordinator) RegisterFuncWithPhase(name string, fn func(ctx context.Context) error, phase int) {
	c.RegisterWithPhase(name, Func(fn), phase)
}

// Shutdown runs the handlers. Repeat calls return the first run's error.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() {
		c.start = time.Now()
		c.shutdownErr = c.doShutdown(ctx)
		close(c.done)
	})

	<-c.done
	return c.shutdownErr
}

// ShutdownWithTimeout runs the handlers with a deadline. A zero timeout
// uses the configured default.
func (c *Coordinator) ShutdownWithTimeout(timeout time.Duration) error {
	if timeout == 0 {
		timeout = c.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Shutdown(ctx)
}

// HandleSignals triggers shutdown on SIGTERM and SIGINT.
func (c *Coordinator) HandleSignals() {
	signal.Notify(c.signalChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-c.signalChan
		_ = c.ShutdownWithTimeout(c.config.DefaultTimeout)
	}()
}

// Trigger feeds the signal path without an OS signal. Useful in tests and
// for hosts wiring their own quit conditions.
func (c *Coordinator) Trigger() {
	select {
	case c.signalChan <- syscall.SIGTERM:
	default:
	}
}

// Done returns a channel closed when shutdown has completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Err returns the shutdown error. Only valid after Done is closed.
func (c *Coordinator) Err() error {
	select {
	case <-c.done:
		return c.shutdownErr
	default:
		return nil
	}
}

// Result returns the detailed outcome. Only valid after Done is closed.
func (c *Coordinator) Result() *Result {
	select {
	case <-c.done:
		return c.result
	default:
		return nil
	}
}

func (c *Coordinator) doShutdown(ctx context.Context) error {
	c.mu.Lock()
	handlers := make([]registration, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].phase < handlers[j].phase
	})

	result := &Result{
		Results: make([]HandlerResult, 0, len(handlers)),
	}

	var overallErr error

	for _, group := range groupByPhase(handlers) {
		select {
		case <-ctx.Done():
			result.Err = ErrTimeout
			result.TotalDuration = time.Since(c.start)
			c.result = result
			return ErrTimeout
		default:
		}

		phaseResults := c.executePhase(ctx, group)
		result.Results = append(result.Results, phaseResults...)

		for _, hr := range phaseResults {
			if hr.Err != nil && overallErr == nil {
				overallErr = ErrHandlerFailed
			}
			if !c.config.ContinueOnError && hr.Err != nil {
				result.Err = overallErr
				result.TotalDuration = time.Since(c.start)
				c.result = result
				return overallErr
			}
		}
	}

	result.Err = overallErr
	result.TotalDuration = time.Since(c.start)
	c.result = result
	return overallErr
}

// executePhase runs one phase's handlers concurrently.
func (c *Coordinator) executePhase(ctx context.Context, handlers []registration) []HandlerResult {
	results := make([]HandlerResult, len(handlers))
	var wg sync.WaitGroup

	for i, reg := range handlers {
		wg.Add(1)
		go func(idx int, r registration) {
			defer wg.Done()

			start := time.Now()
			err := r.handler.OnShutdown(ctx)

			hr := HandlerResult{
				Name:     r.name,
				Phase:    r.phase,
				Duration: time.Since(start),
				Err:      err,
			}
			results[idx] = hr

			if c.config.OnProgress != nil {
				c.config.OnProgress(hr)
			}
		}(i, reg)
	}

	wg.Wait()
	return results
}

// groupByPhase splits phase-sorted handlers into per-phase groups.
func groupByPhase(handlers []registration) [][]registration {
	if len(handlers) == 0 {
		return nil
	}

	var groups [][]registration
	var current []registration
	phase := handlers[0].phase

	for _, h := range handlers {
		if h.phase != phase {
			groups = append(groups, current)
			current = nil
			phase = h.phase
		}
		current = append(current, h)
	}

	return append(groups, current)
}
