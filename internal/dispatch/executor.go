package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/lucheng0127/adapterhub/internal/adapter"
	"github.com/lucheng0127/adapterhub/internal/model"
)

// 默认参数
const (
	DEFAULT_MAX_INFLIGHT = 64
)

// ErrExecutorClosed 执行器已关闭，不再接收新请求
var ErrExecutorClosed = errors.New("executor closed")

// Executor 请求执行器
// 每个请求产生且只产生一个 Result，结果写入 out
type Executor struct {
	registry *Registry
	out      chan<- model.Result
	logger   *zap.Logger
	timeout  time.Duration
	sem      *semaphore.Weighted
	wg       sync.WaitGroup

	// mu 保护 closed，并保证 Close 之后不再有 wg.Add
	mu     sync.Mutex
	closed bool
}

// Option 执行器选项
type Option func(*Executor)

// WithHandlerTimeout 设置单次 Handle 的超时，0 表示不限制
func WithHandlerTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

// WithMaxInFlight 设置最大并发数，Go/GoRaw/DispatchLimited 共用
func WithMaxInFlight(n int64) Option {
	return func(e *Executor) {
		if n > 0 {
			e.sem = semaphore.NewWeighted(n)
		}
	}
}

// NewExecutor 创建执行器
func NewExecutor(registry *Registry, out chan<- model.Result, logger *zap.Logger, opts ...Option) *Executor {
	e := &Executor{
		registry: registry,
		out:      out,
		logger:   logger,
		sem:      semaphore.NewWeighted(DEFAULT_MAX_INFLIGHT),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Dispatch 路由并执行请求，返回归一化后的结果，不会 panic
func (e *Executor) Dispatch(ctx context.Context, req *model.Request) model.Result {
	a, ok := e.registry.Lookup(req.Adapter)
	if !ok {
		e.logger.Warn("unknown adapter",
			zap.String("adapter", req.Adapter),
			zap.String("action", req.Action),
		)
		return model.Failure(fmt.Sprintf("unknown adapter: %s", req.Adapter)).WithID(req.ID)
	}

	e.logger.Debug("executing request",
		zap.String("id", req.ID),
		zap.String("adapter", req.Adapter),
		zap.String("action", req.Action),
	)

	data, err := e.invoke(ctx, a, req)
	if err != nil {
		e.logger.Info("adapter returned error",
			zap.String("id", req.ID),
			zap.String("adapter", req.Adapter),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return model.Failure(err.Error()).WithID(req.ID)
	}

	return model.Success(data).WithID(req.ID)
}

// Execute 执行请求并发布结果
func (e *Executor) Execute(ctx context.Context, req *model.Request) {
	e.publish(ctx, e.Dispatch(ctx, req))
}

// ExecuteRaw 解析并执行 JSON 请求，解析失败时发布错误结果
func (e *Executor) ExecuteRaw(ctx context.Context, payload []byte) {
	req, err := model.ParseRequest(payload)
	if err != nil {
		e.logger.Warn("malformed request", zap.Error(err))
		e.publish(ctx, model.Failure(err.Error()))
		return
	}

	e.Execute(ctx, req)
}

// Go 在独立 goroutine 中执行请求
// 并发数达到上限时阻塞，直到有空位或 ctx 结束
func (e *Executor) Go(ctx context.Context, req *model.Request) error {
	return e.spawn(ctx, func() {
		e.Execute(ctx, req)
	})
}

// GoRaw 在独立 goroutine 中执行 JSON 请求
func (e *Executor) GoRaw(ctx context.Context, payload []byte) error {
	return e.spawn(ctx, func() {
		e.ExecuteRaw(ctx, payload)
	})
}

// DispatchLimited 占用一个并发名额后同步执行 Dispatch
func (e *Executor) DispatchLimited(ctx context.Context, req *model.Request) (model.Result, error) {
	if err := e.acquire(ctx); err != nil {
		return model.Result{}, err
	}
	defer e.release()

	return e.Dispatch(ctx, req), nil
}

// Close 停止接收新请求，已提交的请求继续执行
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// Wait 等待所有 Go/GoRaw/DispatchLimited 请求完成
// 与新的提交并发调用时需先 Close
func (e *Executor) Wait() {
	e.wg.Wait()
}

// acquire 占用一个并发名额并登记到 wg
func (e *Executor) acquire(ctx context.Context) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("executor unavailable: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.sem.Release(1)
		return ErrExecutorClosed
	}

	e.wg.Add(1)
	return nil
}

// release 归还名额
func (e *Executor) release() {
	e.sem.Release(1)
	e.wg.Done()
}

// spawn 占用一个并发名额后启动 fn
func (e *Executor) spawn(ctx context.Context, fn func()) error {
	if err := e.acquire(ctx); err != nil {
		return err
	}

	go func() {
		defer e.release()
		fn()
	}()

	return nil
}

// outcome Handle 的返回值
type outcome struct {
	data any
	err  error
}

// invoke 调用适配器，处理超时与 panic
func (e *Executor) invoke(ctx context.Context, a adapter.Adapter, req *model.Request) (any, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("adapter panicked",
					zap.String("adapter", req.Adapter),
					zap.String("action", req.Action),
					zap.Any("panic", r),
				)
				done <- outcome{err: fmt.Errorf("adapter %s panicked: %v", req.Adapter, r)}
			}
		}()

		data, err := a.Handle(ctx, req.Action, req.ParamsOrNull())
		done <- outcome{data: data, err: err}
	}()

	// 适配器忽略 ctx 时也要按时返回
	select {
	case o := <-done:
		return o.data, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("adapter %s: %w", req.Adapter, ctx.Err())
	}
}

// publish 发布结果，失败时丢弃并记录日志
func (e *Executor) publish(ctx context.Context, res model.Result) {
	defer func() {
		// 向已关闭的 channel 发送会 panic
		if r := recover(); r != nil {
			e.logger.Warn("result dropped, output channel closed",
				zap.String("id", res.ID),
				zap.String("status", res.Status),
			)
		}
	}()

	select {
	case e.out <- res:
		return
	default:
	}

	select {
	case e.out <- res:
	case <-ctx.Done():
		e.logger.Warn("result dropped",
			zap.String("id", res.ID),
			zap.String("status", res.Status),
			zap.Error(ctx.Err()),
		)
	}
}
