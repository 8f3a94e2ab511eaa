package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lucheng0127/adapterhub/internal/adapter"
	"github.com/lucheng0127/adapterhub/internal/api"
	"github.com/lucheng0127/adapterhub/internal/db"
	"github.com/lucheng0127/adapterhub/internal/dispatch"
	"github.com/lucheng0127/adapterhub/internal/model"
	"github.com/lucheng0127/adapterhub/internal/mqtt"
)

// Server 服务器
type Server struct {
	config       *Config
	httpServer   *http.Server
	mqttClient   *mqtt.Client
	publisher    ResultPublisher
	registry     *dispatch.Registry
	executor     *dispatch.Executor
	results      chan model.Result
	consumerDone chan struct{}
	db           *bbolt.DB
	baseCtx      context.Context
	cancel       context.CancelFunc
	logger       *zap.Logger
}

// NewServer 创建服务器
func NewServer(config *Config, logger *zap.Logger) (*Server, error) {
	boltDB, err := db.InitializeDB(config.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 注册适配器
	registry := dispatch.NewRegistry(logger)
	RegisterAdapters(registry, config, db.NewBoltKVRepository(boltDB, logger))

	results := make(chan model.Result, config.ResultBuffer)
	executor := dispatch.NewExecutor(registry, results, logger,
		dispatch.WithHandlerTimeout(config.HandlerTimeout),
		dispatch.WithMaxInFlight(int64(config.MaxInFlight)),
	)

	// 异步请求使用服务级 context，仅在 Shutdown 超时或结束时取消
	baseCtx, cancel := context.WithCancel(context.Background())

	apiHandler := api.NewHandler(baseCtx, registry, executor, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	apiHandler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:    config.HTTPAddr,
		Handler: router,
	}

	var mqttClient *mqtt.Client
	var publisher ResultPublisher
	if config.MQTTEnabled() {
		mqttClient = mqtt.NewClient(baseCtx, config.MQTTBroker, config.MQTTRequestTopic, config.MQTTResultTopic, executor, logger)
		publisher = mqttClient
	}

	return &Server{
		config:       config,
		httpServer:   httpServer,
		mqttClient:   mqttClient,
		publisher:    publisher,
		registry:     registry,
		executor:     executor,
		results:      results,
		consumerDone: make(chan struct{}),
		db:           boltDB,
		baseCtx:      baseCtx,
		cancel:       cancel,
		logger:       logger,
	}, nil
}

// RegisterAdapters 注册内置适配器
func RegisterAdapters(registry *dispatch.Registry, config *Config, kv db.KVRepository) {
	registry.Register("calc", adapter.NewCalculatorAdapter())
	registry.Register("file", adapter.NewFileAdapter(config.FileRoot))
	registry.Register("api", adapter.NewAPIAdapter(config.HTTPClientTimeout))
	registry.Register("kv", adapter.NewKVAdapter(kv))
	registry.Register("sys", adapter.NewSystemAdapter())
}

// Start 启动所有服务
func (s *Server) Start(ctx context.Context) error {
	// 结果消费，channel 在 Shutdown 中关闭后退出
	go func() {
		defer close(s.consumerDone)
		consumeResults(s.results, s.publisher, s.logger)
	}()

	group, ctx := errgroup.WithContext(ctx)

	if s.mqttClient != nil {
		group.Go(func() error {
			if err := s.mqttClient.Start(ctx); err != nil {
				return fmt.Errorf("MQTT client error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		s.logger.Info("HTTP server starting", zap.String("addr", s.config.HTTPAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// 任一服务出错或 ctx 取消时停止 HTTP，避免 Wait 阻塞
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		s.logger.Error("server error", zap.Error(err))
		return err
	}

	return nil
}

// Shutdown 优雅关闭服务器
// 顺序：停止接收请求 → 等待执行中的请求 → 关闭结果 channel → 等待消费完成
// 执行中的请求在 ctx 到期前不会被取消
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown HTTP server", zap.Error(err))
	}

	s.executor.Close()

	waitDone := make(chan struct{})
	go func() {
		s.executor.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-ctx.Done():
		// 超时后取消异步请求；同步请求受 handler 超时约束
		s.logger.Warn("timed out waiting for in-flight requests, cancelling")
		s.cancel()
		<-waitDone
	}

	close(s.results)
	select {
	case <-s.consumerDone:
	case <-ctx.Done():
		s.logger.Warn("timed out waiting for result consumer")
	}

	s.cancel()

	if s.mqttClient != nil {
		s.mqttClient.Close()
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close database", zap.Error(err))
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Run 运行服务器（带信号处理）
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start(ctx)
	}()

	var startErr error
	select {
	case <-sigChan:
		s.logger.Info("received shutdown signal")
		// 停止接收新请求，等 Start 返回后再排空
		cancel()
		startErr = <-errChan
	case startErr = <-errChan:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return startErr
}
