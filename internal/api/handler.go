package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucheng0127/adapterhub/internal/dispatch"
	"github.com/lucheng0127/adapterhub/internal/model"
)

// Handler API 处理器
type Handler struct {
	registry  *dispatch.Registry
	executor  *dispatch.Executor
	baseCtx   context.Context
	logger    *zap.Logger
	startTime time.Time
}

// NewHandler 创建 API 处理器
// baseCtx 用于异步请求，HTTP 请求结束后异步任务仍继续执行
func NewHandler(
	baseCtx context.Context,
	registry *dispatch.Registry,
	executor *dispatch.Executor,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		registry:  registry,
		executor:  executor,
		baseCtx:   baseCtx,
		logger:    logger,
		startTime: time.Now(),
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/execute", h.Execute)
		v1.POST("/requests", h.Submit)
		v1.GET("/adapters", h.ListAdapters)
	}

	r.GET("/health", h.HealthCheck)
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// errorResponse 返回错误响应
func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Error: message})
}

// SubmitResponse 异步提交响应
type SubmitResponse struct {
	Accepted bool   `json:"accepted"`
	ID       string `json:"id"`
}

// AdaptersResponse 适配器列表响应
type AdaptersResponse struct {
	Adapters []string `json:"adapters"`
}

// bindRequest 解析请求体
func (h *Handler) bindRequest(c *gin.Context) (*model.Request, bool) {
	body, err := c.GetRawData()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	req, err := model.ParseRequest(body)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return req, true
}

// Execute 同步执行，返回 Result
// 适配器报错同样返回 200，错误信息在 Result 中
func (h *Handler) Execute(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	// 与异步请求共用并发上限
	res, err := h.executor.DispatchLimited(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("failed to execute request",
			zap.String("adapter", req.Adapter),
			zap.Error(err),
		)
		h.unavailable(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Submit 异步提交，Result 写入输出 channel
func (h *Handler) Submit(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	if err := h.executor.Go(h.baseCtx, req); err != nil {
		h.logger.Error("failed to submit request",
			zap.String("id", req.ID),
			zap.String("adapter", req.Adapter),
			zap.Error(err),
		)
		h.unavailable(c, err)
		return
	}

	c.JSON(http.StatusAccepted, SubmitResponse{Accepted: true, ID: req.ID})
}

// unavailable 执行器无法接收请求
func (h *Handler) unavailable(c *gin.Context, err error) {
	if errors.Is(err, dispatch.ErrExecutorClosed) || errors.Is(err, context.Canceled) {
		errorResponse(c, http.StatusServiceUnavailable, "server shutting down")
		return
	}
	errorResponse(c, http.StatusServiceUnavailable, "executor unavailable")
}

// ListAdapters 列出已注册的适配器
func (h *Handler) ListAdapters(c *gin.Context) {
	c.JSON(http.StatusOK, AdaptersResponse{Adapters: h.registry.Names()})
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	uptime := time.Since(h.startTime)
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: uptime.String(),
	})
}
