package server

import (
	"go.uber.org/zap"

	"github.com/lucheng0127/adapterhub/internal/model"
)

// ResultPublisher 结果转发
type ResultPublisher interface {
	PublishResult(res model.Result) error
}

// consumeResults 消费结果直到 channel 关闭
// publisher 为 nil 时只记录日志
func consumeResults(results <-chan model.Result, publisher ResultPublisher, logger *zap.Logger) int {
	count := 0
	for res := range results {
		count++

		if res.IsSuccess() {
			logger.Info("request succeeded",
				zap.String("id", res.ID),
				zap.Any("data", res.Data),
			)
		} else {
			logger.Warn("request failed",
				zap.String("id", res.ID),
				zap.String("message", res.Message),
			)
		}

		if publisher == nil {
			continue
		}

		if err := publisher.PublishResult(res); err != nil {
			logger.Error("failed to forward result",
				zap.String("id", res.ID),
				zap.Error(err),
			)
		}
	}

	logger.Info("result consumer stopped", zap.Int("consumed", count))
	return count
}
