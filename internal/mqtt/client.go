package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/lucheng0127/adapterhub/internal/model"
)

// 默认主题
const (
	DEFAULT_REQUEST_TOPIC = "adapterhub/request"
	DEFAULT_RESULT_TOPIC  = "adapterhub/result"
)

// RequestSink 接收原始请求
type RequestSink interface {
	GoRaw(ctx context.Context, payload []byte) error
}

// Client MQTT 客户端（接收请求，发布结果）
type Client struct {
	broker       string
	requestTopic string
	resultTopic  string
	client       mqtt.Client
	sink         RequestSink
	logger       *zap.Logger
	connectChan  chan bool
	ctx          context.Context
	draining     atomic.Bool
}

// NewClient 创建 MQTT 客户端
// requestCtx 传给执行器，生命周期与服务一致，不随 Start 的 ctx 取消
func NewClient(requestCtx context.Context, broker, requestTopic, resultTopic string, sink RequestSink, logger *zap.Logger) *Client {
	if requestTopic == "" {
		requestTopic = DEFAULT_REQUEST_TOPIC
	}
	if resultTopic == "" {
		resultTopic = DEFAULT_RESULT_TOPIC
	}

	c := &Client{
		broker:       broker,
		requestTopic: requestTopic,
		resultTopic:  resultTopic,
		sink:         sink,
		logger:       logger,
		connectChan:  make(chan bool, 1),
		ctx:          requestCtx,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("adapterhub-server")
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)
	return c
}

// Start 连接 Broker 并阻塞到 ctx 结束
// ctx 结束后只停止接收请求，连接保留到 Close，以便发布剩余结果
func (c *Client) Start(ctx context.Context) error {
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	select {
	case <-c.connectChan:
		c.logger.Info("MQTT client connected", zap.String("broker", c.broker))
	case <-time.After(30 * time.Second):
		return fmt.Errorf("MQTT connection timeout")
	case <-ctx.Done():
		c.draining.Store(true)
		return nil
	}

	<-ctx.Done()

	c.logger.Info("MQTT client stopping request ingress")
	c.draining.Store(true)
	if token := c.client.Unsubscribe(c.requestTopic); token.WaitTimeout(5*time.Second) && token.Error() != nil {
		c.logger.Warn("failed to unsubscribe from request topic", zap.Error(token.Error()))
	}

	return nil
}

// Close 断开连接
func (c *Client) Close() {
	c.logger.Info("MQTT client shutting down")
	c.client.Disconnect(250)
}

// onConnect 连接成功回调
func (c *Client) onConnect(client mqtt.Client) {
	// 重连时不再订阅
	if c.draining.Load() {
		return
	}

	if token := client.Subscribe(c.requestTopic, 0, c.onRequestMessage); token.Wait() && token.Error() != nil {
		c.logger.Error("failed to subscribe to request topic", zap.Error(token.Error()))
		return
	}

	c.logger.Info("subscribed to request topic", zap.String("topic", c.requestTopic))

	select {
	case c.connectChan <- true:
	default:
	}
}

// onConnectionLost 连接丢失回调
func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.logger.Warn("MQTT connection lost", zap.Error(err))
}

// onRequestMessage 处理请求消息
func (c *Client) onRequestMessage(client mqtt.Client, msg mqtt.Message) {
	c.logger.Debug("received request message",
		zap.String("topic", msg.Topic()),
		zap.String("payload", string(msg.Payload())),
	)

	c.handleRequest(msg.Payload())
}

// handleRequest 交给执行器异步处理
func (c *Client) handleRequest(payload []byte) {
	if c.draining.Load() {
		c.logger.Warn("dropping request received while shutting down", zap.String("topic", c.requestTopic))
		return
	}

	if err := c.sink.GoRaw(c.ctx, payload); err != nil {
		c.logger.Error("failed to submit request",
			zap.String("topic", c.requestTopic),
			zap.Error(err),
		)
	}
}

// PublishResult 发布结果到结果主题
func (c *Client) PublishResult(res model.Result) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	token := c.client.Publish(c.resultTopic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish result: %w", token.Error())
	}

	c.logger.Debug("result published",
		zap.String("topic", c.resultTopic),
		zap.String("id", res.ID),
		zap.String("status", res.Status),
	)

	return nil
}
