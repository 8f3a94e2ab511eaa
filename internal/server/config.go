package server

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 服务配置
type Config struct {
	// HTTP 服务地址
	HTTPAddr string
	// MQTT Broker 地址，为空时不启用 MQTT
	MQTTBroker string
	// MQTT 请求主题
	MQTTRequestTopic string
	// MQTT 结果主题
	MQTTResultTopic string
	// 数据库路径
	DBPath string
	// 日志级别
	LogLevel string
	// 结果 channel 缓冲大小
	ResultBuffer int
	// 最大并发请求数
	MaxInFlight int
	// 单次 Handle 超时
	HandlerTimeout time.Duration
	// file 适配器根目录，为空时不限制
	FileRoot string
	// api 适配器 HTTP 超时
	HTTPClientTimeout time.Duration
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	resultBuffer := parseInt(getEnv("AH_RESULT_BUFFER", "32"), 32)
	if resultBuffer < 1 {
		resultBuffer = 1
	}

	maxInFlight := parseInt(getEnv("AH_MAX_INFLIGHT", "64"), 64)
	if maxInFlight < 1 {
		maxInFlight = 1
	}

	return &Config{
		HTTPAddr:          getEnv("AH_HTTP_ADDR", ":8080"),
		MQTTBroker:        getEnv("AH_MQTT_BROKER", ""),
		MQTTRequestTopic:  getEnv("AH_MQTT_REQUEST_TOPIC", "adapterhub/request"),
		MQTTResultTopic:   getEnv("AH_MQTT_RESULT_TOPIC", "adapterhub/result"),
		DBPath:            getEnv("AH_DB_PATH", "/var/lib/adapterhub/kv.db"),
		LogLevel:          getEnv("AH_LOG_LEVEL", "info"),
		ResultBuffer:      resultBuffer,
		MaxInFlight:       maxInFlight,
		HandlerTimeout:    parseDuration(getEnv("AH_HANDLER_TIMEOUT", "30s"), 30*time.Second),
		FileRoot:          strings.TrimSpace(getEnv("AH_FILE_ROOT", "")),
		HTTPClientTimeout: parseDuration(getEnv("AH_HTTP_CLIENT_TIMEOUT", "10s"), 10*time.Second),
	}
}

// MQTTEnabled 是否启用 MQTT
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

// parseInt 解析整数，失败返回默认值
func parseInt(s string, defaultVal int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultVal
}

// parseDuration 解析时间间隔，纯数字按秒处理，失败返回默认值
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return defaultVal
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
