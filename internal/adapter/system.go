package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// SystemAdapter 主机信息适配器
type SystemAdapter struct {
	// uptimePath 默认 /proc/uptime
	uptimePath string
}

// NewSystemAdapter 创建主机信息适配器
func NewSystemAdapter() *SystemAdapter {
	return &SystemAdapter{uptimePath: "/proc/uptime"}
}

// Handle 支持 hostname / uptime / ip
func (s *SystemAdapter) Handle(ctx context.Context, action string, params json.RawMessage) (any, error) {
	switch action {
	case "hostname":
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to get hostname: %w", err)
		}
		return hostname, nil

	case "uptime":
		return s.uptime()

	case "ip":
		iface, _ := StringParam(params, "interface")
		return interfaceIP(iface)

	default:
		return nil, UnknownAction(action)
	}
}

// uptime 系统运行时长（秒，四舍五入）
func (s *SystemAdapter) uptime() (int64, error) {
	data, err := os.ReadFile(s.uptimePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read uptime: %w", err)
	}

	// 格式: "12345.67 98765.43"
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty uptime file")
	}

	uptime, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse uptime: %w", err)
	}

	return int64(uptime + 0.5), nil
}

// interfaceIP 返回第一个非 loopback 的 IPv4 地址
// iface 非空时只查找该网卡
func interfaceIP(iface string) (string, error) {
	var addrs []net.Addr
	var err error

	if iface != "" {
		nif, ierr := net.InterfaceByName(iface)
		if ierr != nil {
			return "", fmt.Errorf("interface %s: %w", iface, ierr)
		}
		addrs, err = nif.Addrs()
	} else {
		addrs, err = net.InterfaceAddrs()
	}
	if err != nil {
		return "", fmt.Errorf("failed to list addresses: %w", err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP == nil || ipNet.IP.IsLoopback() {
			continue
		}
		if ipNet.IP.To4() != nil {
			return ipNet.IP.String(), nil
		}
	}

	return "", fmt.Errorf("no IPv4 address found")
}
