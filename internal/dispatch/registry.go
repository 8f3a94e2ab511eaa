package dispatch

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/lucheng0127/adapterhub/internal/adapter"
)

// Registry 适配器注册表
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]adapter.Adapter
	logger   *zap.Logger
}

// NewRegistry 创建注册表
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		adapters: make(map[string]adapter.Adapter),
		logger:   logger,
	}
}

// Register 注册适配器，同名时后注册的覆盖先注册的
func (r *Registry) Register(name string, a adapter.Adapter) {
	if a == nil {
		r.logger.Warn("ignoring nil adapter", zap.String("adapter", name))
		return
	}

	r.mu.Lock()
	_, replaced := r.adapters[name]
	r.adapters[name] = a
	r.mu.Unlock()

	r.logger.Info("adapter registered",
		zap.String("adapter", name),
		zap.Bool("replaced", replaced),
	)
}

// Lookup 按名称查找适配器
func (r *Registry) Lookup(name string) (adapter.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[name]
	return a, ok
}

// Names 返回排序后的适配器名称
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
