package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FILE_WRITTEN write 成功时的返回值
const FILE_WRITTEN = "File written"

// FileAdapter 文件适配器
type FileAdapter struct {
	// root 非空时所有路径都相对于 root 解析
	root string
}

// NewFileAdapter 创建文件适配器
func NewFileAdapter(root string) *FileAdapter {
	return &FileAdapter{root: root}
}

// Handle 支持 write
func (f *FileAdapter) Handle(ctx context.Context, action string, params json.RawMessage) (any, error) {
	switch action {
	case "write":
		return f.write(ctx, params)
	default:
		return nil, UnknownAction(action)
	}
}

// write 写入文件，已存在则覆盖
func (f *FileAdapter) write(ctx context.Context, params json.RawMessage) (any, error) {
	path, err := RequireString(params, "path")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, &ErrMissingParam{Name: "path"}
	}

	content, err := RequireString(params, "content")
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := f.writeFile(path, content); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return FILE_WRITTEN, nil
}

// writeFile root 非空时通过 os.Root 写入，符号链接也不能越出 root
func (f *FileAdapter) writeFile(path, content string) error {
	if f.root == "" {
		return os.WriteFile(path, []byte(content), 0644)
	}

	root, err := os.OpenRoot(f.root)
	if err != nil {
		return err
	}
	defer root.Close()

	file, err := root.OpenFile(relativePath(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// relativePath 转为 root 内的相对路径
func relativePath(path string) string {
	// Clean 一个以 / 开头的路径会去掉所有前导 ..
	rel := strings.TrimPrefix(filepath.Clean("/"+path), "/")
	if rel == "" {
		return "."
	}
	return rel
}
