package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultScaffoldPath is where InitScaffold writes when no path is given.
const DefaultScaffoldPath = "vaultbot.json"

// InitScaffold 写入默认配置模板；文件已存在时不覆盖
// InitScaffold writes the default config to path (YAML for .yaml/.yml,
// JSON otherwise). An existing file is left untouched and reported via
// created=false.
func InitScaffold(path string) (written string, created bool, err error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultScaffoldPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(resolved)
	if err == nil {
		if info.IsDir() {
			return "", false, fmt.Errorf("config path is a directory: %s", resolved)
		}
		return resolved, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", false, fmt.Errorf("mkdir config dir: %w", err)
	}

	data, err := marshalScaffold(resolved, Default())
	if err != nil {
		return "", false, err
	}
	// 配置里可能写入 token，仅本人可读
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return "", false, fmt.Errorf("write config: %w", err)
	}
	return resolved, true, nil
}

func marshalScaffold(path string, cfg Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshal default config: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal default config: %w", err)
		}
		return append(data, '\n'), nil
	}
}
