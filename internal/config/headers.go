package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"github.com/spf13/viper"
)

const (
	// DefaultHeadersFile 默认头部配置文件路径
	DefaultHeadersFile = "configs/headers.yaml"

	// MaxConfigFileSize 头部配置文件上限 (1MB)
	MaxConfigFileSize = 1 * 1024 * 1024
)

// HeaderFile headers.yaml 头部配置文件
//
//	headers:      附加到每个请求的头部
//	cookies:      "name=value" 列表,合成为Cookie头部 (列表形式保留名称大小写)
//	user_agents:  --random-user-agent 的候选列表
type HeaderFile struct {
	Path string
}

// NewHeaderFile path为空时使用默认路径
func NewHeaderFile(path string) *HeaderFile {
	if path == "" {
		path = DefaultHeadersFile
	}
	return &HeaderFile{Path: path}
}

// Load 读取并解析头部配置
// 文件不存在时返回空配置,不会自动生成 (模板由 sitemirror init 生成)
func (hf *HeaderFile) Load() (*models.HeaderConfig, error) {
	info, err := os.Stat(hf.Path)
	if os.IsNotExist(err) {
		utils.Debugf("头部配置文件不存在 [%s], 仅使用默认头部", hf.Path)
		return emptyHeaderConfig(), nil
	}
	if err != nil {
		return nil, &models.ConfigError{FilePath: hf.Path, Cause: err}
	}
	if info.Size() > MaxConfigFileSize {
		return nil, &models.ConfigError{
			FilePath: hf.Path,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxConfigFileSize),
		}
	}

	v := viper.New()
	v.SetConfigFile(hf.Path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, &models.ConfigError{FilePath: hf.Path, Cause: err}
	}

	cfg := emptyHeaderConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &models.ConfigError{FilePath: hf.Path, Cause: fmt.Errorf("配置绑定失败: %w", err)}
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}

	for i, entry := range cfg.Cookies {
		if !strings.Contains(entry, "=") {
			return nil, &models.ConfigError{
				FilePath: hf.Path,
				Cause:    fmt.Errorf("cookies 第%d项应为 name=value: %q", i+1, entry),
			}
		}
	}
	return cfg, nil
}

func emptyHeaderConfig() *models.HeaderConfig {
	return &models.HeaderConfig{Headers: make(map[string]string)}
}
