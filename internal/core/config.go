package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Mirror  models.MirrorConfig `mapstructure:"mirror"`
	HTTP    models.HTTPConfig   `mapstructure:"http"`
	Logging utils.LogConfig     `mapstructure:"logging"`
	Output  OutputConfig        `mapstructure:"output"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	ReportDir string `mapstructure:"report_dir"`
}

// flagBindings 命令行参数 → 配置键
// 只有显式设置的参数会覆盖配置文件
var flagBindings = map[string]string{
	"dir":                "mirror.dir",
	"depth":              "mirror.depth",
	"delay":              "mirror.delay",
	"threads":            "mirror.threads",
	"max-size":           "mirror.max_size",
	"include-types":      "mirror.include_types",
	"retry":              "mirror.retry",
	"follow-redirects":   "mirror.follow_redirects",
	"allow-cross-domain": "mirror.allow_cross_domain",
	"rate":               "mirror.rate",
	"no-progress":        "mirror.no_progress",
	"timeout":            "http.timeout",
	"no-verify-ssl":      "http.insecure_skip_verify",
	"proxy":              "http.proxy",
	"user-agent":         "http.user_agent",
	"random-user-agent":  "http.random_user_agent",
	"user-agent-file":    "http.user_agent_file",
	"cookies":            "http.cookies",
	"headers-file":       "http.headers_file",
	"log-level":          "logging.level",
	"report-dir":         "output.report_dir",
}

// LoadConfig 加载配置
// 优先级: 命令行参数 > 配置文件 > 默认值
// configPath为空时按默认位置搜索,找不到则只使用默认值
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sitemirror"))
		}
	}

	setDefaults(v)

	if flags != nil {
		for name, key := range flagBindings {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("绑定参数失败 [--%s]: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			FilePath: v.ConfigFileUsed(),
			Cause:    fmt.Errorf("解析配置文件失败: %w", err),
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		utils.Debugf("使用配置文件: %s", used)
	}
	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 镜像配置
	v.SetDefault("mirror.dir", "downloaded_site")
	v.SetDefault("mirror.depth", 1)
	v.SetDefault("mirror.delay", 1.0)
	v.SetDefault("mirror.threads", 5)
	v.SetDefault("mirror.max_size", 50)
	v.SetDefault("mirror.include_types", []string{})
	v.SetDefault("mirror.retry", 3)
	v.SetDefault("mirror.retry_backoff", 500*time.Millisecond)
	v.SetDefault("mirror.follow_redirects", false)
	v.SetDefault("mirror.allow_cross_domain", false)
	v.SetDefault("mirror.rate", 0)
	v.SetDefault("mirror.disk_reserve", 100)
	v.SetDefault("mirror.no_progress", false)

	// HTTP配置
	v.SetDefault("http.timeout", 10)
	v.SetDefault("http.insecure_skip_verify", false)
	v.SetDefault("http.headers_file", "configs/headers.yaml")

	// 日志配置
	logDefaults := utils.DefaultLogConfig()
	v.SetDefault("logging.level", logDefaults.Level)
	v.SetDefault("logging.dir", logDefaults.LogDir)
	v.SetDefault("logging.max_size", logDefaults.MaxSize)
	v.SetDefault("logging.max_backups", logDefaults.MaxBackups)
	v.SetDefault("logging.max_age", logDefaults.MaxAge)
	v.SetDefault("logging.compress", logDefaults.Compress)

	// 输出配置
	v.SetDefault("output.report_dir", "reports")
}

// Validate 验证全部配置
func (c *Config) Validate() error {
	if err := c.Mirror.Validate(); err != nil {
		return &models.ConfigError{FilePath: "mirror", Cause: err}
	}
	if err := c.HTTP.Validate(); err != nil {
		return &models.ConfigError{FilePath: "http", Cause: err}
	}
	return nil
}
