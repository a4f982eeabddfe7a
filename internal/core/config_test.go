package core

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/spf13/pflag"
)

// newTestFlags 与命令行一致的参数集合
func newTestFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dir", "downloaded_site", "")
	fs.Int("depth", 1, "")
	fs.Float64("delay", 1.0, "")
	fs.Int("threads", 5, "")
	fs.StringSlice("include-types", nil, "")
	fs.Bool("follow-redirects", false, "")
	fs.Bool("no-verify-ssl", false, "")
	fs.Int("timeout", 10, "")
	fs.String("proxy", "", "")
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""), nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	m := cfg.Mirror
	if m.OutputDir != "downloaded_site" || m.Depth != 1 || m.Delay != 1.0 || m.Threads != 5 {
		t.Errorf("镜像默认值异常: %+v", m)
	}
	if m.MaxSizeMB != 50 || m.Retry != 3 || m.RetryBackoff != 500*time.Millisecond {
		t.Errorf("下载默认值异常: %+v", m)
	}
	if m.FollowRedirects || m.AllowCrossDomain {
		t.Error("跟随链接与跨域默认应关闭")
	}
	if cfg.HTTP.Timeout != 10 || cfg.HTTP.InsecureSkipVerify {
		t.Errorf("HTTP默认值异常: %+v", cfg.HTTP)
	}
	if cfg.Output.ReportDir != "reports" || cfg.Logging.Level != "info" {
		t.Errorf("输出/日志默认值异常: %+v %+v", cfg.Output, cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应通过验证: %v", err)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
mirror:
  dir: site_out
  depth: 3
  include_types: [jpg, png]
  retry_backoff: 2s
http:
  timeout: 30
logging:
  level: debug
`)

	cfg, err := LoadConfig(path, newTestFlags())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Mirror.OutputDir != "site_out" || cfg.Mirror.Depth != 3 {
		t.Errorf("配置文件未生效: %+v", cfg.Mirror)
	}
	if !reflect.DeepEqual(cfg.Mirror.IncludeTypes, []string{"jpg", "png"}) {
		t.Errorf("IncludeTypes = %v", cfg.Mirror.IncludeTypes)
	}
	if cfg.Mirror.RetryBackoff != 2*time.Second {
		t.Errorf("RetryBackoff = %v", cfg.Mirror.RetryBackoff)
	}
	if cfg.HTTP.Timeout != 30 || cfg.Logging.Level != "debug" {
		t.Errorf("HTTP/日志配置未生效: %+v %+v", cfg.HTTP, cfg.Logging)
	}
	// 未设置的参数不覆盖配置文件
	if cfg.Mirror.Threads != 5 {
		t.Errorf("Threads = %d, want 5", cfg.Mirror.Threads)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "mirror:\n  depth: 3\n  dir: from_file\n")

	fs := newTestFlags()
	if err := fs.Parse([]string{
		"--depth", "7",
		"--follow-redirects",
		"--no-verify-ssl",
		"--include-types", ".css,js",
	}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, fs)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Mirror.Depth != 7 {
		t.Errorf("Depth = %d, want 7", cfg.Mirror.Depth)
	}
	if cfg.Mirror.OutputDir != "from_file" {
		t.Errorf("OutputDir = %s, 未设置的参数不应覆盖配置文件", cfg.Mirror.OutputDir)
	}
	if !cfg.Mirror.FollowRedirects {
		t.Error("--follow-redirects 未生效")
	}
	if !cfg.HTTP.InsecureSkipVerify {
		t.Error("--no-verify-ssl 应映射到 http.insecure_skip_verify")
	}
	if !reflect.DeepEqual(cfg.Mirror.IncludeTypes, []string{".css", "js"}) {
		t.Errorf("IncludeTypes = %v", cfg.Mirror.IncludeTypes)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := writeConfig(t, "mirror:\n  depth: [unclosed\n")

	_, err := LoadConfig(path, nil)
	var cfgErr *models.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("期望 *ConfigError, 实际 %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "mirror:\n  threads: 0\n"), nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	err = cfg.Validate()
	var cfgErr *models.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.FilePath != "mirror" {
		t.Errorf("期望mirror配置错误, 实际 %v", err)
	}
}
