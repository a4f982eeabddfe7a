package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		urlFile string
		wantErr bool
	}{
		{"单个URL", []string{"https://example.com"}, "", false},
		{"URL文件", nil, "urls.txt", false},
		{"都未指定", nil, "", false},
		{"同时指定", []string{"https://example.com"}, "urls.txt", true},
		{"非法URL", []string{"example.com"}, "", true},
		{"非HTTP协议", []string{"ftp://example.com"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgs(tt.args, tt.urlFile)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewInitCmd(t *testing.T) {
	cmd := NewInitCmd()
	if cmd.Use != "init" {
		t.Errorf("Use = %q", cmd.Use)
	}

	flag := cmd.Flags().Lookup("output")
	if flag == nil || flag.Shorthand != "o" || flag.DefValue != defaultConfigDir {
		t.Errorf("output参数异常: %+v", flag)
	}
	if cmd.Flags().Lookup("force") == nil {
		t.Error("缺少force参数")
	}
}

func TestRunInitCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := NewInitCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"-o", dir}, args...))
		if err := cmd.Execute(); err != nil {
			t.Fatalf("init执行失败: %v", err)
		}
		return out.String()
	}

	t.Run("生成模板", func(t *testing.T) {
		out := run()
		for _, name := range []string{"config.yaml", "headers.yaml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("未生成 %s: %v", name, err)
			}
		}
		if strings.Count(out, "已生成") != 2 {
			t.Errorf("输出 = %q", out)
		}
	})

	t.Run("已存在时跳过", func(t *testing.T) {
		if out := run(); strings.Count(out, "跳过") != 2 {
			t.Errorf("输出 = %q", out)
		}
	})

	t.Run("force覆盖", func(t *testing.T) {
		if out := run("--force"); strings.Count(out, "已生成") != 2 {
			t.Errorf("输出 = %q", out)
		}
	})
}
