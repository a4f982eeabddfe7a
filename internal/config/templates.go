package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Template 一个可由 init 命令生成的配置模板
type Template struct {
	Name string // 模板文件名
	Path string // 写入的目标路径
}

// DefaultTemplates 默认生成的模板: 主配置与头部配置
func DefaultTemplates(dir string) []Template {
	return []Template{
		{Name: "config.yaml", Path: filepath.Join(dir, "config.yaml")},
		{Name: "headers.yaml", Path: filepath.Join(dir, "headers.yaml")},
	}
}

// TemplateContent 读取内嵌模板
func TemplateContent(name string) ([]byte, error) {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("未知模板 [%s]: %w", name, err)
	}
	return data, nil
}

// WriteTemplate 写入模板文件
// 目标已存在且force为false时不覆盖,返回written=false
func WriteTemplate(tpl Template, force bool) (written bool, err error) {
	if !force {
		if _, err := os.Stat(tpl.Path); err == nil {
			return false, nil
		}
	}

	data, err := TemplateContent(tpl.Name)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(tpl.Path), 0755); err != nil {
		return false, fmt.Errorf("无法创建配置目录 [%s]: %w", filepath.Dir(tpl.Path), err)
	}
	if err := os.WriteFile(tpl.Path, data, 0644); err != nil {
		return false, fmt.Errorf("无法生成配置文件 [%s]: %w", tpl.Path, err)
	}
	return true, nil
}
