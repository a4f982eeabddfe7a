package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/RecoveryAshes/sitemirror/internal/models"
)

// ReadLinesFromFile 读取文件中的非空行,跳过 # 开头的注释行
func ReadLinesFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	lines := make([]string, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return lines, nil
}

// ReadURLsFromFile 从文件中读取URL列表
// 无效URL记录警告后跳过,没有任何有效URL时返回错误
func ReadURLsFromFile(path string) ([]string, error) {
	lines, err := ReadLinesFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取URL文件失败: %w", err)
	}

	urls := make([]string, 0, len(lines))
	for i, line := range lines {
		if err := models.ValidateURL(line); err != nil {
			Warnf("跳过无效URL (第 %d 个): %v", i+1, err)
			continue
		}
		urls = append(urls, line)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("URL文件中没有有效的URL")
	}

	Infof("从文件加载了 %d 个URL", len(urls))
	return urls, nil
}

// FormatBytes 将字节数格式化为易读字符串
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
