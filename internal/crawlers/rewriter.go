package crawlers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
)

// Rewrite 把引用的属性改写为从页面文件指向资源文件的相对链接(始终使用 / 分隔,逐段转义)
// 只修改内存中的文档树
func (pd *PageDocument) Rewrite(ref *ResourceRef, pagePath, resourcePath string) error {
	rel, err := RelativeLink(pagePath, resourcePath)
	if err != nil {
		return err
	}
	ref.sel.SetAttr(ref.Attr, EscapeLink(rel))
	return nil
}

// Save 将文档序列化写入pagePath,按需创建父目录
func (pd *PageDocument) Save(pagePath string) error {
	if err := os.MkdirAll(filepath.Dir(pagePath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	file, err := os.Create(pagePath)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, node := range pd.doc.Nodes {
		if err := html.Render(w, node); err != nil {
			file.Close()
			return fmt.Errorf("序列化HTML失败: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return file.Close()
}

// saveRaw 原样写入非HTML页面
func saveRaw(pagePath string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(pagePath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(pagePath, body, 0644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}
