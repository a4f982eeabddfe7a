package crawlers

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 关注的标签与属性
var referenceAttrs = map[string]string{
	"img":    "src",
	"script": "src",
	"link":   "href",
	"a":      "href",
	"video":  "src",
	"audio":  "src",
	"source": "src",
}

const referenceSelector = "img[src], script[src], link[href], a[href], video[src], audio[src], source[src]"

// ResourceRef 页面中的一个引用
// 只在单个页面的处理过程中存在;被接受下载后其属性值被改写为相对路径
type ResourceRef struct {
	Tag      string   // 标签名
	Attr     string   // 属性名
	Original string   // 原始属性值
	Rel      string   // rel属性(用于nofollow判断)
	Resolved *url.URL // 解析后的绝对URL(无片段)

	sel *goquery.Selection
}

// Value 当前属性值(改写后为相对路径)
func (r *ResourceRef) Value() string {
	v, _ := r.sel.Attr(r.Attr)
	return v
}

// PageDocument 一个页面的可变文档树
// 只属于处理该页面的那一次遍历调用
type PageDocument struct {
	doc  *goquery.Document
	base *url.URL
}

// ParsePage 解析HTML并确定引用解析基准(<base href> 优先于页面URL)
func ParsePage(pageURL *url.URL, body []byte) (*PageDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if parsed, err := pageURL.Parse(strings.TrimSpace(href)); err == nil {
			base = parsed
		}
	}

	return &PageDocument{doc: doc, base: base}, nil
}

// Base 引用解析基准
func (pd *PageDocument) Base() *url.URL {
	return pd.base
}

// Resolve 把原始引用解析为绝对URL并去掉片段
func (pd *PageDocument) Resolve(raw string) (*url.URL, error) {
	resolved, err := pd.base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved, nil
}

// References 按文档顺序提取所有关注的引用
// 空值与无法解析的值被跳过
func (pd *PageDocument) References() []*ResourceRef {
	var refs []*ResourceRef
	pd.doc.Find(referenceSelector).Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		attr, ok := referenceAttrs[tag]
		if !ok {
			return
		}

		raw, _ := s.Attr(attr)
		if strings.TrimSpace(raw) == "" {
			return
		}

		resolved, err := pd.Resolve(raw)
		if err != nil {
			return
		}

		rel, _ := s.Attr("rel")
		refs = append(refs, &ResourceRef{
			Tag:      tag,
			Attr:     attr,
			Original: raw,
			Rel:      rel,
			Resolved: resolved,
			sel:      s,
		})
	})
	return refs
}
