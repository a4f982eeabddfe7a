package crawlers

import (
	"net/url"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("解析URL失败 [%s]: %v", raw, err)
	}
	return u
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name         string
		includeTypes []string
		tag          string
		rel          string
		url          string
		want         Kind
	}{
		{"图片资源", nil, "img", "", "https://a.test/a.png", KindResource},
		{"样式表", nil, "link", "stylesheet", "https://a.test/s.css?v=1", KindResource},
		{"大写扩展名", nil, "script", "", "https://a.test/APP.JS", KindResource},
		{"锚点指向资源", nil, "a", "", "https://a.test/doc.pdf", KindResource},
		{"锚点指向页面", nil, "a", "", "https://a.test/b.html", KindLink},
		{"锚点无扩展名", nil, "a", "", "https://a.test/about", KindLink},
		{"非锚点的非资源", nil, "link", "canonical", "https://a.test/page.html", KindIgnore},
		{"nofollow锚点", nil, "a", "nofollow", "https://a.test/b.html", KindIgnore},
		{"nofollow资源", nil, "img", "external nofollow", "https://a.test/a.png", KindIgnore},
		{"mailto", nil, "a", "", "mailto:x@a.test", KindIgnore},
		{"javascript伪协议", nil, "a", "", "javascript:void(0)", KindIgnore},
		{"白名单命中", []string{".jpg"}, "img", "", "https://a.test/a.jpg", KindResource},
		{"白名单未命中", []string{".jpg"}, "img", "", "https://a.test/a.png", KindIgnore},
		{"白名单过滤锚点", []string{"jpg"}, "a", "", "https://a.test/b.html", KindIgnore},
		{"白名单内的页面链接", []string{"html"}, "a", "", "https://a.test/b.html", KindLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.includeTypes)
			if got := c.Classify(tt.tag, tt.rel, mustParse(t, tt.url)); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeIncludeTypes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"空", nil, []string{}},
		{"补全前导点", []string{"jpg", ".png", " .GIF "}, []string{".jpg", ".png", ".gif"}},
		{"逗号分隔", []string{"jpg,png, css"}, []string{".jpg", ".png", ".css"}},
		{"多个前导点", []string{"..svg"}, []string{".svg"}},
		{"去重与空项", []string{"jpg", ".JPG", "", " , "}, []string{".jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIncludeTypes(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeIncludeTypes(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewClassifier_EmptyIncludeTypes(t *testing.T) {
	c := NewClassifier([]string{" ", ""})
	if c.IncludeTypes() != nil {
		t.Errorf("全为空的白名单应视为未配置, 实际 %v", c.IncludeTypes())
	}
}
