package crawlers

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html><head>
<link rel="stylesheet" href="css/site.css">
<script src="/js/app.js"></script>
</head><body>
<img src="img/logo.png#frag">
<a href="about.html#team">about</a>
<a href="">empty</a>
<video src="//cdn.test/v.mp4"></video>
<audio src="a.mp3"></audio>
<source src="b.ogg">
</body></html>`

func TestParsePage_ReferencesInDocumentOrder(t *testing.T) {
	pd, err := ParsePage(mustParse(t, "https://a.test/blog/post.html"), []byte(samplePage))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	want := []struct {
		tag, resolved string
	}{
		{"link", "https://a.test/blog/css/site.css"},
		{"script", "https://a.test/js/app.js"},
		{"img", "https://a.test/blog/img/logo.png"},
		{"a", "https://a.test/blog/about.html"},
		{"video", "https://cdn.test/v.mp4"},
		{"audio", "https://a.test/blog/a.mp3"},
		{"source", "https://a.test/blog/b.ogg"},
	}

	refs := pd.References()
	if len(refs) != len(want) {
		t.Fatalf("引用数 = %d, want %d", len(refs), len(want))
	}
	for i, w := range want {
		if refs[i].Tag != w.tag || refs[i].Resolved.String() != w.resolved {
			t.Errorf("第%d个引用 = %s %s, want %s %s", i, refs[i].Tag, refs[i].Resolved, w.tag, w.resolved)
		}
	}
	if refs[0].Rel != "stylesheet" {
		t.Errorf("link的rel = %q", refs[0].Rel)
	}
	if refs[2].Original != "img/logo.png#frag" {
		t.Errorf("原始值应保留片段: %q", refs[2].Original)
	}
}

func TestParsePage_BaseHref(t *testing.T) {
	body := `<html><head><base href="https://static.a.test/assets/"></head>
<body><img src="x.png"></body></html>`

	pd, err := ParsePage(mustParse(t, "https://a.test/page/"), []byte(body))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	if got := pd.Base().String(); got != "https://static.a.test/assets/" {
		t.Errorf("Base() = %s", got)
	}
	refs := pd.References()
	if len(refs) != 1 || refs[0].Resolved.String() != "https://static.a.test/assets/x.png" {
		t.Errorf("引用未按<base>解析: %v", refs)
	}
}

func TestRewriteAndSave(t *testing.T) {
	root := t.TempDir()
	pd, err := ParsePage(mustParse(t, "https://a.test/blog/post/"), []byte(samplePage))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	pagePath, _ := MapURLToPath("https://a.test/blog/post/", root)
	for _, ref := range pd.References() {
		if ref.Tag != "img" && ref.Tag != "link" {
			continue
		}
		dest, _ := MapURLToPath(ref.Resolved.String(), root)
		if err := pd.Rewrite(ref, pagePath, dest); err != nil {
			t.Fatalf("Rewrite() error = %v", err)
		}
		if strings.HasPrefix(ref.Value(), "http") {
			t.Errorf("改写后仍是绝对URL: %s", ref.Value())
		}
	}

	if err := pd.Save(pagePath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(pagePath)
	if err != nil {
		t.Fatalf("读取页面失败: %v", err)
	}
	html := string(data)

	for _, want := range []string{
		`href="css/site.css"`,
		`src="img/logo.png"`,
		`src="/js/app.js"`,       // 未被接受的引用保持原样
		`href="about.html#team"`, // 链接不改写
	} {
		if !strings.Contains(html, want) {
			t.Errorf("保存的页面缺少 %s\n%s", want, html)
		}
	}

	if filepath.Base(pagePath) != "index.html" {
		t.Errorf("页面路径 = %s", pagePath)
	}
}

func TestRewrite_EscapesFileNames(t *testing.T) {
	root := t.TempDir()
	body := `<html><body>
<img src="/a%23b.png">
<img src="/100%25.png">
<img src="/img/my%20logo.png">
<script src="/js/q%3Fv.js"></script>
</body></html>`

	pd, err := ParsePage(mustParse(t, "https://a.test/blog/post/"), []byte(body))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	pagePath, _ := MapURLToPath("https://a.test/blog/post/", root)
	pageRef := &url.URL{Scheme: "file", Path: filepath.ToSlash(pagePath)}

	want := map[string]string{
		"https://a.test/a%23b.png":         "../../a%23b.png",
		"https://a.test/100%25.png":        "../../100%25.png",
		"https://a.test/img/my%20logo.png": "../../img/my%20logo.png",
		"https://a.test/js/q%3Fv.js":       "../../js/q_v.js",
	}

	for _, ref := range pd.References() {
		dest, err := MapURLToPath(ref.Resolved.String(), root)
		if err != nil {
			t.Fatalf("MapURLToPath() error = %v", err)
		}
		if err := pd.Rewrite(ref, pagePath, dest); err != nil {
			t.Fatalf("Rewrite() error = %v", err)
		}

		if got := ref.Value(); got != want[ref.Resolved.String()] {
			t.Errorf("%s 改写为 %q, want %q", ref.Resolved, got, want[ref.Resolved.String()])
		}

		// 改写后的值按URL解析必须回到目标文件
		resolved, err := pageRef.Parse(ref.Value())
		if err != nil {
			t.Errorf("改写值 %q 不是合法的URL引用: %v", ref.Value(), err)
			continue
		}
		if resolved.Path != filepath.ToSlash(dest) || resolved.Fragment != "" || resolved.RawQuery != "" {
			t.Errorf("改写值 %q 解析为 %s, want %s", ref.Value(), resolved.Path, filepath.ToSlash(dest))
		}
	}
}

func TestSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "feed.xml")
	if err := saveRaw(path, []byte("<rss/>")); err != nil {
		t.Fatalf("saveRaw() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "<rss/>" {
		t.Errorf("内容 = %q", data)
	}
}
