package crawlers

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestMapURLToPath(t *testing.T) {
	root := filepath.Join("out", "site")

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"根路径", "https://example.com/", "index.html"},
		{"无路径", "https://example.com", "index.html"},
		{"目录以斜杠结尾", "https://example.com/a/b/", "a/b/index.html"},
		{"无扩展名的最后一段", "https://example.com/about", "about/index.html"},
		{"去掉查询与片段", "https://example.com/css/site.css?v=2#top", "css/site.css"},
		{"替换保留字符", "https://example.com/a:b/c*d.png", "a_b/c_d.png"},
		{"编码的问号", "https://example.com/a%3Fb.css", "a_b.css"},
		{"空段被丢弃", "https://example.com//double//slash.js", "double/slash.js"},
		{"点段不能逃逸", "https://example.com/../../etc/passwd.txt", "__/__/etc/passwd.txt"},
		{"单点段", "https://example.com/./x.js", "_/x.js"},
		{"带点的目录", "https://example.com/v1.2/", "v1.2/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapURLToPath(tt.url, root)
			if err != nil {
				t.Fatalf("MapURLToPath() error = %v", err)
			}
			want := filepath.Join(root, filepath.FromSlash(tt.want))
			if got != want {
				t.Errorf("MapURLToPath(%q) = %q, want %q", tt.url, got, want)
			}
		})
	}
}

func TestMapURLToPath_StaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	urls := []string{
		"http://a.test/../../../../x",
		"http://a.test/%2e%2e/%2e%2e/y.css",
		"http://a.test/..%2f..%2fz.png",
		"http://a.test/a/../../b",
	}

	for _, u := range urls {
		got, err := MapURLToPath(u, root)
		if err != nil {
			t.Fatalf("MapURLToPath(%q) error = %v", u, err)
		}
		rel, err := filepath.Rel(root, got)
		if err != nil || strings.HasPrefix(rel, "..") {
			t.Errorf("MapURLToPath(%q) = %q 逃逸出根目录", u, got)
		}
	}
}

func TestMapURLToPath_Deterministic(t *testing.T) {
	a, _ := MapURLToPath("https://example.com/img/logo.png", "root")
	b, _ := MapURLToPath("https://example.com/img/logo.png", "root")
	if a != b {
		t.Errorf("同一URL映射结果不一致: %q != %q", a, b)
	}
}

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.css", "plain.css"},
		{`a\b`, "a_b"},
		{`q"uote<>|`, "q_uote___"},
		{".", "_"},
		{"..", "__"},
		{"...", "..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeSegment(tt.in); got != tt.want {
				t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRelativeLink(t *testing.T) {
	root := filepath.Join("out", "site")

	tests := []struct {
		name string
		from string
		to   string
		want string
	}{
		{"同级目录", "index.html", "img/a.png", "img/a.png"},
		{"上两级", "blog/post/index.html", "css/s.css", "../../css/s.css"},
		{"同目录", "docs/index.html", "docs/manual.pdf", "manual.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := filepath.Join(root, filepath.FromSlash(tt.from))
			to := filepath.Join(root, filepath.FromSlash(tt.to))

			got, err := RelativeLink(from, to)
			if err != nil {
				t.Fatalf("RelativeLink() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RelativeLink() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, `\`) {
				t.Errorf("相对链接包含反斜杠: %q", got)
			}

			// 相对链接从页面目录解析后应回到资源路径
			resolved := filepath.Join(filepath.Dir(from), filepath.FromSlash(got))
			if resolved != to {
				t.Errorf("解析结果 %q != 资源路径 %q", resolved, to)
			}
		})
	}
}

func TestHostDir(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://Example.com/a", "example.com"},
		{"http://127.0.0.1:8080/", "127.0.0.1_8080"},
		{"https://a.test", "a.test"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := HostDir(tt.url)
			if err != nil {
				t.Fatalf("HostDir() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HostDir(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
