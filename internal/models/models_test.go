package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://example.com", false},
		{"有效的HTTPS URL", "https://example.com", false},
		{"带路径的URL", "https://example.com/path/to/resource", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
		{"无协议", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invalid *InvalidURLError
				if !errors.As(err, &invalid) {
					t.Errorf("错误类型应为 *InvalidURLError, 实际 %T", err)
				}
			}
		})
	}
}

func TestMirrorConfig_Validate(t *testing.T) {
	valid := MirrorConfig{
		OutputDir: "out",
		Depth:     1,
		Delay:     1.0,
		Threads:   5,
		MaxSizeMB: 50,
		Retry:     3,
	}

	tests := []struct {
		name    string
		mutate  func(c *MirrorConfig)
		wantErr bool
	}{
		{"有效配置", func(c *MirrorConfig) {}, false},
		{"深度为0", func(c *MirrorConfig) { c.Depth = 0 }, false},
		{"深度过大", func(c *MirrorConfig) { c.Depth = 51 }, true},
		{"负延迟", func(c *MirrorConfig) { c.Delay = -1 }, true},
		{"线程数为0", func(c *MirrorConfig) { c.Threads = 0 }, true},
		{"空输出目录", func(c *MirrorConfig) { c.OutputDir = "" }, true},
		{"最大大小为0", func(c *MirrorConfig) { c.MaxSizeMB = 0 }, true},
		{"重试次数过大", func(c *MirrorConfig) { c.Retry = 11 }, true},
		{"负速率", func(c *MirrorConfig) { c.RateLimit = -0.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMirrorConfig_Conversions(t *testing.T) {
	config := MirrorConfig{Delay: 0.5, MaxSizeMB: 2}
	if got := config.DelayDuration(); got != 500*time.Millisecond {
		t.Errorf("DelayDuration() = %v, want 500ms", got)
	}
	if got := config.MaxSizeBytes(); got != 2*1024*1024 {
		t.Errorf("MaxSizeBytes() = %d, want %d", got, 2*1024*1024)
	}
}

func TestHTTPConfig_Validate(t *testing.T) {
	if err := (&HTTPConfig{Timeout: 10}).Validate(); err != nil {
		t.Errorf("有效超时不应报错: %v", err)
	}
	if err := (&HTTPConfig{Timeout: 0}).Validate(); err == nil {
		t.Error("超时为0应报错")
	}
}

func TestCrawlItem_Next(t *testing.T) {
	item := CrawlItem{URL: "http://a.test/", Depth: 0}
	next := item.Next("http://a.test/x.html")

	if next.Depth != 1 {
		t.Errorf("Depth = %d, want 1", next.Depth)
	}
	if next.SourceURL != item.URL {
		t.Errorf("SourceURL = %q, want %q", next.SourceURL, item.URL)
	}
}

func TestIsResourceExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".css", true},
		{".JS", true},
		{".woff2", true},
		{".pdf", true},
		{".html", false},
		{".webp", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsResourceExtension(tt.ext); got != tt.want {
				t.Errorf("IsResourceExtension(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestCliHeaders_Parse(t *testing.T) {
	headers, err := CliHeaders{"Authorization: Bearer x", "X-Test:  v "}.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if headers.Get("Authorization") != "Bearer x" {
		t.Errorf("Authorization = %q", headers.Get("Authorization"))
	}
	if headers.Get("X-Test") != "v" {
		t.Errorf("X-Test = %q", headers.Get("X-Test"))
	}

	if _, err := (CliHeaders{"NoColon"}).Parse(); err == nil {
		t.Error("缺少冒号应报错")
	}
	if _, err := (CliHeaders{": value"}).Parse(); err == nil {
		t.Error("空名称应报错")
	}
}

func TestCookieJSON_Header(t *testing.T) {
	tests := []struct {
		name    string
		cookies CookieJSON
		want    string
		wantErr bool
	}{
		{"空", "", "", false},
		{"单个", `{"session": "abc"}`, "session=abc", false},
		{"按键排序", `{"b": "2", "a": "1"}`, "a=1; b=2", false},
		{"数字值", `{"id": 42}`, "id=42", false},
		{"非法JSON", `{"a":`, "", true},
		{"非对象", `["a"]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cookies.Header()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Header() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var configErr *ConfigError
				if !errors.As(err, &configErr) {
					t.Errorf("错误类型应为 *ConfigError, 实际 %T", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Header() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchError_Retryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"传输层错误", &FetchError{URL: "u", Cause: errors.New("reset")}, true},
		{"429", &FetchError{URL: "u", StatusCode: 429}, true},
		{"503", &FetchError{URL: "u", StatusCode: 503}, true},
		{"404", &FetchError{URL: "u", StatusCode: 404}, false},
		{"包装后的500", fmt.Errorf("wrap: %w", &FetchError{URL: "u", StatusCode: 500}), true},
		{"超限", &OversizeError{URL: "u", Size: 10, Limit: 5}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&FetchError{StatusCode: 404}, "http_error"},
		{&FetchError{Cause: errors.New("timeout")}, "network_error"},
		{&OversizeError{}, "oversize"},
		{fmt.Errorf("写入失败: %w", ErrInsufficientDisk), "disk_full"},
		{fmt.Errorf("%w: a.html", ErrPathCollision), "path_collision"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMirrorReport_JSON(t *testing.T) {
	report := NewMirrorReport("http://a.test/", "a.test", "out", MirrorConfig{Depth: 1})
	if report.RunID == "" {
		t.Fatal("RunID不应为空")
	}

	report.AddResult(DownloadResult{Task: DownloadTask{URL: "http://a.test/ok.css"}, Status: DownloadSaved})
	report.AddResult(DownloadResult{
		Task:     DownloadTask{URL: "http://a.test/missing.png", Destination: "out/missing.png"},
		Status:   DownloadFailed,
		Err:      &FetchError{URL: "http://a.test/missing.png", StatusCode: 404},
		Attempts: 1,
	})
	report.Finish(TaskStats{PagesVisited: 1})

	if len(report.FailedDownloads) != 1 {
		t.Fatalf("FailedDownloads = %d, want 1", len(report.FailedDownloads))
	}

	data, err := report.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("输出不是合法JSON: %v", err)
	}
	if decoded["run_id"] != report.RunID {
		t.Errorf("run_id = %v, want %s", decoded["run_id"], report.RunID)
	}

	var restored MirrorReport
	if err := restored.FromJSON(data); err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if restored.FailedDownloads[0].ErrorType != "http_error" {
		t.Errorf("ErrorType = %q, want http_error", restored.FailedDownloads[0].ErrorType)
	}
}
