package models

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ValidateURL 验证种子URL: 必须是带主机名的http/https地址
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return &InvalidURLError{URL: urlStr, Reason: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &InvalidURLError{URL: urlStr, Reason: "URL必须是HTTP或HTTPS协议"}
	}
	if parsed.Host == "" {
		return &InvalidURLError{URL: urlStr, Reason: "URL必须包含主机名"}
	}
	return nil
}

// generateID 生成唯一ID
func generateID() string {
	return uuid.New().String()
}
