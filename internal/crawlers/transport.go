package crawlers

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
)

// NewTransport 按HTTP配置创建共享的Transport
// 页面获取器与下载worker共用同一个Transport(连接池、代理、TLS设置一致)
func NewTransport(cfg models.HTTPConfig, maxConns int) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.TimeoutDuration(),
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   maxConns + 1,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.TimeoutDuration(),
		ExpectContinueTimeout: 1 * time.Second,
	}

	if cfg.InsecureSkipVerify {
		utils.Warnf("TLS证书验证已禁用")
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil || proxyURL.Scheme == "" || proxyURL.Host == "" {
			if err == nil {
				err = fmt.Errorf("代理地址缺少协议或主机名")
			}
			return nil, &models.ConfigError{FilePath: "--proxy", Cause: err}
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		utils.Infof("使用代理: %s", proxyURL.Redacted())
	}

	return transport, nil
}

// NewHTTPClient 基于共享Transport创建带超时的客户端
// 重定向由net/http按默认策略跟随(最多10次)
func NewHTTPClient(transport http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// applyHeaders 把头部提供者的当前头部写入请求
// 获取失败只记录警告,请求继续使用Go默认头部
func applyHeaders(dst http.Header, provider models.HeaderProvider) {
	if provider == nil {
		return
	}

	headers, err := provider.GetHeaders()
	if err != nil {
		utils.Warnf("获取HTTP头部失败: %v", err)
		return
	}
	for name, values := range headers {
		if len(values) > 0 {
			dst.Set(name, values[0])
		}
	}
}
