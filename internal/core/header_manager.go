package core

import (
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/RecoveryAshes/sitemirror/internal/config"
	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// builtinUserAgents 未指定User-Agent文件时随机选择的候选列表
var builtinUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:91.0) Gecko/20100101 Firefox/91.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.159 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15",
}

// HeaderOptions 头部来源
type HeaderOptions struct {
	HeadersFile     string   // 头部配置文件
	CLIHeaders      []string // -H "Name: Value"
	UserAgent       string   // --user-agent
	Cookies         string   // --cookies, JSON对象
	RandomUserAgent bool     // --random-user-agent
	UserAgentFile   string   // --user-agent-file
}

// HeaderManager 管理HTTP请求头部
// 实现 HeaderProvider 接口; 构造时一次性加载并验证,之后只读,可被多个worker并发调用
//
// 优先级: 默认 < 配置文件 < --user-agent/--cookies < -H
type HeaderManager struct {
	// defaults 系统默认头部
	defaults http.Header

	// config 从配置文件加载的头部
	config http.Header

	// options --user-agent 与 --cookies 生成的头部
	options http.Header

	// cli 从 -H 参数解析的头部
	cli http.Header

	// userAgents 随机User-Agent候选,为空表示不随机
	userAgents []string

	// fileUserAgents 配置文件中的 user_agents
	fileUserAgents []string

	redactor *utils.HeaderRedactor

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewHeaderManager 创建头部管理器
// 任一来源解析或验证失败都返回错误(ConfigError或ValidationError)
func NewHeaderManager(opts HeaderOptions) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults: getDefaultHeaders(),
		options:  make(http.Header),
		redactor: utils.NewHeaderRedactor(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	cli, err := models.CliHeaders(opts.CLIHeaders).Parse()
	if err != nil {
		return nil, &models.ConfigError{FilePath: "--header", Cause: err}
	}
	hm.cli = cli

	if opts.UserAgent != "" {
		hm.options.Set("User-Agent", opts.UserAgent)
	}

	cookie, err := models.CookieJSON(opts.Cookies).Header()
	if err != nil {
		return nil, err
	}
	if cookie != "" {
		hm.options.Set("Cookie", cookie)
	}

	if err := hm.loadConfig(opts.HeadersFile); err != nil {
		return nil, err
	}

	validator := utils.NewHeaderValidator()
	if err := hm.validate(validator); err != nil {
		return nil, err
	}

	if opts.RandomUserAgent {
		hm.userAgents = hm.loadUserAgents(opts.UserAgentFile, validator)
	}

	utils.Debugf("HTTP头部: %s", hm.redactor.RedactToString(hm.GetMergedHeaders()))
	return hm, nil
}

// getDefaultHeaders 返回系统默认头部
func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{DefaultUserAgent},
		"Accept":          []string{"*/*"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// loadConfig 加载头部配置文件
func (hm *HeaderManager) loadConfig(path string) error {
	headerConfig, err := config.NewHeaderFile(path).Load()
	if err != nil {
		utils.Errorf("加载HTTP头部配置失败: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}
	// cookies 列表优先于 headers 中直接写的Cookie
	if cookie := headerConfig.CookieHeader(); cookie != "" {
		hm.config.Set("Cookie", cookie)
	}
	hm.fileUserAgents = headerConfig.UserAgents

	if len(hm.config) > 0 {
		utils.Debugf("成功加载%d个HTTP头部配置: %v", len(hm.config), hm.redactor.Redact(hm.config))
	}
	return nil
}

// validate 按 默认 → 配置 → 参数 → 命令行 的顺序验证
func (hm *HeaderManager) validate(validator *utils.HeaderValidator) error {
	sources := []struct {
		name    string
		headers http.Header
	}{
		{"默认", hm.defaults},
		{"配置文件", hm.config},
		{"命令行参数", hm.options},
		{"命令行", hm.cli},
	}

	for _, src := range sources {
		if err := validator.Validate(src.headers); err != nil {
			utils.Errorf("%s头部验证失败: %v", src.name, err)
			return err
		}
	}
	return nil
}

// loadUserAgents 确定随机User-Agent候选
// 来源优先级: --user-agent-file > 配置文件 user_agents > 内置列表
// 文件缺失、不可读或没有合法条目时回退到内置列表
func (hm *HeaderManager) loadUserAgents(path string, validator *utils.HeaderValidator) []string {
	if path == "" {
		if agents, _ := validator.FilterUserAgents(hm.fileUserAgents); len(agents) > 0 {
			utils.Infof("使用配置文件中的%d个User-Agent", len(agents))
			return agents
		}
		return builtinUserAgents
	}

	lines, err := utils.ReadLinesFromFile(path)
	if err != nil {
		utils.Warnf("读取User-Agent文件失败 [%s], 使用内置列表: %v", path, err)
		return builtinUserAgents
	}

	agents, dropped := validator.FilterUserAgents(lines)
	if dropped > 0 {
		utils.Warnf("User-Agent文件中有%d条非法条目被忽略 [%s]", dropped, path)
	}
	if len(agents) == 0 {
		utils.Warnf("User-Agent文件没有可用条目 [%s], 使用内置列表", path)
		return builtinUserAgents
	}

	utils.Infof("已加载%d个User-Agent", len(agents))
	return agents
}

// GetMergedHeaders 按优先级合并头部 (default < config < options < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.options, hm.cli} {
		for name, values := range layer {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders 返回脱敏后的头部 (用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
// 开启随机User-Agent时每次调用重新选择,-H 显式指定的User-Agent优先
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	headers := hm.GetMergedHeaders()
	if len(hm.userAgents) > 0 && hm.cli.Get("User-Agent") == "" {
		headers.Set("User-Agent", hm.randomUserAgent())
	}
	return headers, nil
}

// randomUserAgent 随机选择一个User-Agent
func (hm *HeaderManager) randomUserAgent() string {
	hm.rngMu.Lock()
	defer hm.rngMu.Unlock()
	return hm.userAgents[hm.rng.IntN(len(hm.userAgents))]
}

// UserAgents 随机User-Agent候选列表
func (hm *HeaderManager) UserAgents() []string {
	return hm.userAgents
}
