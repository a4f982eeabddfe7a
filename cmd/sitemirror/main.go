package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/sitemirror/internal/core"
	"github.com/RecoveryAshes/sitemirror/internal/crawlers"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
// 镜像与HTTP参数通过viper绑定到配置,这里的变量只作为cobra的存储目标
var (
	// 全局参数
	configFile     string
	verbose        bool
	logLevel       string
	headers        []string
	headersFile    string
	validateConfig bool

	// 镜像参数
	outputDir        string
	depth            int
	delay            float64
	threads          int
	maxSize          int
	includeTypes     []string
	retry            int
	followRedirects  bool
	allowCrossDomain bool
	rateLimit        float64
	noProgress       bool

	// HTTP参数
	userAgent       string
	randomUA        bool
	userAgentFile   string
	cookies         string
	timeout         int
	noVerifySSL     bool
	proxy           string
	reportDir       string
	urlFile         string
	continueOnError bool
)

// appConfig 由PersistentPreRunE加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "sitemirror [url]",
	Short: "网站镜像工具",
	Long: `sitemirror - 把网站的页面与静态资源镜像到本地目录

从入口URL开始按深度优先遍历页面,下载图片、样式表、脚本、媒体与文档,
并把页面中的引用改写为本地相对路径,镜像可离线浏览。

示例:
  # 只镜像入口页面及其资源
  sitemirror https://example.com

  # 跟随站内链接,深度2,只下载图片
  sitemirror https://example.com --follow-redirects --depth 2 --include-types jpg,png

  # 批量镜像,每个站点写入 <dir>/<主机名>/
  sitemirror -f urls.txt -d mirrors

  # 自定义头部
  sitemirror https://example.com -H "Authorization: Bearer token" --cookies '{"session":"abc"}'

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init 不需要加载配置
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		config, err := core.LoadConfig(configFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig = config

		if err := utils.InitLogger(config.Logging); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}
		return nil
	},
	RunE: runMirror,
}

// runMirror 根命令: 单站点或批量镜像
func runMirror(cmd *cobra.Command, args []string) error {
	defer utils.CloseLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C: 停止遍历新页面,已入队的下载会快速失败,报告照常生成
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			utils.Warnf("收到中断信号: %v, 正在优雅关闭...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	headerManager, err := newHeaderManager()
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}

	if validateConfig {
		return printValidation(headerManager)
	}

	if len(args) == 0 && urlFile == "" {
		return cmd.Help()
	}

	if err := ValidateArgs(args, urlFile); err != nil {
		return err
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	mirrorConfig := appConfig.Mirror
	mirrorConfig.IncludeTypes = crawlers.NormalizeIncludeTypes(mirrorConfig.IncludeTypes)

	if urlFile != "" {
		urls, err := utils.ReadURLsFromFile(urlFile)
		if err != nil {
			return fmt.Errorf("读取URL文件失败: %w", err)
		}

		batch := core.NewBatchMirror(mirrorConfig, appConfig.HTTP, appConfig.Output.ReportDir, continueOnError, headerManager)
		summary := batch.Run(ctx, urls)
		if summary.FailCount > 0 && summary.SuccessCount == 0 {
			return fmt.Errorf("全部 %d 个站点镜像失败", summary.FailCount)
		}
		utils.Info("✨ 批量镜像任务完成!")
		return nil
	}

	mirror, err := core.NewMirror(args[0], mirrorConfig, appConfig.HTTP, appConfig.Output.ReportDir, headerManager)
	if err != nil {
		return fmt.Errorf("创建镜像任务失败: %w", err)
	}

	if _, err := mirror.Run(ctx); err != nil {
		return fmt.Errorf("镜像失败: %w", err)
	}

	utils.Info("✨ 镜像任务完成!")
	return nil
}

// newHeaderManager 按当前配置创建头部管理器
func newHeaderManager() (*core.HeaderManager, error) {
	return core.NewHeaderManager(core.HeaderOptions{
		HeadersFile:     appConfig.HTTP.HeadersFile,
		CLIHeaders:      headers,
		UserAgent:       appConfig.HTTP.UserAgent,
		Cookies:         appConfig.HTTP.Cookies,
		RandomUserAgent: appConfig.HTTP.RandomUserAgent,
		UserAgentFile:   appConfig.HTTP.UserAgentFile,
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sitemirror %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "构建时间: %s\n", BuildTime)
	},
}

func init() {
	// 全局参数
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "配置文件路径")
	pf.BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	pf.StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	pf.StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	pf.StringVar(&headersFile, "headers-file", "", "HTTP头部配置文件 (默认 configs/headers.yaml)")
	pf.BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 镜像参数
	f := rootCmd.Flags()
	f.StringVarP(&outputDir, "dir", "d", "downloaded_site", "输出目录")
	f.IntVar(&depth, "depth", 1, "最大递归深度")
	f.Float64Var(&delay, "delay", 1.0, "页面间延迟(秒)")
	f.IntVar(&threads, "threads", 5, "下载线程数")
	f.IntVar(&maxSize, "max-size", 50, "单文件最大大小(MB)")
	f.StringSliceVar(&includeTypes, "include-types", nil, "只下载这些扩展名,如 jpg,png")
	f.IntVar(&retry, "retry", 3, "失败请求的重试次数")
	f.BoolVar(&followRedirects, "follow-redirects", false, "递归跟随站内页面链接")
	f.BoolVar(&allowCrossDomain, "allow-cross-domain", false, "跟随其他主机的页面链接")
	f.Float64Var(&rateLimit, "rate", 0, "每秒下载请求数,0为不限")
	f.BoolVar(&noProgress, "no-progress", false, "关闭下载进度条")

	// HTTP参数
	f.StringVar(&userAgent, "user-agent", "", "自定义User-Agent")
	f.BoolVar(&randomUA, "random-user-agent", false, "每次请求随机选择User-Agent")
	f.StringVar(&userAgentFile, "user-agent-file", "", "User-Agent列表文件(每行一个)")
	f.StringVar(&cookies, "cookies", "", `Cookie, JSON对象格式: '{"name":"value"}'`)
	f.IntVar(&timeout, "timeout", 10, "请求超时(秒)")
	f.BoolVar(&noVerifySSL, "no-verify-ssl", false, "跳过TLS证书验证")
	f.StringVar(&proxy, "proxy", "", "代理地址,如 http://127.0.0.1:8080")
	f.StringVar(&reportDir, "report-dir", "reports", "报告输出目录")

	// 批量参数
	f.StringVarP(&urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	f.BoolVar(&continueOnError, "continue-on-error", true, "批量模式下遇到错误继续处理")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(NewInitCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
