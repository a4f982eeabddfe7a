package main

import (
	"fmt"
	"sort"

	"github.com/RecoveryAshes/sitemirror/internal/core"
	"github.com/RecoveryAshes/sitemirror/internal/models"
	"github.com/RecoveryAshes/sitemirror/internal/utils"
)

// ValidateArgs 验证入口参数: 单个URL与 --url-file 二选一
func ValidateArgs(args []string, urlFile string) error {
	if len(args) > 0 && urlFile != "" {
		return fmt.Errorf("不能同时指定URL参数与 --url-file")
	}
	if len(args) == 0 {
		return nil
	}
	if err := models.ValidateURL(args[0]); err != nil {
		return fmt.Errorf("无效的目标URL: %w", err)
	}
	return nil
}

// printValidation 输出配置验证结果与生效的头部(脱敏)
// 头部管理器能创建成功即表示头部配置已通过验证
func printValidation(hm *core.HeaderManager) error {
	utils.Info("🔍 验证配置...")
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := hm.GetSafeHeaders()
	names := make([]string, 0, len(safeHeaders))
	for name := range safeHeaders {
		names = append(names, name)
	}
	sort.Strings(names)

	utils.Info("✅ 配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(names))
	for _, name := range names {
		utils.Infof("  %s: %s", name, safeHeaders[name])
	}
	if agents := hm.UserAgents(); len(agents) > 0 {
		utils.Infof("随机User-Agent候选: %d个", len(agents))
	}
	return nil
}
