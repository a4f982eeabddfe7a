package main

import (
	"fmt"

	"github.com/RecoveryAshes/sitemirror/internal/config"
	"github.com/spf13/cobra"
)

// 模板默认写入目录
const defaultConfigDir = "configs"

// NewInitCmd 创建 init 子命令
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "生成配置文件模板",
		Long: `在指定目录生成 config.yaml 与 headers.yaml 模板。

示例:
  # 生成到 ./configs
  sitemirror init

  # 生成到其他目录并覆盖已有文件
  sitemirror init -o ~/.sitemirror --force`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", defaultConfigDir, "模板输出目录")
	cmd.Flags().Bool("force", false, "覆盖已存在的文件")
	return cmd
}

// runInitCmd 写入模板,已存在的文件默认跳过
func runInitCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, tpl := range config.DefaultTemplates(dir) {
		written, err := config.WriteTemplate(tpl, force)
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(out, "✅ 已生成: %s\n", tpl.Path)
		} else {
			fmt.Fprintf(out, "⏭️  已存在,跳过: %s (使用 --force 覆盖)\n", tpl.Path)
		}
	}
	return nil
}
