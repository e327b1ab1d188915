package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/purpose168/bazichat/internal/app"
	"github.com/purpose168/bazichat/internal/config"
	"github.com/purpose168/bazichat/internal/log"
	"github.com/purpose168/bazichat/internal/version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringP("base-url", "u", "", "后端服务地址")
	rootCmd.PersistentFlags().StringP("data-dir", "D", "", "自定义数据目录")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "调试")

	rootCmd.AddCommand(
		loginCmd,
		logoutCmd,
		chatCmd,
		conversationsCmd,
		historyCmd,
		userCmd,
		profilesCmd,
		logsCmd,
	)
}

var rootCmd = &cobra.Command{
	Use:   "bazichat",
	Short: "八字命理 AI 聊天客户端",
	Long:  "与八字命理服务对话的客户端，管理会话、档案和账号状态",
	Example: `
# 登录
bazichat login <微信登录码>

# 查看会话列表
bazichat conversations list

# 查看某个会话的历史
bazichat history <会话ID>
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		if user, ok := application.Sessions.User(); ok {
			fmt.Printf("已登录: %s（余额 %d）\n", user.Nickname, user.TokenBalance)
		} else {
			fmt.Println("未登录，请先执行 bazichat login")
		}
		return nil
	},
}

// setup 加载配置、初始化日志并装配应用程序实例
func setup(cmd *cobra.Command) (*app.App, error) {
	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, fmt.Errorf("获取后端服务地址失败: %v", err)
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, fmt.Errorf("获取数据目录失败: %v", err)
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return nil, fmt.Errorf("获取调试标志失败: %v", err)
	}

	cfg, err := config.Load(baseURL, dataDir, debug)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %v", err)
	}

	log.Setup(cfg.LogFile(), cfg.Debug)

	return app.New(cmd.Context(), cfg)
}

// Execute 运行根命令
func Execute() {
	defer log.RecoverPanic("main", nil)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
