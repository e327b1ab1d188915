package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	userCmd.AddCommand(userAvatarCmd, userSettingsCmd)
	userSettingsCmd.Flags().Int64("context-size", 0, "上下文长度（0 表示不修改）")
	userSettingsCmd.Flags().String("ai-style", "", "AI 回复风格（留空表示不修改）")
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "查看当前账号信息",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		user, err := application.Sessions.Refresh(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("昵称: %s\n", user.Nickname)
		fmt.Printf("余额: %d\n", user.TokenBalance)
		if user.Gender != "" {
			fmt.Printf("性别: %s\n", user.Gender)
		}
		return nil
	},
}

var userAvatarCmd = &cobra.Command{
	Use:   "avatar <图片路径>",
	Short: "上传头像",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("打开图片失败: %v", err)
		}
		defer file.Close()

		url, err := application.Sessions.UploadAvatar(cmd.Context(), filepath.Base(args[0]), file)
		if err != nil {
			return err
		}
		fmt.Println("头像已更新:", url)
		return nil
	},
}

var userSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "查看或修改聊天设置",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		settings, err := application.Sessions.Settings(cmd.Context())
		if err != nil {
			return err
		}

		contextSize, _ := cmd.Flags().GetInt64("context-size")
		aiStyle, _ := cmd.Flags().GetString("ai-style")
		if contextSize > 0 || aiStyle != "" {
			if contextSize > 0 {
				settings.ContextSize = contextSize
			}
			if aiStyle != "" {
				settings.AIStyle = aiStyle
			}
			if err := application.Sessions.UpdateSettings(cmd.Context(), settings); err != nil {
				return err
			}
		}

		fmt.Printf("上下文长度: %d\n", settings.ContextSize)
		fmt.Printf("回复风格: %s\n", settings.AIStyle)
		fmt.Printf("流式输出: %v\n", settings.StreamOutput)
		return nil
	},
}
