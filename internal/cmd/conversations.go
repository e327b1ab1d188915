package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/purpose168/bazichat/internal/api"
	"github.com/purpose168/bazichat/internal/chat"
	"github.com/spf13/cobra"
)

func init() {
	listConversationsCmd.Flags().Int("skip", 0, "跳过前 N 条")
	listConversationsCmd.Flags().Int("limit", 0, "最多返回 N 条（0 表示不限）")
	newConversationCmd.Flags().String("title", "", "会话标题")
	newConversationCmd.Flags().String("profile", "", "关联的八字档案ID")

	shareConversationCmd.Flags().StringP("out", "o", "", "码图片的保存路径（留空时保存到当前目录）")

	conversationsCmd.AddCommand(
		listConversationsCmd,
		newConversationCmd,
		renameConversationCmd,
		deleteConversationCmd,
		shareConversationCmd,
	)
}

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "管理会话目录",
}

var listConversationsCmd = &cobra.Command{
	Use:   "list",
	Short: "列出会话，按最近更新排序",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		skip, _ := cmd.Flags().GetInt("skip")
		limit, _ := cmd.Flags().GetInt("limit")

		conversations, err := application.Chat.Load(cmd.Context(), skip, limit)
		if errors.Is(err, api.ErrNetwork) {
			// 离线时退回本地缓存
			conversations, err = application.Chat.CachedConversations(cmd.Context())
			if err == nil {
				fmt.Println("（网络不可用，以下为本地缓存）")
			}
		}
		if err != nil {
			return err
		}

		if len(conversations) == 0 {
			fmt.Println("暂无会话")
			return nil
		}
		for _, conv := range conversations {
			printConversation(conv)
		}
		return nil
	},
}

var newConversationCmd = &cobra.Command{
	Use:   "new",
	Short: "创建新会话并设为当前会话",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		title, _ := cmd.Flags().GetString("title")
		profileID, _ := cmd.Flags().GetString("profile")

		conv, err := application.Chat.Create(cmd.Context(), chat.CreateParams{
			Title:         title,
			BaziProfileID: profileID,
		})
		if err != nil {
			return err
		}

		fmt.Println("已创建会话:")
		printConversation(conv)
		return nil
	},
}

var renameConversationCmd = &cobra.Command{
	Use:   "rename <会话ID> <新标题>",
	Short: "重命名会话",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		conv, err := application.Chat.Rename(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println("已重命名:")
		printConversation(conv)
		return nil
	},
}

var deleteConversationCmd = &cobra.Command{
	Use:     "rm <会话ID>",
	Aliases: []string{"delete"},
	Short:   "删除会话及其全部消息",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		if err := application.Chat.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("已删除会话", args[0])
		return nil
	},
}

var shareConversationCmd = &cobra.Command{
	Use:   "share <会话ID>",
	Short: "生成指向会话的小程序分享码",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		code, err := application.Chat.Share(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		image, err := base64.StdEncoding.DecodeString(code.ImageBase64)
		if err != nil {
			return fmt.Errorf("解码分享码图片失败: %v", err)
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("bazichat-share-%s.png", args[0])
		}
		if err := os.WriteFile(out, image, 0o644); err != nil {
			return fmt.Errorf("保存分享码图片失败: %v", err)
		}
		fmt.Println("分享码已保存到", out)
		return nil
	},
}

func printConversation(conv chat.Conversation) {
	title := conv.Title
	if title == "" {
		title = "（未命名）"
	}
	updated := conv.UpdatedAt
	if updated == "" {
		updated = conv.CreatedAt
	}
	fmt.Printf("%s  %s  %s\n", conv.ID, title, updated)
}
