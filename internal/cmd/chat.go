package cmd

import (
	"fmt"
	"strings"

	"github.com/purpose168/bazichat/internal/chat"
	"github.com/spf13/cobra"
)

func init() {
	chatCmd.Flags().StringP("conversation", "c", "", "目标会话ID（留空时新建会话）")
	chatCmd.Flags().String("profile", "", "新建会话时关联的八字档案ID")
}

var chatCmd = &cobra.Command{
	Use:   "chat <消息内容>",
	Short: "发送消息并等待 AI 回复",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		conversationID, _ := cmd.Flags().GetString("conversation")
		if conversationID != "" {
			if _, _, err := application.Chat.Select(cmd.Context(), conversationID); err != nil {
				return err
			}
		} else {
			profileID, _ := cmd.Flags().GetString("profile")
			conv, err := application.Chat.Create(cmd.Context(), chat.CreateParams{
				BaziProfileID: profileID,
			})
			if err != nil {
				return err
			}
			fmt.Println("已创建会话", conv.ID)
		}

		reply, err := application.Chat.Send(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Println(reply.Content)
		if user, ok := application.Sessions.User(); ok {
			fmt.Printf("（本次消耗 %d，剩余余额 %d）\n", reply.TokenCost, user.TokenBalance)
		}
		return nil
	},
}
