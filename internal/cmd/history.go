package cmd

import (
	"errors"
	"fmt"

	"github.com/purpose168/bazichat/internal/api"
	"github.com/purpose168/bazichat/internal/chat"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <会话ID>",
	Short: "查看会话的消息历史",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		conv, messages, err := application.Chat.Select(cmd.Context(), args[0])
		if errors.Is(err, api.ErrNetwork) {
			// 离线时退回本地缓存
			messages, err = application.Chat.CachedMessages(cmd.Context(), args[0])
			if err == nil {
				fmt.Println("（网络不可用，以下为本地缓存）")
			}
		} else if err == nil {
			printConversation(conv)
		}
		if err != nil {
			return err
		}

		for _, message := range messages {
			printMessage(message)
		}
		return nil
	},
}

func printMessage(message chat.Message) {
	role := "用户"
	if message.Role == chat.RoleAssistant {
		role = "AI"
	}
	if message.TokenCost > 0 {
		fmt.Printf("[%s] %s（消耗 %d）\n", role, message.Content, message.TokenCost)
		return
	}
	fmt.Printf("[%s] %s\n", role, message.Content)
}
