package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <微信登录码>",
	Short: "通过微信登录码建立会话",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		user, isNew, err := application.Sessions.WxLogin(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if isNew {
			fmt.Printf("欢迎新用户 %s！当前余额 %d\n", user.Nickname, user.TokenBalance)
		} else {
			fmt.Printf("欢迎回来 %s！当前余额 %d\n", user.Nickname, user.TokenBalance)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "退出登录并清除本地会话状态",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		application.Sessions.Logout()
		fmt.Println("已退出登录")
		return nil
	},
}
