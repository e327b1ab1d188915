package cmd

import (
	"fmt"

	"github.com/purpose168/bazichat/internal/bazi"
	"github.com/spf13/cobra"
)

func init() {
	calcProfileCmd.Flags().String("name", "", "姓名")
	calcProfileCmd.Flags().String("gender", "", "性别")
	calcProfileCmd.Flags().String("calendar", "solar", "历法（solar/lunar）")
	calcProfileCmd.Flags().Int("year", 0, "出生年")
	calcProfileCmd.Flags().Int("month", 0, "出生月")
	calcProfileCmd.Flags().Int("day", 0, "出生日")
	calcProfileCmd.Flags().Int("hour", 0, "出生时")
	calcProfileCmd.Flags().Int("minute", 0, "出生分")
	calcProfileCmd.Flags().String("birth-city", "", "出生城市")
	calcProfileCmd.Flags().String("current-city", "", "现居城市")

	profilesCmd.AddCommand(listProfilesCmd, showProfileCmd, calcProfileCmd, deleteProfileCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "管理八字档案",
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "列出八字档案",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		profiles, err := application.Bazi.Load(cmd.Context())
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("暂无档案")
			return nil
		}
		for _, profile := range profiles {
			fmt.Printf("%s  %s  %s\n", profile.ID, profile.Name, profile.BaziResult.Bazi)
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show <档案ID>",
	Short: "查看档案详情及排盘结果",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		profile, err := application.Bazi.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("姓名: %s（%s）\n", profile.Name, profile.Gender)
		fmt.Println(profile.BaziResult.FormattedOutput)
		return nil
	},
}

var calcProfileCmd = &cobra.Command{
	Use:   "calc",
	Short: "提交排盘计算并保存为新档案",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		params := bazi.CalculateParams{}
		params.Name, _ = cmd.Flags().GetString("name")
		params.Gender, _ = cmd.Flags().GetString("gender")
		params.Calendar, _ = cmd.Flags().GetString("calendar")
		params.Year, _ = cmd.Flags().GetInt("year")
		params.Month, _ = cmd.Flags().GetInt("month")
		params.Day, _ = cmd.Flags().GetInt("day")
		params.Hour, _ = cmd.Flags().GetInt("hour")
		params.Minute, _ = cmd.Flags().GetInt("minute")
		params.BirthCity, _ = cmd.Flags().GetString("birth-city")
		params.CurrentCity, _ = cmd.Flags().GetString("current-city")

		profile, err := application.Bazi.Calculate(cmd.Context(), params)
		if err != nil {
			return err
		}

		fmt.Println("档案已创建:", profile.ID)
		fmt.Println(profile.BaziResult.FormattedOutput)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:     "rm <档案ID>",
	Aliases: []string{"delete"},
	Short:   "删除八字档案",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := setup(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown(cmd.Context())

		if err := application.Bazi.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("已删除档案", args[0])
		return nil
	},
}
