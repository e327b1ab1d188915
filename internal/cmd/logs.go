package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/purpose168/bazichat/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	logsCmd.Flags().IntP("tail", "t", 50, "显示最后 N 行")
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "查看日志文件",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("base-url")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		debug, _ := cmd.Flags().GetBool("debug")

		cfg, err := config.Load(baseURL, dataDir, debug)
		if err != nil {
			return fmt.Errorf("加载配置失败: %v", err)
		}

		data, err := os.ReadFile(cfg.LogFile())
		if os.IsNotExist(err) {
			fmt.Println("日志文件不存在:", cfg.LogFile())
			return nil
		}
		if err != nil {
			return fmt.Errorf("读取日志失败: %v", err)
		}

		n, _ := cmd.Flags().GetInt("tail")
		lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
		if n > 0 && len(lines) > n {
			lines = lines[len(lines)-n:]
		}
		for _, line := range lines {
			fmt.Println(string(line))
		}
		return nil
	},
}
