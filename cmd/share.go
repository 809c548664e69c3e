package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/FlorianRuen/devhub/playground"
	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Encode or decode playground share links",
}

var shareEncodeCmd = &cobra.Command{
	Use:   "encode <dir>",
	Short: "Print the share link of the project files found in dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCodeDir(args[0])
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), playground.ShareURL(cfg.API.BaseURL, code))
		return nil
	},
}

var shareDecodeCmd = &cobra.Command{
	Use:   "decode <link or fragment>",
	Short: "Print the code held by a share link as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := playground.DecodeFragment(args[0])
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)

		return encoder.Encode(code)
	},
}

func init() {
	shareCmd.AddCommand(shareEncodeCmd, shareDecodeCmd)
	rootCmd.AddCommand(shareCmd)
}
