package cmd

import (
	"fmt"

	"github.com/shouni/go-gallery-kit/pkg/domain"

	"github.com/spf13/cobra"
)

// themeCmd は、サンプルテーマを1つ表示するのだ。
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "サンプルテーマをランダムに1つ表示しますなのだ。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), domain.NewThemePicker(domain.SampleThemes).Pick())
		return nil
	},
}
