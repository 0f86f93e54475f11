package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"climb.dev/pkg/climb/internal/domain"
	m "climb.dev/pkg/climb/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View previously generated refinement reports",
		Long:  "View previously generated refinement reports from a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(outputFlagName))
			return workflow.View(cmd.Context(), domain.ViewArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
