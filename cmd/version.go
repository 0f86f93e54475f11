package cmd

import (
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"climb.dev/pkg/climb/internal/sut"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version, the Go version and the bundled programs.",
		Run: func(cmd *cobra.Command, _ []string) {
			version, goVersion := "unknown", "unknown"

			if info, ok := debug.ReadBuildInfo(); ok {
				goVersion = info.GoVersion
				if info.Main.Version != "" {
					version = info.Main.Version
				}
			}

			cmd.Println("climb version\t", version)
			cmd.Println("go version\t", goVersion)
			cmd.Println("programs\t", strings.Join(sut.Names(), ", "))
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
