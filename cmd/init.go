package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"climb.dev/pkg/climb/internal/adapter"
	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/sut"
)

const (
	initProgramFlagName = "program"
	scenariosDir        = "scenarios"
)

var initProgramFlag string

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default climb.yaml configuration file",
		Long: `Create a climb.yaml in the current working directory populated with the
current CLI defaults so it can be edited manually.

With --program, also write a starter scenario for that bundled program
to scenarios/<program>.yaml. Bundled programs: ` + strings.Join(sut.Names(), ", ") + `.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Println("wrote", targetPath)

			if initProgramFlag == "" {
				return nil
			}

			return writeStarterScenario(cmd, initProgramFlag)
		},
	}

	cmd.Flags().StringVar(&initProgramFlag, initProgramFlagName, "", "bundled program to write a starter scenario for")

	return cmd
}

func writeStarterScenario(cmd *cobra.Command, name string) error {
	program, ok := sut.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", adapter.ErrUnknownProgram, name)
	}

	scenario, err := adapter.StarterScenario(program, 1)
	if err != nil {
		return fmt.Errorf("failed to build starter scenario: %w", err)
	}

	if err := os.MkdirAll(scenariosDir, 0o755); err != nil {
		return fmt.Errorf("failed to create scenarios directory: %w", err)
	}

	path := filepath.Join(scenariosDir, name+".yaml")
	if err := scenarioStore.SaveScenario(m.Path(path), scenario); err != nil {
		return err
	}

	cmd.Println("wrote", path)

	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
