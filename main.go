// stagekit runs sprite projects that use the More Motion and GUI Positioning
// extensions.
//
// Usage:
//
//	stagekit run [project.yaml]       - open the project in a window
//	stagekit simulate [project.yaml]  - step the project headless and print the result
//	stagekit blocks                   - list the extension blocks and menus
//
// Without a project argument the built-in demo project is used.
//
// Global flags:
//
//	--env <file>        - .env file with STAGEKIT_* settings (default: .env)
//	--log-level <level> - overrides STAGEKIT_LOG_LEVEL
//	--packaged          - behave like a packaged build (costume data dropped)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/milk9111/stagekit/config"
)

var (
	flagEnv      string
	flagLogLevel string
	flagPackaged bool

	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stagekit",
	Short: "Run sprite projects with anchored motion and GUI frames",
	Long: `stagekit loads a sprite project (a YAML document with costumes and
tengo scripts) and runs it with the More Motion and GUI Positioning
extensions available to every script.

Examples:
  stagekit run
  stagekit run ./games/menu/project.yaml
  stagekit simulate --ticks 120 ./games/menu/project.yaml
  stagekit blocks`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", ".env", "Path to a .env file with STAGEKIT_* settings")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagPackaged, "packaged", false, "Drop raw costume data like a packaged build")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(blocksCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagEnv)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		cfg.LogLevel = level
	}
	logger = cfg.NewLogger("stagekit")
	return nil
}

// projectArg picks the project file: the positional argument, then
// STAGEKIT_PROJECT, then the demo (empty).
func projectArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Project
}
