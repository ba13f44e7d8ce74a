package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
)

var flagNoWatch bool

var runCmd = &cobra.Command{
	Use:   "run [project.yaml]",
	Short: "Open a project in a window",
	Long: `Run a project in a window. Sprites are drawn with their costume and
bounds (orange when anchored), GUI frames as blue boxes.

Controls:
  P/Esc  - Pause (Resume, Step, Reload)
  R      - Reload the project
  Ctrl+C - Copy the current state as YAML

Project files are watched and reloaded on change unless --no-watch is set.

Examples:
  stagekit run
  stagekit run ./games/menu/project.yaml --no-watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "Do not reload when project files change")
}

func runRun(cmd *cobra.Command, args []string) error {
	game, err := NewGame(projectArg(args), cfg.StageScale, !flagNoWatch, logger)
	if err != nil {
		return err
	}
	defer game.Close()

	w, h := game.screenSize()
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(w), int(h))
	ebiten.SetWindowTitle("stagekit")
	ebiten.SetTPS(cfg.TickRate)

	return ebiten.RunGame(game)
}
