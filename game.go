package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"math"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/stagekit/ecs/component"
	"github.com/milk9111/stagekit/motion"
	"github.com/milk9111/stagekit/project"
	"github.com/milk9111/stagekit/vm"
)

// bannerTicks is how long an advisory stays on screen.
const bannerTicks = 180

type Game struct {
	frames int

	session *session
	scale   float64
	logger  *log.Logger

	paused  bool
	pauseUI *ebitenui.UI

	watcher   *project.Watcher
	images    map[*byte]*ebiten.Image
	clipboard bool

	banner      string
	bannerUntil int
}

// NewGame loads filename (the demo when empty) and, when watch is set,
// reloads it whenever a project file next to it changes.
func NewGame(filename string, scale float64, watch bool, logger *log.Logger) (*Game, error) {
	g := &Game{
		scale:  scale,
		logger: logger,
		images: map[*byte]*ebiten.Image{},
	}
	s, err := newSession(logger, flagPackaged, g.showAlert)
	if err != nil {
		return nil, err
	}
	g.session = s
	if err := s.load(filename); err != nil {
		return nil, err
	}

	if watch && filename != "" {
		w, err := project.WatchProject(filename)
		if err != nil {
			logger.Warn("hot reload disabled", "err", err)
		} else {
			g.watcher = w
		}
	}
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", "err", err)
	} else {
		g.clipboard = true
	}
	g.pauseUI = NewPauseUI(g)
	return g, nil
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

func (g *Game) showAlert(msg string) {
	g.banner = msg
	g.bannerUntil = g.frames + bannerTicks
}

func (g *Game) reload() {
	if err := g.session.reload(); err != nil {
		g.logger.Error("reload failed", "err", err)
		g.showAlert("reload failed: " + err.Error())
		return
	}
	g.images = map[*byte]*ebiten.Image{}
}

// copyState puts the simulate snapshot of the running project on the
// clipboard as YAML.
func (g *Game) copyState() {
	if !g.clipboard {
		g.showAlert("clipboard unavailable")
		return
	}
	data, err := yaml.Marshal(g.session.snapshot())
	if err != nil {
		g.logger.Error("snapshot failed", "err", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.showAlert("state copied to clipboard")
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	changed := false
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Debug("project file changed", "file", name)
			changed = true
			continue
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("watch error", "err", err)
			continue
		default:
		}
		break
	}
	if changed {
		g.reload()
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyState()
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload()
	}

	g.session.rt.Step()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.White)

	g.drawFrames(screen)
	for _, t := range g.session.rt.Targets() {
		if t.IsStage() || !t.Visible() {
			continue
		}
		g.drawTarget(screen, t)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frame: %d    FPS: %.2f    Targets: %d",
		g.session.rt.Frame(), ebiten.ActualFPS(), len(g.session.rt.Targets())-1))
	if g.banner != "" && g.frames < g.bannerUntil {
		w, _ := g.screenSize()
		vector.FillRect(screen, 0, 20, float32(w), 18, color.RGBA{R: 0xd3, G: 0x4b, B: 0x2d, A: 220}, false)
		ebitenutil.DebugPrintAt(screen, g.banner, 6, 22)
	}

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

// toScreen maps stage coordinates (origin at the centre, y up) to pixels.
func (g *Game) toScreen(x, y float64) (float64, float64) {
	w, h := g.session.rt.StageSize()
	return (x + w/2) * g.scale, (h/2 - y) * g.scale
}

func (g *Game) drawFrames(screen *ebiten.Image) {
	frames := g.session.gui.Frames()
	for _, name := range frames.Names() {
		f, ok := frames.Get(name)
		if !ok {
			continue
		}
		left, top := g.toScreen(f.X, f.Y+f.Height)
		wdt, hgt := f.Width*g.scale, f.Height*g.scale
		vector.FillRect(screen, float32(left), float32(top), float32(wdt), float32(hgt), color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 32}, false)
		vector.StrokeRect(screen, float32(left), float32(top), float32(wdt), float32(hgt), 1, colornames.Steelblue, false)
		ebitenutil.DebugPrintAt(screen, name, int(left)+2, int(top)+2)
	}
}

func (g *Game) drawTarget(screen *ebiten.Image, t *vm.Target) {
	costume, ok := t.Costume()
	if !ok {
		return
	}

	if img := g.costumeImage(costume); img != nil {
		dir, scale := t.RenderedDirectionAndScale()
		sx, sy := g.toScreen(t.X(), t.Y())
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Translate(-costume.RotationCenterX, -costume.RotationCenterY)
		opts.GeoM.Scale(scale[0]/100*g.scale, scale[1]/100*g.scale)
		opts.GeoM.Rotate((dir - 90) * math.Pi / 180)
		opts.GeoM.Translate(sx, sy)
		opts.Filter = ebiten.FilterLinear
		screen.DrawImage(img, opts)
	}

	bb, ok := t.Bounds()
	if !ok {
		return
	}
	clr := colornames.Lightgrey
	if c, ok := g.session.motion.Store().Get(t.ID()); ok && c.Position != motion.None {
		clr = colornames.Orange
	}
	left, top := g.toScreen(bb.L, bb.T)
	vector.StrokeRect(screen, float32(left), float32(top), float32((bb.R-bb.L)*g.scale), float32((bb.T-bb.B)*g.scale), 1, clr, false)
}

// costumeImage decodes a bitmap costume once. Vector costumes and packaged
// runtimes without costume data draw as their bounds only.
func (g *Game) costumeImage(c component.Costume) *ebiten.Image {
	if len(c.Data) == 0 {
		return nil
	}
	key := &c.Data[0]
	if img, ok := g.images[key]; ok {
		return img
	}
	var out *ebiten.Image
	if src, _, err := image.Decode(bytes.NewReader(c.Data)); err == nil {
		out = ebiten.NewImageFromImage(src)
	}
	g.images[key] = out
	return out
}

func (g *Game) screenSize() (float64, float64) {
	w, h := g.session.rt.StageSize()
	return w * g.scale, h * g.scale
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return g.screenSize()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
