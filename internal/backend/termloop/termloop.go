// Package termloop runs the engine inside a termloop game loop. Each
// termloop frame samples the events seen since the previous one, steps the
// engine and paints the result with half block cells.
package termloop

import (
	"context"
	"time"

	tl "github.com/JoelOtter/termloop"
	"github.com/nsf/termbox-go"

	"github.com/shvbsle/shev/internal/backend/raster"
	"github.com/shvbsle/shev/internal/engine"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
	"github.com/shvbsle/shev/internal/log"
)

const upperHalf = '▀'

var (
	ColorBackground = tl.ColorBlack
	ColorText       = tl.ColorWhite

	// palette maps raster.ANSI8 indices to termloop colours.
	palette = [...]tl.Attr{
		tl.ColorBlack,
		tl.ColorRed,
		tl.ColorGreen,
		tl.ColorYellow,
		tl.ColorBlue,
		tl.ColorMagenta,
		tl.ColorCyan,
		tl.ColorWhite,
	}
)

type Backend struct {
	game   *tl.Game
	engine *engine.Engine

	// interrupt wakes the termloop event poller.
	interrupt func()
	stopping  bool
}

func New(e *engine.Engine) *Backend {
	return &Backend{
		game:      tl.NewGame(),
		engine:    e,
		interrupt: termbox.Interrupt,
	}
}

// Run blocks until the user presses Ctrl+C or ctx is done. Quitting the
// engine shows an exit screen first, since termloop only stops on its end
// key.
func (b *Backend) Run(ctx context.Context) error {
	b.game.Screen().SetFps(fps(b.engine.FrameInterval()))
	b.game.SetEndKey(tl.KeyCtrlC)

	level := tl.NewBaseLevel(tl.Cell{
		Bg: ColorBackground,
		Fg: ColorText,
		Ch: ' ',
	})
	level.AddEntity(&FrameEntity{
		ctx:     ctx,
		backend: b,
		sampler: input.NewSampler(),
		grid:    raster.NewGrid(0, 0),
	})
	b.game.Screen().SetLevel(level)

	log.Backend("termloop").Info("starting termloop backend")
	b.game.Start()
	return ctx.Err()
}

// stop ends the game loop from inside it. An interrupt arrives as an event
// with a zero key, so making that the end key breaks the loop on the next
// poll.
func (b *Backend) stop() {
	if b.stopping {
		return
	}
	b.stopping = true
	log.Backend("termloop").Info("context done, stopping")
	b.game.SetEndKey(tl.Key(0))
	go b.interrupt()
}

func (b *Backend) showExitScreen() {
	exitLevel := tl.NewBaseLevel(tl.Cell{
		Bg: ColorBackground,
		Fg: ColorText,
		Ch: ' ',
	})
	exitLevel.AddEntity(&ExitScreenEntity{})
	b.game.Screen().SetLevel(exitLevel)
}

func fps(interval time.Duration) float64 {
	if interval <= 0 {
		interval = engine.DefaultFrameInterval
	}
	return float64(time.Second) / float64(interval)
}

// FrameEntity steps the engine once per termloop frame.
type FrameEntity struct {
	// ctx is the context of Run; termloop calls back without one.
	ctx     context.Context
	backend *Backend
	sampler *input.Sampler
	grid    *raster.Grid
}

func (f *FrameEntity) Tick(event tl.Event) {
	switch event.Type {
	case tl.EventKey:
		f.sampler.Press(translateKey(event)...)
	case tl.EventMouse:
		f.mouse(event)
	}
}

func (f *FrameEntity) mouse(event tl.Event) {
	p := graphic.Point{X: float64(event.MouseX) + 0.5, Y: float64(event.MouseY*2) + 1}
	switch event.Key {
	case tl.MouseLeft:
		f.sampler.MousePress(input.MouseLeft, p)
	case tl.MouseMiddle:
		f.sampler.MousePress(input.MouseMiddle, p)
	case tl.MouseRight:
		f.sampler.MousePress(input.MouseRight, p)
	case tl.MouseRelease:
		f.sampler.ReleaseAll(p)
	case tl.MouseWheelUp:
		f.sampler.MoveTo(p)
		f.sampler.Scroll(0, 1)
	case tl.MouseWheelDown:
		f.sampler.MoveTo(p)
		f.sampler.Scroll(0, -1)
	}
}

func (f *FrameEntity) Draw(screen *tl.Screen) {
	if f.ctx.Err() != nil {
		f.backend.stop()
		return
	}

	cols, rows := screen.Size()
	if c, r := f.grid.Size(); c != cols || r != rows {
		f.grid.Resize(cols, rows)
	}

	w, h := f.grid.DeviceSize()
	graphics, ok := f.backend.engine.Frame(f.ctx, f.sampler.Sample(), w, h)
	if !ok {
		log.Backend("termloop").Info("engine quit")
		f.backend.showExitScreen()
		return
	}

	f.grid.Paint(graphics)
	for row := range rows {
		for col := range cols {
			cell := f.grid.At(col, row)
			if cell.Wide {
				continue
			}
			screen.RenderCell(col, row, toCell(cell))
		}
	}
}

func toCell(c raster.Cell) *tl.Cell {
	switch {
	case c.Ch != 0:
		return &tl.Cell{Fg: attr(c.Fg), Bg: attr(c.Bg()), Ch: c.Ch}
	case attr(c.Top) == attr(c.Bottom):
		return &tl.Cell{Fg: attr(c.Top), Bg: attr(c.Top), Ch: ' '}
	default:
		return &tl.Cell{Fg: attr(c.Top), Bg: attr(c.Bottom), Ch: upperHalf}
	}
}

func attr(c graphic.Color) tl.Attr {
	return palette[raster.ANSI8.Nearest(c)]
}

type ExitScreenEntity struct{}

func (e *ExitScreenEntity) Draw(screen *tl.Screen) {
	screenWidth, screenHeight := screen.Size()

	exitMsg := "Press Ctrl+C to exit"
	exitX := screenWidth/2 - len(exitMsg)/2

	for i, ch := range exitMsg {
		screen.RenderCell(exitX+i, screenHeight/2, &tl.Cell{
			Fg: ColorText,
			Bg: ColorBackground,
			Ch: ch,
		})
	}
}

func (e *ExitScreenEntity) Tick(event tl.Event) {
}
