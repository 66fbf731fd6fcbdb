package raster

import (
	"context"
	"fmt"
	"io"

	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
	"github.com/shvbsle/shev/internal/log"
)

// Dump is a headless backend. It plays a key script, paints every frame on
// a grid and writes the text of the grid to w, either after every frame or
// only once the script is over. After the last step it presses Escape so
// the engine quits.
type Dump struct {
	grid    *Grid
	sampler *input.Sampler
	steps   []Step
	w       io.Writer

	everyFrame bool
	frames     int
	quitting   bool
}

func NewDump(cols, rows int, steps []Step, w io.Writer, everyFrame bool) *Dump {
	return &Dump{
		grid:       NewGrid(cols, rows),
		sampler:    input.NewSampler(),
		steps:      steps,
		w:          w,
		everyFrame: everyFrame,
	}
}

func (d *Dump) Grid() *Grid { return d.grid }

func (d *Dump) Frames() int { return d.frames }

func (d *Dump) Size() (float64, float64) {
	return d.grid.DeviceSize()
}

func (d *Dump) Poll(ctx context.Context) (input.Input, error) {
	if err := ctx.Err(); err != nil {
		return input.Input{}, err
	}

	switch {
	case len(d.steps) > 0:
		d.sampler.Press(d.steps[0]...)
		d.steps = d.steps[1:]
	case !d.quitting:
		if !d.everyFrame {
			if err := d.write(); err != nil {
				return input.Input{}, err
			}
		}
		log.Backend("dump").Debug("script finished", "frames", d.frames)
		d.sampler.Press(input.KeyEscape)
		d.quitting = true
	}
	return d.sampler.Sample(), nil
}

func (d *Dump) Draw(graphics []graphic.Graphic) error {
	d.grid.Paint(graphics)
	d.frames++
	if d.everyFrame {
		return d.write()
	}
	return nil
}

func (d *Dump) write() error {
	if _, err := fmt.Fprintf(d.w, "--- frame %d ---\n%s\n", d.frames, d.grid.Text()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
