// Package tea runs the engine as a bubbletea program. A tick at the frame
// interval steps the engine with the key and mouse messages seen since the
// previous tick; the frame is painted on a raster grid and rendered as
// lipgloss styled runs.
package tea

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shvbsle/shev/internal/backend/raster"
	"github.com/shvbsle/shev/internal/engine"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/input"
	"github.com/shvbsle/shev/internal/log"
)

const upperHalf = "▀"

// Model adapts an engine to the tea.Model interface.
type Model struct {
	ctx     context.Context
	engine  *engine.Engine
	keys    *keyMap
	sampler *input.Sampler
	grid    *raster.Grid
	frame   string

	// copy writes to the system clipboard.
	copy func(string) error

	width  int
	height int
	ready  bool
}

type frameMsg time.Time

type copiedMsg struct {
	success bool
	message string
}

// New creates a model driving e. ctx is passed to every engine frame.
func New(ctx context.Context, e *engine.Engine) Model {
	return Model{
		ctx:     ctx,
		engine:  e,
		keys:    newKeyMap(),
		sampler: input.NewSampler(),
		grid:    raster.NewGrid(0, 0),
		copy:    clipboard.WriteAll,
	}
}

// Run starts a full screen program with mouse support and blocks until the
// engine quits.
func Run(ctx context.Context, e *engine.Engine) error {
	p := tea.NewProgram(
		New(ctx, e),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run bubbletea program: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.engine.FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.grid.Resize(msg.Width, msg.Height)
		return m, tea.ClearScreen

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Copy):
			return m, m.copyTitle()
		}
		m.sampler.Press(m.keys.translate(msg)...)
		return m, nil

	case tea.MouseMsg:
		m.mouse(msg)
		return m, nil

	case copiedMsg:
		m.engine.State().ShowPopup("%s", msg.message)
		return m, nil

	case frameMsg:
		if !m.ready {
			return m, m.tick()
		}
		w, h := m.grid.DeviceSize()
		graphics, ok := m.engine.Frame(m.ctx, m.sampler.Sample(), w, h)
		if !ok {
			log.Backend("tea").Info("engine quit")
			return m, tea.Quit
		}
		m.grid.Paint(graphics)
		m.frame = Render(m.grid)
		return m, m.tick()
	}

	return m, nil
}

func (m Model) mouse(msg tea.MouseMsg) {
	p := graphic.Point{X: float64(msg.X) + 0.5, Y: float64(msg.Y*2) + 1}

	var button input.MouseButton
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.sampler.MoveTo(p)
		m.sampler.Scroll(0, 1)
		return
	case tea.MouseButtonWheelDown:
		m.sampler.MoveTo(p)
		m.sampler.Scroll(0, -1)
		return
	case tea.MouseButtonLeft:
		button = input.MouseLeft
	case tea.MouseButtonMiddle:
		button = input.MouseMiddle
	case tea.MouseButtonRight:
		button = input.MouseRight
	}

	switch msg.Action {
	case tea.MouseActionPress:
		m.sampler.MousePress(button, p)
	case tea.MouseActionRelease:
		m.sampler.ReleaseAll(p)
	default:
		m.sampler.MoveTo(p)
	}
}

func (m Model) copyTitle() tea.Cmd {
	en, ok := m.engine.CurrentEntry()
	if !ok {
		return func() tea.Msg {
			return copiedMsg{success: false, message: "There's no entry to copy."}
		}
	}
	title := en.Title()

	return func() tea.Msg {
		if err := m.copy(title); err != nil {
			slog.Error("failed to copy title to clipboard", "error", err)
			return copiedMsg{
				success: false,
				message: fmt.Sprintf("Failed to copy to clipboard: %v", err),
			}
		}
		slog.Info("copied title to clipboard", "title", title)
		return copiedMsg{
			success: true,
			message: fmt.Sprintf("Copied %q to clipboard.", title),
		}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.frame
}

// Render writes the grid as lines of styled runs. Neighbouring cells that
// share a style are rendered together.
func Render(g *raster.Grid) string {
	cols, rows := g.Size()
	lines := make([]string, rows)
	for row := range rows {
		var (
			line    strings.Builder
			run     strings.Builder
			style   lipgloss.Style
			current string
		)
		flush := func() {
			if run.Len() > 0 {
				line.WriteString(style.Render(run.String()))
				run.Reset()
			}
		}

		for col := range cols {
			cell := g.At(col, row)
			if cell.Wide {
				continue
			}
			text, fg, bg := cellParts(cell)
			if k := fg + bg; k != current {
				flush()
				current = k
				style = lipgloss.NewStyle().
					Foreground(lipgloss.Color(fg)).
					Background(lipgloss.Color(bg))
			}
			run.WriteString(text)
		}
		flush()
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}

func cellParts(c raster.Cell) (text, fg, bg string) {
	switch {
	case c.Ch != 0:
		return string(c.Ch), c.Fg.Hex(), c.Bg().Hex()
	case c.Top.Hex() == c.Bottom.Hex():
		return " ", c.Top.Hex(), c.Top.Hex()
	default:
		return upperHalf, c.Top.Hex(), c.Bottom.Hex()
	}
}
