// Package viewer is a terminal browser for recorded routing sessions.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"cardlink/canvas"
	"cardlink/debug"
	"cardlink/export"
)

// DefaultPollInterval is how often the history is reloaded.
const DefaultPollInterval = time.Second

// stepPanelWidth is the width of the step list on the right.
const stepPanelWidth = 44

var (
	styleDefault  = tcell.StyleDefault
	styleHeader   = tcell.StyleDefault.Reverse(true)
	styleAccepted = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRejected = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMuted    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSelected = tcell.StyleDefault.Reverse(true)
)

type pollTick struct{}

// Options configures a Viewer.
type Options struct {
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Viewer draws the selected session and its steps onto a tcell screen.
type Viewer struct {
	screen tcell.Screen
	model  *Model
	poll   time.Duration
	logger *slog.Logger
}

// New creates a viewer. The screen must already be initialised; the caller
// owns Fini.
func New(screen tcell.Screen, src Source, opts Options) *Viewer {
	v := &Viewer{
		screen: screen,
		model:  NewModel(src),
		poll:   opts.PollInterval,
		logger: opts.Logger,
	}
	if v.poll <= 0 {
		v.poll = DefaultPollInterval
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Model exposes the viewer state.
func (v *Viewer) Model() *Model {
	return v.model
}

// Run handles input until the user quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go v.tick(ctx)
	v.Draw()

	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			action := KeyAction(ev)
			v.logger.Debug("viewer key", "key", ev.Name(), "action", action)
			if v.model.Dispatch(action) {
				return nil
			}
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			v.model.Refresh()
		}
		v.Draw()
	}
}

// tick posts a refresh every poll interval and a final wake-up on cancel.
func (v *Viewer) tick(ctx context.Context) {
	ticker := time.NewTicker(v.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = v.screen.PostEvent(tcell.NewEventInterrupt(pollTick{}))
			return
		case <-ticker.C:
			_ = v.screen.PostEvent(tcell.NewEventInterrupt(pollTick{}))
		}
	}
}

// Draw repaints the whole screen.
func (v *Viewer) Draw() {
	s := v.screen
	s.Clear()
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	session, ok := v.model.Selected()
	v.drawHeader(w, session, ok)
	drawText(s, 0, h-1, w, HelpLine, styleMuted)

	if !ok {
		drawText(s, 2, 2, w-2, "no recorded sessions", styleMuted)
		s.Show()
		return
	}

	canvasW := w - stepPanelWidth - 1
	if canvasW < 10 {
		canvasW = w
	}
	v.drawScene(0, 1, canvasW, h-2, session)
	if canvasW < w {
		v.drawSteps(canvasW+1, 1, w-canvasW-1, h-2, session)
	}
	s.Show()
}

func (v *Viewer) drawHeader(w int, session debug.Session, ok bool) {
	rec := "paused"
	if v.model.Recording() {
		rec = "REC"
	}
	title := fmt.Sprintf(" cardlink routing debug  [%s]", rec)
	if ok {
		index, total := v.model.Position()
		title += fmt.Sprintf("  session %d/%d  %s -> %s  %s",
			index+1, total, session.SourceID, session.TargetID, session.FinalStrategy)
	}
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, 0, ' ', nil, styleHeader)
	}
	drawText(v.screen, 0, 0, w, title, styleHeader)
}

func (v *Viewer) drawScene(x, y, w, h int, session debug.Session) {
	if w <= 0 || h <= 0 {
		return
	}
	scene := export.SessionScene(session)
	if step := v.model.Step(); step >= 0 && step < len(session.Steps) {
		scene = export.StepScene(session, session.Steps[step])
	}

	m, err := canvas.NewMatrix(w, h)
	if err != nil {
		v.logger.Debug("viewer canvas", "error", err)
		return
	}
	// Bounds come from the whole session so stepping keeps a stable frame.
	frame := export.SessionScene(session)
	frame.Path = append(frame.Path, scene.Path...)
	canvas.DrawScene(m, canvas.NewProjection(frame.Bounds(10), w, h), scene)

	for row, line := range m.Lines() {
		drawText(v.screen, x, y+row, w, line, styleDefault)
	}
}

func (v *Viewer) drawSteps(x, y, w, h int, session debug.Session) {
	for row := 0; row < h; row++ {
		v.screen.SetContent(x-1, y+row, '│', nil, styleMuted)
	}

	selected := v.model.Step()
	label := "final path"
	if selected >= 0 {
		label = fmt.Sprintf("step %d", selected+1)
	}
	drawText(v.screen, x, y, w, fmt.Sprintf("steps (%s)", label), styleMuted)

	for i, st := range session.Steps {
		row := y + 1 + i
		if row >= y+h {
			break
		}
		style := styleAccepted
		mark := "+"
		if st.Rejected {
			style, mark = styleRejected, "-"
		}
		if i == selected {
			style = styleSelected
		}
		drawText(v.screen, x, row, w, fmt.Sprintf("%s %2d %s", mark, st.Step, st.Description), style)
	}
}

// drawText writes text at (x, y), clipped to maxW cells.
func drawText(s tcell.Screen, x, y, maxW int, text string, style tcell.Style) {
	end := x + maxW
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > end {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x += rw
	}
}
