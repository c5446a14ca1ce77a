package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"cardlink/canvas"
	"cardlink/debug"
)

// ASCIIExporter exports sessions as Unicode box-drawing art.
type ASCIIExporter struct {
	Cols int
	Rows int
}

// NewASCIIExporter creates an exporter with an 80x24 drawing area.
func NewASCIIExporter() *ASCIIExporter {
	return &ASCIIExporter{Cols: 80, Rows: 24}
}

// Export draws the final path and lists every step beneath it.
func (e *ASCIIExporter) Export(w io.Writer, s debug.Session) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s  strategy=%s  %s\n",
		orDash(s.SourceID), orDash(s.TargetID), orDash(s.FinalStrategy),
		time.UnixMilli(s.Timestamp).UTC().Format(time.RFC3339))

	scene := SessionScene(s)
	if len(scene.Path) >= 2 || len(scene.Obstacles) > 0 {
		m, err := canvas.Render(scene, e.Cols, e.Rows)
		if err != nil {
			return fmt.Errorf("render session: %w", err)
		}
		b.WriteString(m.String())
		b.WriteByte('\n')
	}

	b.WriteString(FormatSteps(s.Steps))
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatSteps renders a step list, one line per step.
func FormatSteps(steps []debug.Step) string {
	var b strings.Builder
	for _, st := range steps {
		mark := "+"
		if st.Rejected {
			mark = "-"
		}
		fmt.Fprintf(&b, "%s %2d %-12s %s", mark, st.Step, st.Decision, st.Description)
		if st.Reason != "" {
			fmt.Fprintf(&b, " (%s)", st.Reason)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FileExtension returns the recommended file extension
func (e *ASCIIExporter) FileExtension() string {
	return ".txt"
}

// FormatName returns the format name
func (e *ASCIIExporter) FormatName() string {
	return "ASCII/Unicode Art"
}
