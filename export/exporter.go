// Package export writes recorded routing sessions to files.
package export

import (
	"fmt"
	"io"

	"cardlink/canvas"
	"cardlink/core"
	"cardlink/debug"
)

// Format represents an export format
type Format string

const (
	// FormatJSON writes the session exactly as it is persisted.
	FormatJSON Format = "json"
	// FormatASCII draws the session as box-drawing art followed by its steps.
	FormatASCII Format = "ascii"
	// FormatPNG rasterises the session.
	FormatPNG Format = "png"
)

// Exporter writes one session in a specific format.
type Exporter interface {
	Export(w io.Writer, s debug.Session) error
	// FileExtension returns the recommended file extension, including the dot.
	FileExtension() string
	// FormatName returns a human-readable name for this format.
	FormatName() string
}

// NewExporter creates an exporter for the specified format with default sizing.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatASCII:
		return NewASCIIExporter(), nil
	case FormatPNG:
		return NewPNGExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "ascii", "text", "txt":
		return FormatASCII, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// AvailableFormats lists every supported format.
func AvailableFormats() []Format {
	return []Format{FormatJSON, FormatASCII, FormatPNG}
}

// SessionScene converts a session into a drawable scene: its obstacles and
// final path. Source and target rectangles are not recorded, so the path
// endpoints stand in for them.
func SessionScene(s debug.Session) canvas.Scene {
	return canvas.Scene{
		Obstacles: s.Obstacles,
		Path:      core.Unflatten(s.FinalPath),
	}
}

// StepScene is SessionScene with the path replaced by one step's candidate.
func StepScene(s debug.Session, step debug.Step) canvas.Scene {
	scene := SessionScene(s)
	scene.Path = core.Unflatten(step.PathPoints)
	return scene
}
