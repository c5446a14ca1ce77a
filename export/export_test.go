package export_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardlink/core"
	"cardlink/debug"
	"cardlink/export"
)

func sampleSession() debug.Session {
	return debug.Session{
		ID:         "00000000-0000-0000-0000-000000000001",
		SourceID:   "a",
		TargetID:   "b",
		Timestamp:  1700000000000,
		StartPoint: core.Point{X: 200, Y: 60},
		EndPoint:   core.Point{X: 400, Y: 60},
		Obstacles:  []core.Rect{{X: 250, Y: 0, Width: 100, Height: 120}},
		Steps: []debug.Step{
			{Step: 1, Description: "straight", Decision: debug.DecisionRejected,
				PathPoints: []float64{200, 60, 400, 60}, Rejected: true, Reason: "crosses obstacle 0"},
			{Step: 2, Description: "single-bend", Decision: debug.DecisionInapplicable, Rejected: true},
			{Step: 3, Description: "double-bend U above y=-20", Decision: debug.DecisionAccepted,
				PathPoints: []float64{200, 60, 220, 60, 220, -20, 380, -20, 380, 60, 400, 60}},
		},
		FinalPath:     []float64{200, 60, 220, 60, 220, -20, 380, -20, 380, 60, 400, 60},
		FinalStrategy: "double-bend",
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected export.Format
		wantErr  bool
	}{
		{"json", export.FormatJSON, false},
		{"ascii", export.FormatASCII, false},
		{"text", export.FormatASCII, false},
		{"txt", export.FormatASCII, false},
		{"png", export.FormatPNG, false},
		{"mermaid", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := export.ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range export.AvailableFormats() {
		t.Run(string(format), func(t *testing.T) {
			exporter, err := export.NewExporter(format)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(exporter.FileExtension(), "."))
			assert.NotEmpty(t, exporter.FormatName())
		})
	}

	_, err := export.NewExporter("svg")
	assert.Error(t, err)
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	session := sampleSession()
	require.NoError(t, export.NewJSONExporter().Export(&buf, session))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"sourceId", "targetId", "timestamp", "startPoint", "endPoint", "obstacles", "steps", "finalPath", "finalStrategy"} {
		assert.Contains(t, raw, key)
	}

	var back debug.Session
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, session, back)
}

func TestJSONExporter_ExportAll(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewJSONExporter().ExportAll(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestASCIIExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewASCIIExporter().Export(&buf, sampleSession()))
	out := buf.String()

	assert.Contains(t, out, "a -> b  strategy=double-bend  2023-11-14T22:13:20Z")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "▶")
	assert.Contains(t, out, "#")
	assert.Contains(t, out, "-  1 rejected     straight (crosses obstacle 0)")
	assert.Contains(t, out, "+  3 accepted     double-bend U above y=-20")
}

func TestASCIIExporter_EmptySession(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewASCIIExporter().Export(&buf, debug.Session{}))
	assert.Equal(t, "- -> -  strategy=-  1970-01-01T00:00:00Z\n", buf.String())
}

func TestPNGExporter(t *testing.T) {
	var buf bytes.Buffer
	exporter := export.NewPNGExporter()
	require.NoError(t, exporter.Export(&buf, sampleSession()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	rgba, err := exporter.Image(sampleSession())
	require.NoError(t, err)
	var painted int
	for y := 0; y < 600; y += 4 {
		for x := 0; x < 800; x += 4 {
			if r, g, b, _ := rgba.At(x, y).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
				painted++
			}
		}
	}
	assert.Greater(t, painted, 100, "drawing should cover part of the canvas")
}

func TestPNGExporter_InvalidSize(t *testing.T) {
	exporter := &export.PNGExporter{}
	var buf bytes.Buffer
	assert.Error(t, exporter.Export(&buf, sampleSession()))
}

func TestStepScene(t *testing.T) {
	s := sampleSession()
	scene := export.StepScene(s, s.Steps[0])
	assert.Len(t, scene.Path, 2)
	assert.Len(t, scene.Obstacles, 1)
}
