package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"cardlink/canvas"
	"cardlink/connector"
	"cardlink/core"
	"cardlink/metrics"
	"cardlink/routing"
	"cardlink/validation"
)

// sceneFile is the input to the route command. It holds either a single
// source/target pair or a set of cards with links between them.
type sceneFile struct {
	SourceID    string      `json:"sourceId"`
	TargetID    string      `json:"targetId"`
	Source      *core.Rect  `json:"source"`
	Target      *core.Rect  `json:"target"`
	Obstacles   []core.Rect `json:"obstacles"`
	Style       core.Style  `json:"style"`
	RouteAround *bool       `json:"routeAround"`

	Cards []sceneCard `json:"cards"`
	Links []sceneLink `json:"links"`
}

type sceneCard struct {
	ID string `json:"id"`
	core.Rect
}

type sceneLink struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Target      string     `json:"target"`
	Style       core.Style `json:"style"`
	RouteAround *bool      `json:"routeAround"`
}

// routeOutput is one routed connector in JSON output.
type routeOutput struct {
	LinkID   string    `json:"linkId,omitempty"`
	Strategy string    `json:"strategy"`
	Points   []float64 `json:"points"`
	States   []string  `json:"states,omitempty"`
	Attempts int       `json:"attempts,omitempty"`
	Rejected int       `json:"rejected,omitempty"`
}

var errEmptyScene = errors.New("scene needs source and target, or cards and links")

func loadScene(path string) (sceneFile, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return sceneFile{}, fmt.Errorf("read scene: %w", err)
	}

	var scene sceneFile
	if err := json.Unmarshal(data, &scene); err != nil {
		return sceneFile{}, fmt.Errorf("parse scene %s: %w", path, err)
	}
	if (scene.Source == nil || scene.Target == nil) && len(scene.Links) == 0 {
		return sceneFile{}, fmt.Errorf("%s: %w", path, errEmptyScene)
	}
	return scene, nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func styleOr(s core.Style) core.Style {
	if s == "" {
		return core.StyleOrthogonal
	}
	return s
}

func routeCmd(a *app) *cobra.Command {
	var (
		format      string
		cols, rows  int
		validate    bool
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "route <scene.json>",
		Short: "Route the connectors described by a scene file",
		Long: `Route one connector (source, target, obstacles) or every link between a
set of cards. Pass - to read the scene from stdin. A debug session is recorded
per connector while recording is enabled.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{storeAnnotation: storeOptional},
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "ascii" {
				return fmt.Errorf("unsupported format %q (want json or ascii)", format)
			}
			scene, err := loadScene(args[0])
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			m, err := metrics.NewRouting(a.cfg.Metrics.Namespace, reg)
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}
			router := a.newRouter(m)

			outputs, pic := routeScene(router, scene, a)
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if len(scene.Links) == 0 {
					err = enc.Encode(outputs[0])
				} else {
					err = enc.Encode(outputs)
				}
				if err != nil {
					return err
				}
			} else {
				mat, err := pic.render(cols, rows, a.logger)
				if err != nil {
					return err
				}
				text := mat.String()
				fmt.Fprintln(cmd.OutOrStdout(), text)
				for _, o := range outputs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%d points)\n", linkPrefix(o.LinkID), o.Strategy, len(o.Points)/2)
				}
				if validate {
					reportValidation(a, text)
				}
			}

			if showMetrics {
				return writeMetrics(cmd.ErrOrStderr(), reg)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or ascii")
	cmd.Flags().IntVar(&cols, "cols", 80, "ascii drawing width")
	cmd.Flags().IntVar(&rows, "rows", 24, "ascii drawing height")
	cmd.Flags().BoolVar(&validate, "validate", false, "check the ascii drawing for broken lines")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "write routing metrics to stderr")
	return cmd
}

func linkPrefix(id string) string {
	if id == "" {
		return ""
	}
	return id + ": "
}

// drawing accumulates everything the ascii output shows.
type drawing struct {
	scene canvas.Scene
	paths [][]core.Point
}

func (d drawing) render(cols, rows int, logger *slog.Logger) (*canvas.Matrix, error) {
	m, err := canvas.NewMatrix(cols, rows)
	if err != nil {
		return nil, err
	}
	frame := d.scene
	for _, p := range d.paths {
		frame.Path = append(frame.Path, p...)
	}
	proj := canvas.NewProjection(frame.Bounds(10), cols, rows)
	canvas.DrawScene(m, proj, d.scene)
	for i, p := range d.paths {
		if len(p) < 2 {
			continue
		}
		if err := m.DrawPath(proj.Cells(p)); err != nil {
			logger.Debug("route drawing", "path", i, "error", err)
		}
	}
	return m, nil
}

func routeScene(router *routing.Router, scene sceneFile, a *app) ([]routeOutput, drawing) {
	if len(scene.Links) == 0 {
		result := router.Route(routing.Request{
			SourceID:    scene.SourceID,
			TargetID:    scene.TargetID,
			Source:      *scene.Source,
			Target:      *scene.Target,
			Obstacles:   scene.Obstacles,
			Style:       styleOr(scene.Style),
			RouteAround: boolOr(scene.RouteAround, true),
		})
		states := make([]string, len(result.States))
		for i, s := range result.States {
			states[i] = s.String()
		}
		out := routeOutput{
			Strategy: result.Strategy,
			Points:   result.Flat(),
			States:   states,
			Attempts: result.Attempts,
			Rejected: result.Rejected,
		}
		d := drawing{
			scene: canvas.Scene{
				Cards: []canvas.Card{
					{Rect: *scene.Source, Label: labelOr(scene.SourceID, "S")},
					{Rect: *scene.Target, Label: labelOr(scene.TargetID, "T")},
				},
				Obstacles: scene.Obstacles,
			},
			paths: [][]core.Point{result.Points},
		}
		return []routeOutput{out}, d
	}

	cards := connector.NewCardIndex()
	var d drawing
	for _, c := range scene.Cards {
		cards.Put(c.ID, c.Rect)
		d.scene.Cards = append(d.scene.Cards, canvas.Card{Rect: c.Rect, Label: c.ID})
	}

	adapter := connector.NewAdapter(router, a.logger)
	outputs := make([]routeOutput, 0, len(scene.Links))
	for i, l := range scene.Links {
		id := l.ID
		if id == "" {
			id = fmt.Sprintf("link-%d", i+1)
		}
		flat, strategy := adapter.Points(connector.Link{
			ID:          id,
			SourceID:    l.Source,
			TargetID:    l.Target,
			Style:       styleOr(l.Style),
			RouteAround: boolOr(l.RouteAround, true),
		}, cards)
		if flat == nil {
			flat = []float64{}
		}
		outputs = append(outputs, routeOutput{LinkID: id, Strategy: strategy, Points: flat})
		d.paths = append(d.paths, core.Unflatten(flat))
	}
	return outputs, d
}

func labelOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func reportValidation(a *app, text string) {
	errs := validation.NewLineValidator().Validate(text)
	for _, e := range errs {
		a.logger.Warn("drawing has a broken line", "at", e.String())
	}
	if !validation.Connected(text) {
		a.logger.Warn("drawn connector does not reach its arrow")
	}
	if len(errs) == 0 {
		a.logger.Info("drawing validated", "lines", strings.Count(text, "\n")+1)
	}
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
