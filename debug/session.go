// Package debug records routing decisions so they can be inspected after the fact.
//
// A Recorder is opt-in: while disabled every recording call returns
// immediately. While enabled, each routing invocation opens a Session,
// appends one Step per strategy attempt and seals the session into a
// bounded, persisted history.
package debug

import "cardlink/core"

// Decision labels used by the router.
const (
	DecisionAccepted     = "accepted"
	DecisionRejected     = "rejected"
	DecisionInapplicable = "inapplicable"
)

// Step is one entry in a decision trace.
type Step struct {
	Step        int       `json:"step"`
	Description string    `json:"description"`
	Decision    string    `json:"decision"`
	PathPoints  []float64 `json:"pathPoints,omitempty"`
	Rejected    bool      `json:"rejected"`
	Reason      string    `json:"reason,omitempty"`
}

// Session is the complete record of one routing invocation.
type Session struct {
	ID            string      `json:"id,omitempty"`
	SourceID      string      `json:"sourceId"`
	TargetID      string      `json:"targetId"`
	Timestamp     int64       `json:"timestamp"`
	StartPoint    core.Point  `json:"startPoint"`
	EndPoint      core.Point  `json:"endPoint"`
	Obstacles     []core.Rect `json:"obstacles"`
	Steps         []Step      `json:"steps"`
	FinalPath     []float64   `json:"finalPath"`
	FinalStrategy string      `json:"finalStrategy"`
}

// AcceptedSteps returns the steps that were not rejected, in order.
func (s Session) AcceptedSteps() []Step {
	var accepted []Step
	for _, step := range s.Steps {
		if !step.Rejected {
			accepted = append(accepted, step)
		}
	}
	return accepted
}

// RejectedCount returns how many attempts were rejected.
func (s Session) RejectedCount() int {
	n := 0
	for _, step := range s.Steps {
		if step.Rejected {
			n++
		}
	}
	return n
}

// clone returns a deep copy so sealed sessions never share slices with callers.
func (s Session) clone() Session {
	c := s
	c.Obstacles = make([]core.Rect, len(s.Obstacles))
	copy(c.Obstacles, s.Obstacles)
	c.FinalPath = append([]float64(nil), s.FinalPath...)
	c.Steps = make([]Step, len(s.Steps))
	for i, step := range s.Steps {
		step.PathPoints = append([]float64(nil), step.PathPoints...)
		if len(step.PathPoints) == 0 {
			step.PathPoints = nil
		}
		c.Steps[i] = step
	}
	return c
}
