package debug

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"cardlink/core"
	"cardlink/storage"

	"github.com/google/uuid"
)

// Storage keys.
const (
	EnabledKey  = "cardlink.routing-debug.enabled"
	SessionsKey = "cardlink.routing-debug.sessions"
)

// DefaultMaxSessions is the history cap applied when none is configured.
const DefaultMaxSessions = 50

// Options configures a Recorder.
type Options struct {
	// MaxSessions caps the persisted history. Zero means DefaultMaxSessions.
	MaxSessions int

	// Logger receives persistence failures. Nil means slog.Default().
	Logger *slog.Logger

	// Now supplies session timestamps. Nil means time.Now.
	Now func() time.Time

	// NewID supplies session identifiers. Nil means random UUIDs.
	NewID func() string
}

// Recorder is the opt-in sink the router reports attempts to.
//
// A Recorder holds at most one in-flight session. Sealed sessions live only in
// the backing store, so the recorder never keeps a reference to them.
type Recorder struct {
	mu          sync.Mutex
	store       storage.Store
	logger      *slog.Logger
	maxSessions int
	now         func() time.Time
	newID       func() string

	enabled bool
	current *Session
}

// NewRecorder creates a recorder over store, restoring the persisted enabled flag.
func NewRecorder(store storage.Store, opts Options) *Recorder {
	r := &Recorder{
		store:       store,
		logger:      opts.Logger,
		maxSessions: opts.MaxSessions,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.maxSessions <= 0 {
		r.maxSessions = DefaultMaxSessions
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = func() string { return uuid.NewString() }
	}

	value, ok, err := store.Get(EnabledKey)
	if err != nil {
		r.logger.Warn("read routing debug flag", "error", err)
	}
	r.enabled = ok && value == "true"
	return r
}

// Enable turns recording on and persists the flag.
func (r *Recorder) Enable() {
	r.setEnabled(true)
}

// Disable turns recording off, drops any in-flight session and persists the flag.
func (r *Recorder) Disable() {
	r.setEnabled(false)
}

func (r *Recorder) setEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
	if !enabled {
		r.current = nil
	}
	value := "false"
	if enabled {
		value = "true"
	}
	if err := r.store.Set(EnabledKey, value); err != nil {
		r.logger.Warn("persist routing debug flag", "error", err)
	}
}

// IsEnabled reports whether recording is on.
func (r *Recorder) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// StartSession opens a session for one routing invocation, replacing any
// session still in flight.
func (r *Recorder) StartSession(sourceID, targetID string, start, end core.Point, obstacles []core.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	snapshot := make([]core.Rect, len(obstacles))
	copy(snapshot, obstacles)
	r.current = &Session{
		ID:         r.newID(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Timestamp:  r.now().UnixMilli(),
		StartPoint: start,
		EndPoint:   end,
		Obstacles:  snapshot,
		Steps:      []Step{},
	}
}

// AddStep appends an attempt to the in-flight session. Steps are numbered from 1.
func (r *Recorder) AddStep(description, decision string, points []float64, rejected bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || r.current == nil {
		return
	}

	var copied []float64
	if len(points) > 0 {
		copied = make([]float64, len(points)-len(points)%2)
		copy(copied, points)
	}
	r.current.Steps = append(r.current.Steps, Step{
		Step:        len(r.current.Steps) + 1,
		Description: description,
		Decision:    decision,
		PathPoints:  copied,
		Rejected:    rejected,
		Reason:      reason,
	})
}

// EndSession seals the in-flight session and appends it to the persisted history.
func (r *Recorder) EndSession(finalPath []float64, finalStrategy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || r.current == nil {
		return
	}

	sealed := r.current.clone()
	sealed.FinalPath = append([]float64(nil), finalPath...)
	sealed.FinalStrategy = finalStrategy
	r.current = nil

	history := append(r.load(), sealed)
	if over := len(history) - r.maxSessions; over > 0 {
		history = history[over:]
	}
	r.save(history)
}

// InFlight reports whether a session is currently open.
func (r *Recorder) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Sessions returns the persisted history, oldest first.
func (r *Recorder) Sessions() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// LatestSession returns the most recently sealed session.
func (r *Recorder) LatestSession() (Session, bool) {
	sessions := r.Sessions()
	if len(sessions) == 0 {
		return Session{}, false
	}
	return sessions[len(sessions)-1], true
}

// ClearSessions empties the history and cancels any in-flight session.
func (r *Recorder) ClearSessions() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
	if err := r.store.Remove(SessionsKey); err != nil {
		r.logger.Warn("clear routing debug sessions", "error", err)
	}
}

// load reads history from the store. Missing or corrupt data is an empty history.
func (r *Recorder) load() []Session {
	raw, ok, err := r.store.Get(SessionsKey)
	if err != nil {
		r.logger.Warn("read routing debug sessions", "error", err)
		return []Session{}
	}
	if !ok || raw == "" {
		return []Session{}
	}

	var sessions []Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		r.logger.Warn("discarding unreadable routing debug sessions", "error", err)
		return []Session{}
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions
}

func (r *Recorder) save(sessions []Session) {
	data, err := json.Marshal(sessions)
	if err != nil {
		r.logger.Warn("encode routing debug sessions", "error", err)
		return
	}
	if err := r.store.Set(SessionsKey, string(data)); err != nil {
		r.logger.Warn("persist routing debug sessions", "error", err)
	}
}
