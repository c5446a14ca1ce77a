package viewer

import "cardlink/debug"

// Source is the session history the viewer browses. *debug.Recorder implements it.
type Source interface {
	Sessions() []debug.Session
	IsEnabled() bool
	Enable()
	Disable()
	ClearSessions()
}

// Model is the viewer state independent of the screen.
type Model struct {
	src      Source
	sessions []debug.Session
	index    int
	// step is the highlighted step, or -1 for the final path.
	step   int
	follow bool
}

// NewModel creates a model that follows the newest session.
func NewModel(src Source) *Model {
	m := &Model{src: src, step: -1, follow: true}
	m.Refresh()
	return m
}

// Refresh reloads the history, keeping the selection where possible.
func (m *Model) Refresh() {
	before, _ := m.Selected()
	m.sessions = m.src.Sessions()
	n := len(m.sessions)

	if n == 0 {
		m.index, m.step = 0, -1
		return
	}
	if m.follow || m.index >= n {
		m.index = n - 1
	}
	if after := m.sessions[m.index]; after.ID != before.ID || after.Timestamp != before.Timestamp {
		m.step = -1
	}
}

// Dispatch applies an action and reports whether the viewer should quit.
func (m *Model) Dispatch(a Action) bool {
	switch a {
	case ActionNone:
	case ActionNextSession:
		if m.index+1 < len(m.sessions) {
			m.index++
			m.step = -1
		}
		m.follow = m.index == len(m.sessions)-1
	case ActionPrevSession:
		if m.index > 0 {
			m.index--
			m.step = -1
			m.follow = false
		}
	case ActionLatest:
		m.follow = true
		m.step = -1
		m.Refresh()
	case ActionNextStep:
		if s, ok := m.Selected(); ok && m.step+1 < len(s.Steps) {
			m.step++
		}
	case ActionPrevStep:
		if m.step >= 0 {
			m.step--
		}
	case ActionToggleRecording:
		if m.src.IsEnabled() {
			m.src.Disable()
		} else {
			m.src.Enable()
		}
	case ActionClear:
		m.src.ClearSessions()
		m.Refresh()
	case ActionQuit:
		return true
	}
	return false
}

// Selected returns the session under the cursor.
func (m *Model) Selected() (debug.Session, bool) {
	if len(m.sessions) == 0 {
		return debug.Session{}, false
	}
	return m.sessions[m.index], true
}

// Position returns the selected index and the history length.
func (m *Model) Position() (index, total int) {
	return m.index, len(m.sessions)
}

// Step returns the highlighted step index, -1 meaning the final path.
func (m *Model) Step() int {
	return m.step
}

// Recording reports whether the source is recording.
func (m *Model) Recording() bool {
	return m.src.IsEnabled()
}
