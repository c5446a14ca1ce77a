package viewer

import "github.com/gdamore/tcell/v2"

// Action is something the user asked the viewer to do.
type Action int

const (
	// ActionNone is bound to every key without a mapping; dispatching it does nothing.
	ActionNone Action = iota
	ActionNextSession
	ActionPrevSession
	ActionLatest
	ActionNextStep
	ActionPrevStep
	ActionToggleRecording
	ActionClear
	ActionQuit
)

// String returns the action name for display
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionNextSession:
		return "next-session"
	case ActionPrevSession:
		return "prev-session"
	case ActionLatest:
		return "latest"
	case ActionNextStep:
		return "next-step"
	case ActionPrevStep:
		return "prev-step"
	case ActionToggleRecording:
		return "toggle-recording"
	case ActionClear:
		return "clear"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

var runeBindings = map[rune]Action{
	'n': ActionNextSession,
	'p': ActionPrevSession,
	'l': ActionLatest,
	'j': ActionNextStep,
	'k': ActionPrevStep,
	'r': ActionToggleRecording,
	'c': ActionClear,
	'q': ActionQuit,
}

var keyBindings = map[tcell.Key]Action{
	tcell.KeyRight:  ActionNextSession,
	tcell.KeyLeft:   ActionPrevSession,
	tcell.KeyEnd:    ActionLatest,
	tcell.KeyDown:   ActionNextStep,
	tcell.KeyUp:     ActionPrevStep,
	tcell.KeyEscape: ActionQuit,
	tcell.KeyCtrlC:  ActionQuit,
}

// KeyAction maps a key event to its action.
func KeyAction(ev *tcell.EventKey) Action {
	if ev.Key() == tcell.KeyRune {
		return runeBindings[ev.Rune()]
	}
	return keyBindings[ev.Key()]
}

// HelpLine summarises the bindings.
const HelpLine = "n/p session  l latest  j/k step  r record  c clear  q quit"
