package resolve

import (
	"strconv"
	"sync"

	"github.com/bradykim7/whobot/internal/models"
)

type sessionState int

const (
	stateOpen sessionState = iota
	stateResolved
	stateTimedOut
)

// session is the ephemeral state of one in-flight disambiguation: the
// invoker it answers to, the rendered chooser, and a single-assignment
// result slot guarded by a terminality check. Sessions are independent of
// each other; nothing here is shared across invocations.
type session struct {
	id        string
	token     string
	invokerID string
	channelID string
	messageID string
	ui        *selectionUI
	directory []models.User

	mu     sync.Mutex
	state  sessionState
	chosen models.User
	done   chan struct{}
}

func newSession(id, token, invokerID, channelID string, ui *selectionUI, directory []models.User) *session {
	return &session{
		id:        id,
		token:     token,
		invokerID: invokerID,
		channelID: channelID,
		ui:        ui,
		directory: directory,
		done:      make(chan struct{}),
	}
}

// attemptResolve records the first accepted selection and reports whether
// it won. A terminal session rejects the attempt, so at most one selection
// is ever recorded.
func (s *session) attemptResolve(u models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateOpen {
		return false
	}
	s.state = stateResolved
	s.chosen = u
	close(s.done)
	return true
}

// expire moves an open session to TimedOut. Reports false when a selection
// already won the race.
func (s *session) expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateOpen {
		return false
	}
	s.state = stateTimedOut
	return true
}

func (s *session) result() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chosen, s.state == stateResolved
}

// pick interprets a delivered selection against the session's UI variant
// and returns the candidate it names. Malformed events report false and
// are treated as no-ops by the caller.
func (s *session) pick(sel Selection) (models.User, bool) {
	switch s.ui.kind {
	case uiNativePicker:
		if len(sel.Values) == 0 {
			return models.User{}, false
		}
		id := sel.Values[0]
		for _, u := range sel.Resolved {
			if u.ID == id {
				return u, true
			}
		}
		for _, u := range s.ui.candidates {
			if u.ID == id {
				return u, true
			}
		}
		for _, u := range s.directory {
			if u.ID == id {
				return u, true
			}
		}
		// Picker allows any member; fall back to a bare reference.
		return models.User{ID: id}, true
	case uiButtons:
		i, err := strconv.Atoi(sel.Component)
		if err != nil || i < 0 || i >= len(s.ui.candidates) {
			return models.User{}, false
		}
		return s.ui.candidates[i], true
	default:
		if len(sel.Values) == 0 {
			return models.User{}, false
		}
		i, err := strconv.Atoi(sel.Values[0])
		if err != nil || i < 0 || i >= len(s.ui.candidates) {
			return models.User{}, false
		}
		return s.ui.candidates[i], true
	}
}
