package fake

import (
	"sync"

	"github.com/chriscow/talking-history-go/pkg/session"
)

// FakeUI records every status label and control state it receives.
type FakeUI struct {
	mu       sync.Mutex
	statuses []string
	controls []session.ControlState
}

// NewFakeUI creates an empty recording UI.
func NewFakeUI() *FakeUI {
	return &FakeUI{}
}

func (u *FakeUI) SetStatus(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.statuses = append(u.statuses, text)
}

func (u *FakeUI) SetControls(state session.ControlState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.controls = append(u.controls, state)
}

// Statuses returns every status label set so far.
func (u *FakeUI) Statuses() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.statuses...)
}

// LastStatus returns the most recent status label.
func (u *FakeUI) LastStatus() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.statuses) == 0 {
		return ""
	}
	return u.statuses[len(u.statuses)-1]
}

// LastControls returns the most recent control state.
func (u *FakeUI) LastControls() session.ControlState {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.controls) == 0 {
		return session.ControlState{}
	}
	return u.controls[len(u.controls)-1]
}
