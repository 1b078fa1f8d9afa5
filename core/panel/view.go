package panel

import (
	"sync"

	"github.com/trezcool/coursepanel/core"
)

// View identifies one of the administrative sub-views of a course.
type View int

const (
	ViewAnalytics View = iota
	ViewEditCourse
	ViewPromptSettings
	ViewEditModels
	ViewStudents
	ViewChatLogs

	numViews // sentinel; keep last

	DefaultView = ViewAnalytics
)

var viewNames = [numViews]string{
	ViewAnalytics:      "analytics",
	ViewEditCourse:     "edit-course",
	ViewPromptSettings: "prompt-settings",
	ViewEditModels:     "edit-models",
	ViewStudents:       "view-students",
	ViewChatLogs:       "chat-logs",
}

// Views returns every view in navigation order.
func Views() []View {
	views := make([]View, 0, numViews)
	for v := View(0); v < numViews; v++ {
		views = append(views, v)
	}
	return views
}

func (v View) Valid() bool { return v >= 0 && v < numViews }

func (v View) String() string {
	if !v.Valid() {
		return "invalid"
	}
	return viewNames[v]
}

// ParseView converts a navigation tag to a View; unknown tags are rejected.
func ParseView(s string) (View, error) {
	s = core.CleanString(s, true /* lower */)
	for v, name := range viewNames {
		if name == s {
			return View(v), nil
		}
	}
	return 0, core.NewInvalidArgumentError("view", s, "unknown view")
}

// ViewSelector tracks the active sub-view of a course administration session.
// Switching views tears down the previous view through its unmount hook.
type ViewSelector struct {
	mu      sync.Mutex
	active  View
	unmount func()
}

func NewViewSelector(initial View) (*ViewSelector, error) {
	if !initial.Valid() {
		return nil, core.NewInvalidArgumentError("view", initial.String(), "unknown view")
	}
	return &ViewSelector{active: initial}, nil
}

func (s *ViewSelector) Active() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Mount registers the teardown of the active view's local state.
// It replaces any previously registered hook.
func (s *ViewSelector) Mount(unmount func()) {
	s.mu.Lock()
	s.unmount = unmount
	s.mu.Unlock()
}

// Select makes v the active view. Selecting the active view is a no-op.
func (s *ViewSelector) Select(v View) error {
	if !v.Valid() {
		return core.NewInvalidArgumentError("view", v.String(), "unknown view")
	}

	s.mu.Lock()
	if v == s.active {
		s.mu.Unlock()
		return nil
	}
	unmount := s.unmount
	s.active = v
	s.unmount = nil
	s.mu.Unlock()

	if unmount != nil {
		unmount()
	}
	return nil
}
