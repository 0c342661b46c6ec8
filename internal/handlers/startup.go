package handlers

import (
	"net/http"
	"sync"
)

// StartupStep is one initialization stage
type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StartupStatus is the readiness report
type StartupStatus struct {
	Ready    bool          `json:"ready"`
	Message  string        `json:"message,omitempty"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// Startup lets the server accept connections while it initializes. Until
// MarkReady is called every request gets a 503 with the current progress.
type Startup struct {
	mu     sync.RWMutex
	status StartupStatus
	next   http.Handler
}

// NewStartup creates a tracker for the named steps
func NewStartup(steps ...string) *Startup {
	s := &Startup{status: StartupStatus{Current: "Initializing..."}}
	for _, name := range steps {
		s.status.Steps = append(s.status.Steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *Startup) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *Startup) CompleteStep(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.status.Steps {
		if s.status.Steps[i].Name == name {
			s.status.Steps[i].Completed = true
		}
		if s.status.Steps[i].Completed {
			completed++
		}
	}
	if len(s.status.Steps) > 0 {
		s.status.Progress = completed * 100 / len(s.status.Steps)
	}
}

// MarkReady switches all traffic to next
func (s *Startup) MarkReady(next http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Ready = true
	s.status.Current = "Server ready"
	s.status.Progress = 100
	s.next = next
}

// Status returns a copy of the current report
func (s *Startup) Status() StartupStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Steps = append([]StartupStep(nil), s.status.Steps...)
	return st
}

func (s *Startup) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	next := s.next
	s.mu.RUnlock()

	if next != nil {
		next.ServeHTTP(w, r)
		return
	}

	st := s.Status()
	st.Message = ErrStartingUp
	w.Header().Set("Retry-After", "2")
	respondJSON(w, http.StatusServiceUnavailable, st)
}

// Ready reports readiness; it is routed behind the gate so it only answers
// 200 once MarkReady has run.
func (s *Startup) Ready(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Status())
}
