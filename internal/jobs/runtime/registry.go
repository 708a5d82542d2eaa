package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Handler runs one job type. Implementations live under
// internal/jobs/pipeline and report their job_type via Type().
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry maps job_type to its handler. Registration happens once at boot;
// lookups happen on every claimed job.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("register: nil handler")
	}
	jobType := h.Type()
	if jobType == "" {
		return fmt.Errorf("register: handler reports empty job type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.handlers[jobType]; dup {
		return fmt.Errorf("register: duplicate handler for job_type=%s", jobType)
	}
	r.handlers[jobType] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Types lists registered job types, sorted. Used for boot logging.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
