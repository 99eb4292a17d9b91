package router

import "sync"

// SupervisorRegistry tracks subsystem supervisors by name so diagnostics
// and shutdown paths can reach them. Entries come and go as services are
// started, stopped or rebuilt on config reload.
type SupervisorRegistry struct {
	mu sync.RWMutex
	m  map[string]*Supervisor
}

func NewSupervisorRegistry() *SupervisorRegistry {
	return &SupervisorRegistry{m: map[string]*Supervisor{}}
}

// Set registers sup under name, replacing any previous entry. A nil sup
// removes the entry.
func (r *SupervisorRegistry) Set(name string, sup *Supervisor) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if sup == nil {
		delete(r.m, name)
	} else {
		r.m[name] = sup
	}
	r.mu.Unlock()
}

func (r *SupervisorRegistry) Delete(name string) { r.Set(name, nil) }

// Snapshot copies the current entries; the returned map is the caller's to
// range freely.
func (r *SupervisorRegistry) Snapshot() map[string]*Supervisor {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Supervisor, len(r.m))
	for k, v := range r.m {
		out[k] = v
	}
	return out
}
