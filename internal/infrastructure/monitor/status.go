package monitor

import "time"

type Dependency struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency_ns"`
	Error   string        `json:"error,omitempty"`
}

type Status struct {
	Dependencies map[string]Dependency `json:"dependencies"`
	LastCheck    time.Time             `json:"last_check"`
}

// Healthy is false until the first probe round and whenever a dependency failed.
func (s Status) Healthy() bool {
	if len(s.Dependencies) == 0 {
		return false
	}
	for _, d := range s.Dependencies {
		if !d.Healthy {
			return false
		}
	}
	return true
}

func (s Status) clone() Status {
	deps := make(map[string]Dependency, len(s.Dependencies))
	for k, v := range s.Dependencies {
		deps[k] = v
	}
	return Status{Dependencies: deps, LastCheck: s.LastCheck}
}
