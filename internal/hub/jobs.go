package hub

import (
	"time"

	"github.com/google/uuid"
)

// Job is one in-flight unit of work attributed to a connection. The hub
// only does bookkeeping; producing and running jobs belongs elsewhere.
type Job struct {
	ID        string
	ConnID    string
	Kind      string
	StartedAt time.Time
}

// StartJob registers a new in-flight job for the connection.
func (h *Hub) StartJob(connID, kind string) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		ConnID:    connID,
		Kind:      kind,
		StartedAt: time.Now(),
	}

	h.mu.Lock()
	h.jobs[job.ID] = job
	h.mu.Unlock()

	return job
}

// FinishJob removes a job from the in-flight registry. Unknown ids are
// ignored; the job may already have been dropped as stale.
func (h *Hub) FinishJob(id string) {
	h.mu.Lock()
	delete(h.jobs, id)
	h.mu.Unlock()
}

// dropStaleJobs removes jobs older than the TTL and returns how many were
// dropped. Caller holds the lock.
func (h *Hub) dropStaleJobs(cutoff time.Time) int {
	dropped := 0
	for id, job := range h.jobs {
		if job.StartedAt.Before(cutoff) {
			delete(h.jobs, id)
			dropped++
		}
	}
	return dropped
}
