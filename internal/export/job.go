package export

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operation identifies what an export job does to the source.
type Operation string

const (
	OpReverse       Operation = "reverse"
	OpTrim          Operation = "trim"
	OpSpeedChange   Operation = "speed_change"
	OpSegmentConcat Operation = "segment_concat"
	OpTextBurn      Operation = "text_burn"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is the observable state of one export. Progress is monotonically
// non-decreasing and reaches exactly 1.0 on success. Jobs are ephemeral:
// nothing is persisted and terminal states end the callback sequence.
type Job struct {
	ID        string
	Source    string
	Output    string
	Op        Operation
	Status    Status
	Progress  float64
	Err       error
	CreatedAt time.Time

	// Pointer so observer copies of Job stay plain data.
	mu     *sync.Mutex
	notify func(Job)
	done   bool
}

func newJob(op Operation, source, output string, notify func(Job)) *Job {
	return &Job{
		ID:        uuid.NewString(),
		mu:        &sync.Mutex{},
		Source:    source,
		Output:    output,
		Op:        op,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		notify:    notify,
	}
}

// IsTerminal reports whether the job has finished.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// snapshot returns a copy safe to hand to observers.
func (j *Job) snapshot() Job {
	return Job{
		ID:        j.ID,
		Source:    j.Source,
		Output:    j.Output,
		Op:        j.Op,
		Status:    j.Status,
		Progress:  j.Progress,
		Err:       j.Err,
		CreatedAt: j.CreatedAt,
	}
}

func (j *Job) start() {
	j.mu.Lock()
	j.Status = StatusRunning
	snap := j.snapshot()
	notify := j.notify
	j.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

// setProgress clamps into [0,1] and drops regressions so observers always
// see a monotonic sequence regardless of encoder stderr jitter.
func (j *Job) setProgress(p float64) {
	j.mu.Lock()
	if j.done || p <= j.Progress {
		j.mu.Unlock()
		return
	}
	if p > 1 {
		p = 1
	}
	j.Progress = p
	snap := j.snapshot()
	notify := j.notify
	j.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

func (j *Job) complete() {
	j.mu.Lock()
	if j.done {
		j.mu.Unlock()
		return
	}
	j.done = true
	j.Status = StatusCompleted
	j.Progress = 1
	snap := j.snapshot()
	notify := j.notify
	j.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	if j.done {
		j.mu.Unlock()
		return
	}
	j.done = true
	j.Status = StatusFailed
	j.Err = err
	snap := j.snapshot()
	notify := j.notify
	j.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
}
