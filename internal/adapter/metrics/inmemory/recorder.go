package inmemory

import (
	"sync"
)

type Snapshot struct {
	TaskDone       uint64            `json:"task_done"`
	TaskFailed     uint64            `json:"task_failed"`
	DoneByKind     map[string]uint64 `json:"done_by_kind"`
	FailedByReason map[string]uint64 `json:"failed_by_reason"`
	SearchTotal    uint64            `json:"search_total"`
	ByOutcome      map[string]uint64 `json:"search_by_outcome"`
}

type Recorder struct {
	mu         sync.Mutex
	done       uint64
	failed     uint64
	doneByKind map[string]uint64
	byReason   map[string]uint64
	searches   uint64
	byOutcome  map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		doneByKind: map[string]uint64{},
		byReason:   map[string]uint64{},
		byOutcome:  map[string]uint64{},
	}
}

func (r *Recorder) RecordTaskDone(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	r.doneByKind[kind]++
}

func (r *Recorder) RecordTaskFailed(kind, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
	r.byReason[kind+"/"+reason]++
}

func (r *Recorder) RecordSearch(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches++
	r.byOutcome[outcome]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		TaskDone:       r.done,
		TaskFailed:     r.failed,
		SearchTotal:    r.searches,
		DoneByKind:     make(map[string]uint64, len(r.doneByKind)),
		FailedByReason: make(map[string]uint64, len(r.byReason)),
		ByOutcome:      make(map[string]uint64, len(r.byOutcome)),
	}
	for k, v := range r.doneByKind {
		out.DoneByKind[k] = v
	}
	for k, v := range r.byReason {
		out.FailedByReason[k] = v
	}
	for k, v := range r.byOutcome {
		out.ByOutcome[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
