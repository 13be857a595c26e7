package inmemory

import "testing"

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.RecordTaskDone("PathFinder")
	r.RecordTaskDone("PathFinder")
	r.RecordTaskDone("Explorer")
	r.RecordTaskFailed("Drinker", "action_timeout")
	r.RecordSearch("found")
	r.RecordSearch("unreachable")

	snap := r.Snapshot()
	if snap.TaskDone != 3 {
		t.Fatalf("TaskDone = %d, want 3", snap.TaskDone)
	}
	if snap.DoneByKind["PathFinder"] != 2 {
		t.Fatalf("DoneByKind[PathFinder] = %d, want 2", snap.DoneByKind["PathFinder"])
	}
	if snap.TaskFailed != 1 || snap.FailedByReason["Drinker/action_timeout"] != 1 {
		t.Fatalf("failed counters wrong: %+v", snap)
	}
	if snap.SearchTotal != 2 || snap.ByOutcome["found"] != 1 {
		t.Fatalf("search counters wrong: %+v", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.RecordTaskDone("Explorer")
	snap := r.Snapshot()
	snap.DoneByKind["Explorer"] = 99

	if got := r.Snapshot().DoneByKind["Explorer"]; got != 1 {
		t.Fatalf("mutating a snapshot leaked into the recorder: %d", got)
	}
}
