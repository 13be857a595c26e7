package ports

// TaskMetrics records task and search outcomes for the ops endpoint.
// Observability only; nothing reads these back for control flow.
type TaskMetrics interface {
	RecordTaskDone(kind string)
	RecordTaskFailed(kind, reason string)
	RecordSearch(outcome string)
}
