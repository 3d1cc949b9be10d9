// AngelaMos | 2026
// status.go

package taskstore

// UI status vocabulary. The backend stores the display form; the two are
// translated at this boundary and nowhere else.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

var toBackendStatus = map[string]string{
	StatusTodo:       "To Do",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
}

var toUIStatus = map[string]string{
	"To Do":       StatusTodo,
	"In Progress": StatusInProgress,
	"Done":        StatusDone,
}

// StatusToBackend maps a UI status to the stored vocabulary. Unknown values
// pass through unchanged: a surprise status is a data-quality signal for
// the caller, not a reason to fail the operation.
func StatusToBackend(status string) string {
	if mapped, ok := toBackendStatus[status]; ok {
		return mapped
	}
	return status
}

// StatusToUI maps a stored status to the UI vocabulary, passing unknown
// values through unchanged.
func StatusToUI(status string) string {
	if mapped, ok := toUIStatus[status]; ok {
		return mapped
	}
	return status
}
