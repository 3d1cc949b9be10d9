// AngelaMos | 2026
// status_test.go

package taskstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusToBackend(t *testing.T) {
	assert.Equal(t, "To Do", StatusToBackend(StatusTodo))
	assert.Equal(t, "In Progress", StatusToBackend(StatusInProgress))
	assert.Equal(t, "Done", StatusToBackend(StatusDone))
}

func TestStatusToUI(t *testing.T) {
	assert.Equal(t, StatusTodo, StatusToUI("To Do"))
	assert.Equal(t, StatusInProgress, StatusToUI("In Progress"))
	assert.Equal(t, StatusDone, StatusToUI("Done"))
}

func TestStatusRoundTrip(t *testing.T) {
	for _, status := range []string{StatusTodo, StatusInProgress, StatusDone} {
		assert.Equal(t, status, StatusToUI(StatusToBackend(status)))
	}
}

func TestStatusUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "Archived", StatusToUI("Archived"))
	assert.Equal(t, "blocked", StatusToBackend("blocked"))
	assert.Equal(t, "", StatusToBackend(""))
}
