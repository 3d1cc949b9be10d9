// AngelaMos | 2026
// store_test.go

package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsInitial(t *testing.T) {
	s := New(42)
	assert.Equal(t, 42, s.Get())
}

func TestSetNotifiesSubscribers(t *testing.T) {
	s := New("a")

	var got []string
	s.Subscribe(func(v string) { got = append(got, v) })

	s.Set("b")
	s.Set("c")

	assert.Equal(t, []string{"b", "c"}, got)
	assert.Equal(t, "c", s.Get())
}

func TestSubscribeDoesNotFireImmediately(t *testing.T) {
	s := New(1)

	called := false
	s.Subscribe(func(int) { called = true })

	assert.False(t, called)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := New(0)

	count := 0
	unsubscribe := s.Subscribe(func(int) { count++ })

	s.Set(1)
	unsubscribe()
	s.Set(2)

	assert.Equal(t, 1, count)
}

func TestUpdateAppliesFunction(t *testing.T) {
	s := New(10)

	s.Update(func(v int) int { return v * 2 })

	assert.Equal(t, 20, s.Get())
}

func TestSubscriberMayReadDuringCallback(t *testing.T) {
	s := New(0)

	var seen int
	s.Subscribe(func(v int) {
		// Get must not deadlock inside a notification.
		seen = s.Get()
	})

	s.Set(7)
	require.Equal(t, 7, seen)
}

func TestConcurrentSetAndSubscribe(t *testing.T) {
	s := New(0)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				s.Set(n)
			} else {
				unsub := s.Subscribe(func(int) {})
				unsub()
			}
		}(i)
	}
	wg.Wait()
}
