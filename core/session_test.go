package core

import "testing"

// Requirement: subscribers receive the current snapshot immediately and
// every subsequent transition, in order.
func TestSessionState_Subscribe(t *testing.T) {
	// Arrange
	state := NewSessionState()
	var seen []SessionSnapshot

	// Act
	unsubscribe := state.Subscribe(func(snap SessionSnapshot) {
		seen = append(seen, snap)
	})
	state.Establish(&User{ID: 1, Email: "alice@example.com"})
	state.TearDown()

	// Assert
	if len(seen) != 3 {
		t.Fatalf("received %d snapshots, want 3", len(seen))
	}
	if seen[0].IsAuthenticated {
		t.Error("initial snapshot should be unauthenticated")
	}
	if !seen[1].IsAuthenticated || seen[1].CurrentUser == nil || seen[1].CurrentUser.ID != 1 {
		t.Errorf("second snapshot = %+v, want authenticated as user 1", seen[1])
	}
	if seen[2].IsAuthenticated || seen[2].CurrentUser != nil {
		t.Errorf("third snapshot = %+v, want signed out", seen[2])
	}

	unsubscribe()
	state.Establish(&User{ID: 2})
	if len(seen) != 3 {
		t.Fatalf("received %d snapshots after unsubscribe, want 3", len(seen))
	}
}

// Requirement: late subscribers are caught up with the state they missed.
func TestSessionState_LateSubscriber(t *testing.T) {
	state := NewSessionState()
	state.Establish(&User{ID: 7, Role: RoleAdmin})

	var got SessionSnapshot
	defer state.Subscribe(func(snap SessionSnapshot) { got = snap })()

	if !got.IsAuthenticated || got.CurrentUser == nil || got.CurrentUser.ID != 7 {
		t.Fatalf("late subscriber saw %+v, want the established session", got)
	}
	if current := state.Current(); !current.IsAuthenticated {
		t.Fatal("Current() should report the established session")
	}
}

// Requirement: a listener may unsubscribe from inside its own callback
// without deadlocking the publisher.
func TestSessionState_UnsubscribeDuringPublish(t *testing.T) {
	state := NewSessionState()

	calls := 0
	var unsubscribe func()
	unsubscribe = state.Subscribe(func(SessionSnapshot) {
		calls++
		if calls == 2 {
			unsubscribe()
		}
	})

	state.Establish(&User{ID: 1})
	state.TearDown()
	state.Establish(&User{ID: 2})

	if calls != 2 {
		t.Fatalf("listener ran %d times, want 2", calls)
	}
}
