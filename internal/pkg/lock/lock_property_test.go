// Property-based tests for per-user serialization of session writes.
package lock

import (
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestSerializedAppendsProperty checks that any set of concurrent
// read-modify-write operations on one user's session log, executed under
// the user's lock, ends in the state sequential execution would produce.
func TestSerializedAppendsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")
		userID := rapid.Int64Range(1, 1_000_000).Draw(t, "userID")

		amounts := make([]int64, numOps)
		var expected int64
		for i := range amounts {
			amounts[i] = rapid.Int64Range(-500, 500).Draw(t, "amount")
			expected += amounts[i]
		}

		ul := NewUserLock()
		var total int64

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, amount := range amounts {
			go func(amount int64) {
				defer wg.Done()
				ul.Lock(userID)
				defer ul.Unlock(userID)
				total += amount
			}(amount)
		}
		wg.Wait()

		if total != expected {
			t.Fatalf("lost update: expected %d, got %d", expected, total)
		}
	})
}

// TestIndependentUsersProperty checks that locks for different users never
// interfere: holding one user's lock does not block another user's.
func TestIndependentUsersProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userA := rapid.Int64Range(1, 1_000_000).Draw(t, "userA")
		userB := rapid.Int64Range(1_000_001, 2_000_000).Draw(t, "userB")

		ul := NewUserLock()

		ul.Lock(userA)
		if !ul.TryLock(userB) {
			ul.Unlock(userA)
			t.Fatalf("user %d's lock blocked user %d", userA, userB)
		}
		ul.Unlock(userB)
		ul.Unlock(userA)
	})
}

func TestTryLock(t *testing.T) {
	ul := NewUserLock()

	if !ul.TryLock(1) {
		t.Fatal("expected TryLock to succeed on a free lock")
	}
	if ul.TryLock(1) {
		t.Fatal("expected TryLock to fail on a held lock")
	}
	ul.Unlock(1)
	if !ul.TryLock(1) {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	ul.Unlock(1)
}

func TestWithLock(t *testing.T) {
	ul := NewUserLock()

	err := ul.WithLock(1, func() error {
		if ul.TryLock(1) {
			ul.Unlock(1)
			t.Fatal("lock not held inside WithLock")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The lock is released after WithLock returns.
	if !ul.TryLock(1) {
		t.Fatal("lock still held after WithLock returned")
	}
	ul.Unlock(1)
}
