// Property-based tests for per-game lock serialization.
package lock

import (
	"fmt"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestConcurrentMutationSafety checks that concurrent read-modify-write
// cycles on the same game, run under the lock, end in the state sequential
// execution would produce.
func TestConcurrentMutationSafety(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 100000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		amounts := make([]int64, numOps)
		expected := initial
		for i := 0; i < numOps; i++ {
			amounts[i] = rapid.Int64Range(-500, 500).Draw(t, "amount")
			expected += amounts[i]
		}

		gl := NewGameLock()
		balance := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, amount := range amounts {
			go func(amount int64) {
				defer wg.Done()
				_ = gl.WithLock("game-1", func() error {
					balance += amount
					return nil
				})
			}(amount)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("Balance mismatch: expected %d, got %d", expected, balance)
		}
	})
}

// TestIndependentGameLocks checks that locks for different games do not
// interfere with each other's serialization.
func TestIndependentGameLocks(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numGames := rapid.IntRange(2, 10).Draw(t, "numGames")
		opsPerGame := rapid.IntRange(5, 20).Draw(t, "opsPerGame")

		gl := NewGameLock()
		counters := make([]int64, numGames)

		var wg sync.WaitGroup
		wg.Add(numGames * opsPerGame)
		for i := 0; i < numGames; i++ {
			gameID := fmt.Sprintf("game-%d", i)
			for j := 0; j < opsPerGame; j++ {
				go func(idx int, id string) {
					defer wg.Done()
					gl.Lock(id)
					defer gl.Unlock(id)
					counters[idx] += 10
				}(i, gameID)
			}
		}
		wg.Wait()

		for i := 0; i < numGames; i++ {
			if counters[i] != int64(opsPerGame)*10 {
				t.Fatalf("Game %d counter mismatch: expected %d, got %d",
					i, int64(opsPerGame)*10, counters[i])
			}
		}
	})
}
