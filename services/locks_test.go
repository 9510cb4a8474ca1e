package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := newKeyedMutex()
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer locks.Lock("k")()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locks.entries)
}

func TestKeyedMutexLockAll(t *testing.T) {
	locks := newKeyedMutex()

	release := locks.LockAll([]string{"b", "a", "b"})
	assert.Len(t, locks.entries, 2)
	release()
	assert.Empty(t, locks.entries)

	// Opposite orders cannot deadlock
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		keys := []string{"x", "y"}
		if i%2 == 0 {
			keys = []string{"y", "x"}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.LockAll(keys)()
		}()
	}
	wg.Wait()
	assert.Empty(t, locks.entries)
}

func TestScoreKey(t *testing.T) {
	assert.Equal(t, "a/o/2024", scoreKey("a", "o", 2024))
	assert.Equal(t, scoreKey("a", "o", 2024), ScoreTarget{OfficialID: "a", OfficeID: "o", Period: 2024}.key())
}
