package id

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	assert.NotEqual(t, gen.Generate(), gen.Generate())
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{SessionPrefix, UserPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		assert.True(t, strings.HasPrefix(id, prefix+"_"))
		assert.True(t, HasPrefix(id, prefix), id)
	}
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, HasPrefix(NewSessionID().String(), SessionPrefix))
	assert.True(t, HasPrefix(NewUserID().String(), UserPrefix))
	assert.False(t, HasPrefix(NewUserID().String(), SessionPrefix))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NewGenerator().Generate().String()))
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid(""))
}

func TestConcurrentGeneration(t *testing.T) {
	const workers, perWorker = 8, 200

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[SessionID]struct{}, workers*perWorker)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				sid := NewSessionID()
				mu.Lock()
				seen[sid] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
