package fixup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSucceedsImmediately(t *testing.T) {
	sys := NewSystem()
	f := sys.Register(Config{Fix: func(*Fixup) bool { return true }})
	require.True(t, sys.Resolve())
	assert.True(t, f.Resolved())
	assert.Equal(t, 0, sys.UnresolvedCount())
}

func TestResolveRetriesUntilDependencyIsReady(t *testing.T) {
	sys := NewSystem()

	// labelDefined becomes true only after the fixup depending on "later"
	// has already been attempted once, forcing a second pass.
	attempts := 0
	labelDefined := false
	sys.Register(Config{Fix: func(*Fixup) bool {
		attempts++
		if attempts == 1 {
			labelDefined = true
			return false
		}
		return labelDefined
	}})

	require.True(t, sys.Resolve())
	assert.Equal(t, 2, attempts)
}

func TestResolveFailsWhenNoProgressPossible(t *testing.T) {
	sys := NewSystem()
	sys.Register(Config{Fix: func(*Fixup) bool { return false }})
	sys.Register(Config{Fix: func(*Fixup) bool { return true }})

	require.False(t, sys.Resolve())
	assert.Equal(t, 1, sys.UnresolvedCount())
}

func TestFreeRunsEndCallbackForEveryFixup(t *testing.T) {
	sys := NewSystem()
	var ended []string
	sys.Register(Config{
		Fix:     func(*Fixup) bool { return true },
		End:     func(*Fixup) { ended = append(ended, "resolved") },
		Private: "a",
	})
	sys.Register(Config{
		Fix: func(*Fixup) bool { return false },
		End: func(*Fixup) { ended = append(ended, "unresolved") },
	})

	sys.Resolve()
	sys.Free()

	assert.ElementsMatch(t, []string{"resolved", "unresolved"}, ended)
}

func TestPrivateRoundTrips(t *testing.T) {
	sys := NewSystem()
	f := sys.Register(Config{Fix: func(*Fixup) bool { return true }, Private: 42})
	assert.Equal(t, 42, f.Private())
}
