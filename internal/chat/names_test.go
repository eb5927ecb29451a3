package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveNameKeepsFreeName(t *testing.T) {
	taken := map[string]struct{}{"Bob": {}}
	require.Equal(t, "Alice", ResolveName(taken, "Alice"))
}

func TestResolveNameSuffixesFirstCollision(t *testing.T) {
	taken := map[string]struct{}{"Alex": {}}
	require.Equal(t, "Alex#2", ResolveName(taken, "Alex"))
}

func TestResolveNameSkipsTakenSuffixes(t *testing.T) {
	taken := map[string]struct{}{
		"Alex":   {},
		"Alex#2": {},
		"Alex#3": {},
	}
	require.Equal(t, "Alex#4", ResolveName(taken, "Alex"))
}

func TestResolveNameHandlesSuffixSquatter(t *testing.T) {
	// Someone literally named "Alex#2" must not trap the loop.
	taken := map[string]struct{}{
		"Alex":   {},
		"Alex#2": {},
	}
	require.Equal(t, "Alex#3", ResolveName(taken, "Alex"))
}

func TestResolveNameEmptyRoom(t *testing.T) {
	require.Equal(t, "Alex", ResolveName(map[string]struct{}{}, "Alex"))
}
