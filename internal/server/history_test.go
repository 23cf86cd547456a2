package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryEvictsOldestFirst(t *testing.T) {
	h := newHistory(3)
	for i := 1; i <= 5; i++ {
		h.add(ChatMessage{Username: "alice", Text: fmt.Sprintf("msg-%d", i)})
	}

	require.Equal(t, 3, h.size())
	require.Equal(t, []ChatMessage{
		{Username: "alice", Text: "msg-3"},
		{Username: "alice", Text: "msg-4"},
		{Username: "alice", Text: "msg-5"},
	}, h.snapshot())
}

func TestHistoryBelowCapacityKeepsEverything(t *testing.T) {
	h := newHistory(10)
	h.add(ChatMessage{Username: "alice", Text: "one"})
	h.add(ChatMessage{Username: "bob", Text: "two"})

	require.Equal(t, 2, h.size())
	require.Equal(t, []ChatMessage{
		{Username: "alice", Text: "one"},
		{Username: "bob", Text: "two"},
	}, h.snapshot())
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	h := newHistory(2)
	h.add(ChatMessage{Username: "alice", Text: "one"})
	h.add(ChatMessage{Username: "alice", Text: "two"})

	snap := h.snapshot()
	h.add(ChatMessage{Username: "alice", Text: "three"})

	require.Equal(t, []ChatMessage{
		{Username: "alice", Text: "one"},
		{Username: "alice", Text: "two"},
	}, snap, "a snapshot must not change when the ring keeps moving")
	require.Equal(t, []ChatMessage{
		{Username: "alice", Text: "two"},
		{Username: "alice", Text: "three"},
	}, h.snapshot())
}

func TestHistoryClampsCapacityToOne(t *testing.T) {
	h := newHistory(0)
	h.add(ChatMessage{Username: "alice", Text: "first"})
	h.add(ChatMessage{Username: "alice", Text: "second"})

	require.Equal(t, 1, h.size())
	require.Equal(t, []ChatMessage{{Username: "alice", Text: "second"}}, h.snapshot())
}

func TestHistoryEmptySnapshotIsEmptyNotNil(t *testing.T) {
	h := newHistory(4)
	snap := h.snapshot()
	require.NotNil(t, snap, "an empty history must marshal as [] rather than null")
	require.Empty(t, snap)
}
