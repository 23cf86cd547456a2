package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want inboundEvent
	}{
		{
			name: "join",
			raw:  `{"type":"join","username":"alice","room":"general"}`,
			want: inboundEvent{Type: EventJoin, Username: "alice", Room: "general"},
		},
		{
			name: "switch room",
			raw:  `{"type":"switch_room","username":"alice","room":"team"}`,
			want: inboundEvent{Type: EventSwitchRoom, Username: "alice", Room: "team"},
		},
		{
			name: "message",
			raw:  `{"type":"message","room":"general","username":"alice","text":"hi"}`,
			want: inboundEvent{Type: EventMessage, Username: "alice", Room: "general", Text: "hi"},
		},
		{
			name: "extra fields are ignored",
			raw:  `{"type":"message","text":"hi","color":"red"}`,
			want: inboundEvent{Type: EventMessage, Text: "hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeInbound([]byte(tt.raw))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeInboundRejectsMalformedJSON(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"type":`, `[1,2,3]`} {
		_, err := decodeInbound([]byte(raw))
		require.Error(t, err, "raw: %q", raw)
	}
}

func TestEncodeInitWireFormat(t *testing.T) {
	frame, err := encodeInit(
		"general",
		[]string{"general", "team"},
		[]string{"alice", "bob"},
		[]ChatMessage{{Username: "alice", Text: "hi"}},
	)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"type": "init",
		"room": "general",
		"rooms": ["general", "team"],
		"users": ["alice", "bob"],
		"messages": [{"username": "alice", "text": "hi"}]
	}`, string(frame))
}

func TestEncodeInitEmptyHistoryMarshalsAsEmptyArray(t *testing.T) {
	frame, err := encodeInit("general", []string{"general"}, []string{"alice"}, []ChatMessage{})
	require.NoError(t, err)
	require.Contains(t, string(frame), `"messages":[]`, "clients expect an array, never null")
}

func TestEncodeRoomsWireFormat(t *testing.T) {
	frame, err := encodeRooms([]string{"general", "team"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"rooms","rooms":["general","team"]}`, string(frame))
}

func TestEncodeUsersWireFormat(t *testing.T) {
	frame, err := encodeUsers([]string{"alice", "bob"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"users","users":["alice","bob"]}`, string(frame))
}

func TestEncodeMessageWireFormat(t *testing.T) {
	frame, err := encodeMessage(ChatMessage{Username: "alice", Text: "hi"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"message","message":{"username":"alice","text":"hi"}}`, string(frame))
}

func TestEncodeSystemWireFormat(t *testing.T) {
	frame, err := encodeSystem("bob joined the room")
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"system","message":"bob joined the room"}`, string(frame))
}
