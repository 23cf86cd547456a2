// Package server defines the JSON event payloads exchanged with chat clients
// and the helpers that encode and decode them.
package server

import (
	"encoding/json"
	"fmt"
)

// Event type discriminators carried in the "type" field of every frame.
const (
	EventJoin       = "join"        // client to server
	EventSwitchRoom = "switch_room" // client to server, treated exactly like join
	EventMessage    = "message"     // both directions
	EventInit       = "init"        // server to client
	EventRooms      = "rooms"       // server to client
	EventUsers      = "users"       // server to client
	EventSystem     = "system"      // server to client
)

// ChatMessage is a single chat line as stored in room history and delivered
// on the wire. Username is a snapshot of the sender's name at send time and
// is never rewritten afterwards.
type ChatMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// inboundEvent is the envelope for every client-to-server frame. Which fields
// are meaningful depends on Type; the rest arrive empty and are ignored.
type inboundEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Room     string `json:"room"`
	Text     string `json:"text"`
}

func decodeInbound(raw []byte) (inboundEvent, error) {
	var ev inboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return inboundEvent{}, fmt.Errorf("decoding event: %w", err)
	}
	return ev, nil
}

type initEvent struct {
	Type     string        `json:"type"`
	Room     string        `json:"room"`
	Rooms    []string      `json:"rooms"`
	Users    []string      `json:"users"`
	Messages []ChatMessage `json:"messages"`
}

type roomsEvent struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms"`
}

type usersEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type messageEvent struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

type systemEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// encodeInit builds the full-state snapshot delivered to a joining
// connection: the room it landed in, every known room name, the current
// member usernames, and the retained history oldest first.
func encodeInit(roomName string, roomNames, users []string, messages []ChatMessage) ([]byte, error) {
	return json.Marshal(initEvent{
		Type:     EventInit,
		Room:     roomName,
		Rooms:    roomNames,
		Users:    users,
		Messages: messages,
	})
}

func encodeRooms(roomNames []string) ([]byte, error) {
	return json.Marshal(roomsEvent{Type: EventRooms, Rooms: roomNames})
}

func encodeUsers(users []string) ([]byte, error) {
	return json.Marshal(usersEvent{Type: EventUsers, Users: users})
}

func encodeMessage(msg ChatMessage) ([]byte, error) {
	return json.Marshal(messageEvent{Type: EventMessage, Message: msg})
}

func encodeSystem(notice string) ([]byte, error) {
	return json.Marshal(systemEvent{Type: EventSystem, Message: notice})
}
