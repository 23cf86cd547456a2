// Package server implements a room-based chat service on top of WebSocket.
//
// A single Hub event loop owns every room and connection: joins, leaves,
// messages, and disconnects are applied one at a time, which gives each room
// a total order of events and keeps membership transitions atomic. Encoded
// events fan out to each member independently, so one slow connection only
// costs that member its place, never the broadcast.
//
// The implementation is organized into specialized files for configuration,
// the hub, clients, rooms, wire events, routing, and HTTP handlers to keep
// the codebase maintainable and testable as the project grows.
package server
