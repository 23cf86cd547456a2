// Package server coordinates rooms, membership, and message fan-out for the
// chat service via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// joinRequest asks the hub to move a client into a room, creating the room
// on first use.
type joinRequest struct {
	client   *Client
	username string
	room     string
}

// sendRequest asks the hub to record and broadcast one chat message from a
// client to its current room.
type sendRequest struct {
	client *Client
	text   string
}

// Stats is a point-in-time snapshot of hub state as reported by /stats.
type Stats struct {
	Clients int            `json:"clients"`
	Rooms   map[string]int `json:"rooms"`
}

// Hub owns every room and connection. All state lives behind a single event
// loop (Run), so each room sees one total order of joins, leaves, and
// messages, and no client ever observes a membership transition half-applied.
type Hub struct {
	cfg Config

	register   chan *Client
	unregister chan *Client
	joins      chan joinRequest
	sends      chan sendRequest
	stats      chan chan Stats

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup

	// Loop-owned state. Only Run touches these, so they need no locking.
	clients   map[*Client]bool
	rooms     map[string]*room
	roomNames []string
}

// NewHub creates a Hub ready to run with the provided configuration.
func NewHub(cfg Config) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:        cfg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joins:      make(chan joinRequest),
		sends:      make(chan sendRequest),
		stats:      make(chan chan Stats),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]*room),
	}
}

// Run starts the hub's event loop. Every membership change, message, and
// stats query funnels through here one at a time; that single-writer
// discipline is what makes room transitions atomic and totally ordered.
// Call it in its own goroutine; it returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.dropClient(client)

		case req := <-h.joins:
			h.handleJoin(req)

		case req := <-h.sends:
			h.handleSend(req)

		case reply := <-h.stats:
			reply <- h.snapshotStats()
		}
	}
}

// Register adds a client to the hub, which starts its pump goroutines. It
// reports false when the hub has already shut down, in which case the caller
// still owns the connection and should close it.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// requestDisconnect asks the loop to drop the client. Safe to call more than
// once; after shutdown it is a no-op because the loop already dropped everyone.
func (h *Hub) requestDisconnect(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

func (h *Hub) requestJoin(c *Client, username, roomName string) {
	select {
	case h.joins <- joinRequest{client: c, username: username, room: roomName}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) requestSend(c *Client, text string) {
	select {
	case h.sends <- sendRequest{client: c, text: text}:
	case <-h.ctx.Done():
	}
}

// Stats reports the current client count and per-room membership. The reply
// comes from the loop itself, so a Stats call also acts as a barrier: any
// request this goroutine sent before it has been fully applied by the time
// Stats returns.
func (h *Hub) Stats() Stats {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
		return <-reply
	case <-h.ctx.Done():
		return Stats{Rooms: map[string]int{}}
	}
}

// addClient registers a connection and starts its pumps. The pumps start only
// after the client is in the registry, so a join arriving right away cannot
// beat its own registration into the loop.
func (h *Hub) addClient(c *Client) {
	if c == nil {
		slog.Warn("received nil client registration; skipping")
		return
	}

	h.clients[c] = true
	slog.Debug("client registered", "clientId", c.id, "addr", c.addr, "clients", len(h.clients))

	if c.conn == nil {
		return
	}
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()
	go func() {
		defer h.wg.Done()
		c.readPump()
	}()
}

// dropClient removes a client from the hub and its room. It is idempotent
// and safe to call re-entrantly from the fan-out path: the client leaves the
// registry before any leave notices go out, so cascading drops terminate.
func (h *Hub) dropClient(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.leaveCurrentRoom(c)
	slog.Debug("client unregistered", "clientId", c.id, "addr", c.addr, "clients", len(h.clients))
}

// handleJoin moves a client into a room, creating the room on first use.
// Leaving the old room and entering the new one happen in one loop turn, so
// no observer ever sees the client in both rooms or in neither.
func (h *Hub) handleJoin(req joinRequest) {
	c := req.client
	if !h.clients[c] {
		return
	}

	roomName := req.room
	if roomName == "" {
		roomName = h.cfg.DefaultRoom
	}

	// Rejoining the current room is just a state refresh. Only a room
	// change triggers a leave, announced under the name the old room knew
	// the client by, so the username changes hands after the notice.
	if c.room != roomName {
		h.leaveCurrentRoom(c)
	}
	c.username = req.username

	r, created := h.roomFor(roomName)
	r.addMember(c)
	c.room = r.name

	h.sendInit(c, r)
	if created {
		h.broadcastRoomList()
	}
	if !h.clients[c] {
		// The init frame overflowed the client's buffer and the join
		// collapsed into a drop; nobody should hear it joined.
		return
	}
	h.broadcastUsers(r, c)
	h.broadcastSystem(r, c.username+" joined the room", c)

	slog.Info("client joined room", "clientId", c.id, "username", c.username, "room", r.name, "members", len(r.members))
}

// handleSend records a message in the sender's room and fans it out to every
// member, including the sender. A client that has not joined a room yet has
// nowhere to send to; that is a silent no-op rather than an error.
func (h *Hub) handleSend(req sendRequest) {
	c := req.client
	if !h.clients[c] {
		return
	}
	if c.room == "" {
		slog.Debug("ignoring message from client outside any room", "clientId", c.id, "addr", c.addr)
		return
	}
	r := h.rooms[c.room]

	msg := ChatMessage{Username: c.username, Text: req.text}
	r.history.add(msg)

	frame, err := encodeMessage(msg)
	if err != nil {
		slog.Error("failed to encode message event", "room", r.name, "error", err)
		return
	}
	h.broadcastToRoom(r, frame, nil)
}

// leaveCurrentRoom removes c from its room, if any, and notifies the members
// staying behind. Empty rooms are kept around with their history intact.
func (h *Hub) leaveCurrentRoom(c *Client) {
	if c.room == "" {
		return
	}
	r := h.rooms[c.room]
	c.room = ""
	if r == nil {
		return
	}

	r.removeMember(c)
	if len(r.members) == 0 {
		return
	}
	h.broadcastUsers(r, nil)
	h.broadcastSystem(r, c.username+" left the room", nil)
}

// roomFor returns the room with the given name, creating it on first use and
// reporting whether it did. Rooms are never deleted; memory stays bounded by
// the per-room history cap.
func (h *Hub) roomFor(name string) (*room, bool) {
	if r, ok := h.rooms[name]; ok {
		return r, false
	}
	r := newRoom(name, h.cfg.HistoryLimit)
	h.rooms[name] = r
	h.roomNames = append(h.roomNames, name)
	slog.Info("room created", "room", name, "rooms", len(h.roomNames))
	return r, true
}

// sendInit delivers the full-state snapshot a client needs to render its new
// room: the room name, the global room list, current members, and history.
func (h *Hub) sendInit(c *Client, r *room) {
	frame, err := encodeInit(r.name, h.roomNames, r.usernames(), r.history.snapshot())
	if err != nil {
		slog.Error("failed to encode init event", "room", r.name, "error", err)
		return
	}
	if !h.deliver(c, frame) {
		h.dropFailed([]*Client{c})
	}
}

// deliver queues one encoded frame for a single client without ever blocking
// the loop. It reports false when the client's send buffer is full and the
// frame was not queued; clients that already left the registry count as
// delivered so stale snapshots stay harmless.
func (h *Hub) deliver(c *Client, frame []byte) bool {
	if !h.clients[c] {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// broadcastToRoom delivers frame to every member except skip, then drops
// whoever could not keep up. The drops happen after the delivery pass so
// every surviving member sees this event before the leave notices it causes.
func (h *Hub) broadcastToRoom(r *room, frame []byte, skip *Client) {
	members := make([]*Client, len(r.members))
	copy(members, r.members)

	var failed []*Client
	for _, member := range members {
		if member == skip {
			continue
		}
		if !h.deliver(member, frame) {
			failed = append(failed, member)
		}
	}
	h.dropFailed(failed)
}

// dropFailed disconnects clients whose send buffers were full during a
// broadcast. One slow or dead connection costs only that member its place;
// the broadcast itself already went out to everyone else.
func (h *Hub) dropFailed(failed []*Client) {
	for _, c := range failed {
		slog.Warn("dropping client with full send buffer", "clientId", c.id, "addr", c.addr, "username", c.username)
		h.dropClient(c)
	}
}

func (h *Hub) broadcastUsers(r *room, skip *Client) {
	frame, err := encodeUsers(r.usernames())
	if err != nil {
		slog.Error("failed to encode users event", "room", r.name, "error", err)
		return
	}
	h.broadcastToRoom(r, frame, skip)
}

func (h *Hub) broadcastSystem(r *room, notice string, skip *Client) {
	frame, err := encodeSystem(notice)
	if err != nil {
		slog.Error("failed to encode system event", "room", r.name, "error", err)
		return
	}
	h.broadcastToRoom(r, frame, skip)
}

// broadcastRoomList refreshes the room sidebar of every connected client,
// member of the newest room or not.
func (h *Hub) broadcastRoomList() {
	frame, err := encodeRooms(h.roomNames)
	if err != nil {
		slog.Error("failed to encode rooms event", "error", err)
		return
	}
	var failed []*Client
	for _, c := range h.clientSnapshot() {
		if !h.deliver(c, frame) {
			failed = append(failed, c)
		}
	}
	h.dropFailed(failed)
}

// clientSnapshot copies the registry so fan-out can mutate it mid-iteration.
func (h *Hub) clientSnapshot() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) snapshotStats() Stats {
	rooms := make(map[string]int, len(h.rooms))
	for name, r := range h.rooms {
		rooms[name] = len(r.members)
	}
	return Stats{Clients: len(h.clients), Rooms: rooms}
}

// shutdownClients drops every client as the loop exits. Closing the send
// channels makes each writePump flush its queue, send a close frame, and tear
// down its connection, which in turn unblocks the matching readPump. No leave
// notices go out; everyone is leaving.
func (h *Hub) shutdownClients() {
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	slog.Info("hub stopped", "rooms", len(h.roomNames))
}

// Shutdown stops the event loop and closes every client connection, waiting
// up to timeout for the pump goroutines to finish.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		slog.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		slog.Warn("hub shutdown timeout reached, some connections may not have closed cleanly")
		return context.DeadlineExceeded
	}
}
