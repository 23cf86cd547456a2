package server

import "github.com/samber/lo"

// room is one named chat room: the clients currently joined, in join order,
// plus the bounded message history. Rooms are created on first join and kept
// for the life of the process even when empty; only the hub loop touches them.
type room struct {
	name    string
	members []*Client
	history *history
}

func newRoom(name string, historyLimit int) *room {
	return &room{
		name:    name,
		history: newHistory(historyLimit),
	}
}

// addMember appends c to the member list. Adding a current member is a no-op
// so a repeated join cannot double-count membership.
func (r *room) addMember(c *Client) {
	if r.hasMember(c) {
		return
	}
	r.members = append(r.members, c)
}

// removeMember deletes c, keeping the join order of the remaining members.
func (r *room) removeMember(c *Client) {
	for i, member := range r.members {
		if member == c {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

func (r *room) hasMember(c *Client) bool {
	return lo.Contains(r.members, c)
}

// usernames projects the current members to their display names, in join order.
func (r *room) usernames() []string {
	return lo.Map(r.members, func(c *Client, _ int) string {
		return c.username
	})
}
