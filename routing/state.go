package routing

import (
	"cmp"
	"slices"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type entry struct {
	msg *Message
	// from lists the users the message must not be sent back to.
	from []UserID
	// hops are the relays traversed by this copy.
	hops []UserID
	// pad counts relays accounted to a batch on creation that have no identity.
	pad int
	rep float64
}

func (e *entry) length() int {
	return e.pad + len(e.hops)
}

type slot struct {
	entry *entry
	seq   uint64
}

// carrySet maps ids to entries and remembers insertion order.
type carrySet struct {
	entries map[MessageID]slot
	seq     uint64
}

func newCarrySet() *carrySet {
	return &carrySet{entries: map[MessageID]slot{}}
}

func (c *carrySet) get(id MessageID) (*entry, bool) {
	s, ok := c.entries[id]
	return s.entry, ok
}

func (c *carrySet) has(id MessageID) bool {
	_, ok := c.entries[id]
	return ok
}

// put inserts or replaces the entry. Replacing keeps the original position.
func (c *carrySet) put(id MessageID, e *entry) {
	if s, ok := c.entries[id]; ok {
		s.entry = e
		c.entries[id] = s
		return
	}
	c.seq++
	c.entries[id] = slot{entry: e, seq: c.seq}
}

func (c *carrySet) remove(id MessageID) {
	delete(c.entries, id)
}

func (c *carrySet) len() int {
	return len(c.entries)
}

// ids returns a snapshot of the ids in insertion order.
func (c *carrySet) ids() []MessageID {
	type ordered struct {
		id  MessageID
		seq uint64
	}
	all := make([]ordered, 0, len(c.entries))
	for id, s := range c.entries {
		all = append(all, ordered{id: id, seq: s.seq})
	}
	slices.SortFunc(all, func(a, b ordered) int {
		return cmp.Compare(a.seq, b.seq)
	})
	rst := make([]MessageID, len(all))
	for i := range all {
		rst[i] = all[i].id
	}
	return rst
}

type userState struct {
	carried *carrySet
	pending *carrySet
	// seen holds every id ever admitted to carried.
	seen    map[MessageID]struct{}
	batched map[MessageID]struct{}
	// recv suppresses repeated unpacking of large messages at this target.
	recv     *simplelru.LRU[MessageID, struct{}]
	sessions map[UserID]struct{}
}

func newUserState(recvSize int) *userState {
	recv, err := simplelru.NewLRU[MessageID, struct{}](recvSize, nil)
	if err != nil {
		panic(err)
	}
	return &userState{
		carried:  newCarrySet(),
		pending:  newCarrySet(),
		seen:     map[MessageID]struct{}{},
		batched:  map[MessageID]struct{}{},
		recv:     recv,
		sessions: map[UserID]struct{}{},
	}
}

// admit stores the entry unless the id is carried or was carried before.
func (s *userState) admit(id MessageID, e *entry) bool {
	if s.carried.has(id) {
		return false
	}
	if _, exist := s.seen[id]; exist {
		return false
	}
	s.carried.put(id, e)
	s.seen[id] = struct{}{}
	return true
}

func (s *userState) isBatched(id MessageID) bool {
	_, exist := s.batched[id]
	return exist
}

func (s *userState) inSession(member UserID) bool {
	_, exist := s.sessions[member]
	return exist
}

// sessionMembers returns the session set ordered by identity.
func (s *userState) sessionMembers() []UserID {
	members := make([]UserID, 0, len(s.sessions))
	for member := range s.sessions {
		members = append(members, member)
	}
	slices.Sort(members)
	return members
}
