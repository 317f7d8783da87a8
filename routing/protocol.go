// Package routing implements a store-carry-forward routing engine for
// delay tolerant networks.
//
// Users carry messages and hand copies to every user they are linked with,
// bounded by a replication budget per carrier and a hop budget per path.
// Before links are processed on a tick, messages destined to a session
// partner are folded into batches that are routed as one unit and unpacked
// at the target.
//
// The engine is driven externally, on every tick:
//
//	p.BeforeLink(t)
//	for each contact (user, link):
//		p.OnSession(user, link, graph)
//		p.OnLink(t, user, links, deferred)
//
// Protocol is not safe for concurrent use.
package routing

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"
)

type Opt func(*Protocol)

func WithLogger(logger *zap.Logger) Opt {
	return func(p *Protocol) {
		p.logger = logger
	}
}

func WithConfig(cfg Config) Opt {
	return func(p *Protocol) {
		p.cfg = cfg
	}
}

// WithPolicy overrides the policy selected by Config.Policy.
func WithPolicy(policy Policy) Opt {
	return func(p *Protocol) {
		p.policy = policy
	}
}

func WithTracer(tracer *Tracer) Opt {
	return func(p *Protocol) {
		p.tracer = tracer
	}
}

type sendOpts struct {
	size int
}

type SendOpt func(*sendOpts)

// WithSize sets the size of the originated message.
func WithSize(size int) SendOpt {
	return func(o *sendOpts) {
		o.size = size
	}
}

type Protocol struct {
	logger *zap.Logger
	cfg    Config
	policy Policy
	tracer tracer

	users map[UserID]*userState
	// order lists users in the order they were first referenced.
	order []UserID
	log   *Log
}

func New(opts ...Opt) (*Protocol, error) {
	p := &Protocol{
		logger: zap.NewNop(),
		cfg:    DefaultConfig(),
		tracer: noopTracer{},
		users:  map[UserID]*userState{},
		log:    newLog(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.policy == nil {
		policy, err := PolicyByName(p.cfg.Policy)
		if err != nil {
			return nil, err
		}
		p.policy = policy
	}
	p.cfg.Policy = p.policy.Name()
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	p.logger.Debug("routing initialized", zap.Object("config", &p.cfg))
	p.tracer.On(&ConfigTrace{Config: p.cfg})
	return p, nil
}

func (p *Protocol) user(id UserID) *userState {
	st, exist := p.users[id]
	if !exist {
		st = newUserState(p.cfg.RecvFilterSize)
		p.users[id] = st
		p.order = append(p.order, id)
	}
	return st
}

func (p *Protocol) store(user UserID, id MessageID, e *entry) bool {
	return p.user(user).admit(id, e)
}

// Log returns the audit trail. It is updated by subsequent calls.
func (p *Protocol) Log() *Log {
	return p.log
}

// OnSend originates a plain message from user to target.
func (p *Protocol) OnSend(t Tick, user, target UserID, id MessageID, opts ...SendOpt) {
	var o sendOpts
	for _, opt := range opts {
		opt(&o)
	}
	p.tracer.On(&SendTrace{Tick: t, User: user, Target: target, ID: id, Size: o.size})
	msg := &Message{
		ID:        id,
		Kind:      KindPlain,
		Source:    user,
		Target:    target,
		Timestamp: t,
		Size:      o.size,
	}
	p.store(user, id, &entry{msg: msg})
	// a message is not folded into a batch before it was forwarded once
	p.user(user).batched[id] = struct{}{}
	p.log.addSent(id)
	sentCounter.Inc()
}

// OnSession updates session sets on contact between user and link
// according to the configured policy.
func (p *Protocol) OnSession(user, link UserID, graph ContactGraph) {
	var contacts []UserID
	allowed := func(UserID) bool { return true }
	if p.cfg.ContactsOnly {
		contacts = graph.Contacts(link)
		allowed = func(member UserID) bool {
			return slices.Contains(contacts, member)
		}
	}
	p.tracer.On(&SessionTrace{User: user, Link: link, Contacts: contacts})
	p.policy.Propagate(sessionTable{p}, user, link, allowed)
}

// BeforeLink admits copies staged on the previous tick and folds carried
// messages into batches for every user.
func (p *Protocol) BeforeLink(t Tick) {
	p.tracer.On(&BeforeLinkTrace{Tick: t})
	p.flush()
	for _, user := range slices.Clone(p.order) {
		p.batchUser(t, user)
	}
}

// OnLink attempts to forward every message carried by user to each of links.
// If deferred is true copies are staged at receivers and admitted on the
// next BeforeLink or AfterLink.
func (p *Protocol) OnLink(t Tick, user UserID, links []UserID, deferred bool) {
	p.tracer.On(&LinkTrace{Tick: t, User: user, Links: links, Deferred: deferred})
	carried := p.user(user).carried
	for _, link := range links {
		for _, id := range carried.ids() {
			p.cast(t, user, link, id, carried, deferred)
		}
	}
}

// AfterLink admits every staged copy.
func (p *Protocol) AfterLink() {
	p.tracer.On(&AfterLinkTrace{})
	p.flush()
}

// Checkpoint returns counts of the log and records them in the trace.
func (p *Protocol) Checkpoint() Counts {
	counts := p.log.Counts()
	p.tracer.On(&CheckpointTrace{Counts: counts})
	return counts
}

// InSession is true if member belongs to the session set of owner.
func (p *Protocol) InSession(owner, member UserID) bool {
	st, exist := p.users[owner]
	return exist && st.inSession(member)
}

// Carried returns ids carried by user in insertion order.
func (p *Protocol) Carried(user UserID) []MessageID {
	st, exist := p.users[user]
	if !exist {
		return nil
	}
	return st.carried.ids()
}

func (p *Protocol) flush() {
	for _, user := range p.order {
		st := p.users[user]
		if st.pending.len() == 0 {
			continue
		}
		pending := st.pending
		st.pending = newCarrySet()
		for _, id := range pending.ids() {
			e, _ := pending.get(id)
			st.admit(id, e)
		}
	}
}

func (p *Protocol) cast(t Tick, user, link UserID, id MessageID, carried *carrySet, deferred bool) {
	e, exist := carried.get(id)
	if !exist {
		return
	}
	if slices.Contains(e.from, link) {
		castBounced.Inc()
		return
	}
	// the entry stays usable for the rest of this attempt after eviction
	if e.rep+1 > float64(p.cfg.ReplicationLimit) {
		carried.remove(id)
		evictReplication.Inc()
	} else {
		e.rep++
	}
	if link == e.msg.Target {
		castDelivered.Inc()
		p.deliver(t, e.msg, e.hops, nil)
		return
	}
	if e.length()+1 > p.cfg.HopLimit {
		carried.remove(id)
		p.log.addDrop(id)
		castDropped.Inc()
		evictHops.Inc()
		p.logger.Debug("hop limit reached",
			zap.Uint32("user", uint32(user)),
			zap.Object("message", e.msg),
			zap.Int("hops", e.length()),
		)
		return
	}
	copied := &entry{
		msg:  e.msg,
		from: []UserID{user},
		hops: slices.Concat(e.hops, []UserID{link}),
		pad:  e.pad,
	}
	if deferred {
		pending := p.user(link).pending
		if !pending.has(id) {
			pending.put(id, copied)
		}
		castStaged.Inc()
		return
	}
	p.store(link, id, copied)
	castRelayed.Inc()
}

type candidate struct {
	member BatchMember
	from   []UserID
	length float64
	rep    float64
}

type group struct {
	target  UserID
	members []candidate
}

func (p *Protocol) batchUser(t Tick, user UserID) {
	st := p.user(user)
	var (
		groups  []*group
		index   = map[UserID]*group{}
		carried = newCarrySet()
	)
	for _, id := range st.carried.ids() {
		e, _ := st.carried.get(id)
		target := e.msg.Target
		if !st.inSession(target) || st.isBatched(id) {
			carried.put(id, e)
			continue
		}
		g, exist := index[target]
		if !exist {
			g = &group{target: target}
			index[target] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, candidate{
			member: BatchMember{Message: e.msg, Hops: e.hops},
			from:   e.from,
			length: float64(e.length()),
			rep:    e.rep,
		})
		st.batched[id] = struct{}{}
	}
	if len(groups) == 0 {
		return
	}
	for _, g := range groups {
		for _, chunk := range split(p.cfg.batchLimit(), g.members) {
			e := p.newBatch(t, user, g.target, chunk)
			carried.put(e.msg.ID, e)
			st.seen[e.msg.ID] = struct{}{}
			st.batched[e.msg.ID] = struct{}{}
			p.log.addBatch(e.msg)
			batchCounter.Inc()
			batchSize.Observe(float64(len(chunk)))
			p.logger.Debug("created batch",
				zap.Uint32("user", uint32(user)),
				zap.Object("batch", e.msg),
				zap.Int("pad", e.pad),
				zap.Float64("rep", e.rep),
			)
		}
	}
	st.carried = carried
}

func (p *Protocol) newBatch(t Tick, user, target UserID, chunk []candidate) *entry {
	var (
		ids     = make([]string, 0, len(chunk))
		members = make([]BatchMember, 0, len(chunk))
		from    []UserID
		lengths = make([]float64, 0, len(chunk))
		reps    = make([]float64, 0, len(chunk))
		size    int
	)
	for _, c := range chunk {
		ids = append(ids, string(c.member.Message.ID))
		members = append(members, c.member)
		from = append(from, c.from...)
		lengths = append(lengths, c.length)
		reps = append(reps, c.rep)
		size += c.member.Message.weight()
	}
	slices.Sort(ids)
	msg := &Message{
		ID:        MessageID(fmt.Sprintf("%d:[%s]", user, strings.Join(ids, ","))),
		Kind:      KindBatch,
		Creator:   user,
		Target:    target,
		Timestamp: t,
		Size:      size,
		Batch:     members,
	}
	return &entry{
		msg:  msg,
		from: from,
		pad:  int(math.Round(p.cfg.HopReducer.Fold(lengths))),
		rep:  p.cfg.RepReducer.Fold(reps),
	}
}

// deliver unpacks msg at its target. hops are the relays traversed by msg,
// encs the batches that enclosed it, innermost first.
func (p *Protocol) deliver(t Tick, msg *Message, hops []UserID, encs []*Message) {
	recv := p.user(msg.Target).recv
	if recv.Contains(msg.ID) {
		return
	}
	if msg.Size > p.cfg.RecvFilterThreshold {
		recv.Add(msg.ID, struct{}{})
	}
	if msg.Kind == KindBatch {
		trail := append([]*Message{msg}, encs...)
		for _, member := range msg.Batch {
			p.deliver(t, member.Message, slices.Concat(member.Hops, hops), trail)
		}
		return
	}
	if !p.log.addDelivery(t, msg, hops, encs) {
		deliveryDuplicate.Inc()
		return
	}
	deliveryFirst.Inc()
	p.logger.Debug("delivered",
		zap.Object("message", msg),
		zap.Uint32("received", uint32(t)),
		zap.Int("hops", len(hops)),
		zap.Int("batches", len(encs)),
	)
}

type sessionTable struct {
	p *Protocol
}

func (s sessionTable) Members(owner UserID) []UserID {
	return s.p.user(owner).sessionMembers()
}

func (s sessionTable) Join(owner, member UserID) {
	s.p.user(owner).sessions[member] = struct{}{}
}
