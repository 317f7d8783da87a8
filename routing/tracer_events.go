package routing

import (
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

var (
	errEmptyTrace    = errors.New("trace is empty")
	errMissingConfig = errors.New("trace must start with config")
)

type eventType = uint16

const (
	traceConfig eventType = 1 + iota
	traceSend
	traceSession
	traceBeforeLink
	traceLink
	traceAfterLink
	traceCheckpoint
)

type traceEvent interface {
	Type() eventType
	New() traceEvent
	Run(*traceRunner) error
}

type ConfigTrace struct {
	Config Config `json:"config"`
}

func (c *ConfigTrace) Type() eventType {
	return traceConfig
}

func (c *ConfigTrace) New() traceEvent {
	return &ConfigTrace{}
}

func (c *ConfigTrace) Run(r *traceRunner) error {
	p, err := New(append(r.opts, WithConfig(c.Config))...)
	if err != nil {
		return err
	}
	r.p = p
	return nil
}

type SendTrace struct {
	Tick   Tick      `json:"tick"`
	User   UserID    `json:"user"`
	Target UserID    `json:"target"`
	ID     MessageID `json:"id"`
	Size   int       `json:"size,omitempty"`
}

func (s *SendTrace) Type() eventType {
	return traceSend
}

func (s *SendTrace) New() traceEvent {
	return &SendTrace{}
}

func (s *SendTrace) Run(r *traceRunner) error {
	var opts []SendOpt
	if s.Size != 0 {
		opts = append(opts, WithSize(s.Size))
	}
	r.p.OnSend(s.Tick, s.User, s.Target, s.ID, opts...)
	return nil
}

// SessionTrace carries the contacts of link only in contacts-only mode,
// as the graph is not consulted otherwise.
type SessionTrace struct {
	User     UserID   `json:"user"`
	Link     UserID   `json:"link"`
	Contacts []UserID `json:"contacts,omitempty"`
}

func (s *SessionTrace) Type() eventType {
	return traceSession
}

func (s *SessionTrace) New() traceEvent {
	return &SessionTrace{}
}

func (s *SessionTrace) Run(r *traceRunner) error {
	r.p.OnSession(s.User, s.Link, Contacts{s.Link: s.Contacts})
	return nil
}

type BeforeLinkTrace struct {
	Tick Tick `json:"tick"`
}

func (b *BeforeLinkTrace) Type() eventType {
	return traceBeforeLink
}

func (b *BeforeLinkTrace) New() traceEvent {
	return &BeforeLinkTrace{}
}

func (b *BeforeLinkTrace) Run(r *traceRunner) error {
	r.p.BeforeLink(b.Tick)
	return nil
}

type LinkTrace struct {
	Tick     Tick     `json:"tick"`
	User     UserID   `json:"user"`
	Links    []UserID `json:"links"`
	Deferred bool     `json:"deferred,omitempty"`
}

func (l *LinkTrace) Type() eventType {
	return traceLink
}

func (l *LinkTrace) New() traceEvent {
	return &LinkTrace{}
}

func (l *LinkTrace) Run(r *traceRunner) error {
	r.p.OnLink(l.Tick, l.User, l.Links, l.Deferred)
	return nil
}

type AfterLinkTrace struct{}

func (a *AfterLinkTrace) Type() eventType {
	return traceAfterLink
}

func (a *AfterLinkTrace) New() traceEvent {
	return &AfterLinkTrace{}
}

func (a *AfterLinkTrace) Run(r *traceRunner) error {
	r.p.AfterLink()
	return nil
}

type CheckpointTrace struct {
	Counts Counts `json:"counts"`
}

func (c *CheckpointTrace) Type() eventType {
	return traceCheckpoint
}

func (c *CheckpointTrace) New() traceEvent {
	return &CheckpointTrace{}
}

func (c *CheckpointTrace) Run(r *traceRunner) error {
	counts := r.p.Checkpoint()
	if diff := cmp.Diff(c.Counts, counts); len(diff) > 0 && r.assertOutputs {
		return errors.New(diff)
	}
	return nil
}

func newEventEnum() eventEnum {
	enum := eventEnum{types: map[eventType]traceEvent{}}
	enum.Register(&ConfigTrace{})
	enum.Register(&SendTrace{})
	enum.Register(&SessionTrace{})
	enum.Register(&BeforeLinkTrace{})
	enum.Register(&LinkTrace{})
	enum.Register(&AfterLinkTrace{})
	enum.Register(&CheckpointTrace{})
	return enum
}

type eventEnum struct {
	types map[eventType]traceEvent
}

func (e *eventEnum) Register(ev traceEvent) {
	e.types[ev.Type()] = ev
}

func (e *eventEnum) Decode(dec decoder) (traceEvent, error) {
	typ, raw, err := dec.next()
	if err != nil {
		return nil, err
	}
	ev := e.types[typ]
	if ev == nil {
		return nil, fmt.Errorf("type %d is not registered", typ)
	}
	obj := ev.New()
	if err := dec.unmarshal(raw, obj); err != nil {
		return nil, err
	}
	return obj, nil
}
