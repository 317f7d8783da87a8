package routing

import (
	"go.uber.org/zap/zapcore"
)

// UserID identifies a participant of the contact graph.
type UserID uint32

// MessageID is a globally unique message identity.
type MessageID string

// Tick is a simulated time step.
type Tick uint32

// Kind distinguishes plain messages from batches.
type Kind uint8

const (
	KindPlain Kind = iota
	KindBatch
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// BatchMember is a message folded into a batch together with the relays
// it traversed before folding.
type BatchMember struct {
	Message *Message `json:"message"`
	Hops    []UserID `json:"hops"`
}

// Message is either a plain message originated by Source or a batch created
// by Creator. Batches are routed as a single unit and unpacked at Target.
type Message struct {
	ID        MessageID     `json:"id"`
	Kind      Kind          `json:"kind"`
	Source    UserID        `json:"source"`
	Creator   UserID        `json:"creator"`
	Target    UserID        `json:"target"`
	Timestamp Tick          `json:"timestamp"`
	Size      int           `json:"size"`
	Batch     []BatchMember `json:"batch,omitempty"`
}

// weight is the size contribution of the message to an enclosing batch.
// Plain messages without explicit size weigh 1.
func (m *Message) weight() int {
	if m.Size == 0 {
		return 1
	}
	return m.Size
}

func (m *Message) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("id", string(m.ID))
	encoder.AddString("kind", m.Kind.String())
	if m.Kind == KindBatch {
		encoder.AddUint32("creator", uint32(m.Creator))
		encoder.AddInt("members", len(m.Batch))
	} else {
		encoder.AddUint32("source", uint32(m.Source))
	}
	encoder.AddUint32("target", uint32(m.Target))
	encoder.AddUint32("timestamp", uint32(m.Timestamp))
	encoder.AddInt("size", m.Size)
	return nil
}

// ContactGraph is the social graph consulted in contacts-only mode.
type ContactGraph interface {
	Contacts(UserID) []UserID
}

// Contacts is an adjacency list implementation of ContactGraph.
type Contacts map[UserID][]UserID

func (c Contacts) Contacts(user UserID) []UserID {
	return c[user]
}
