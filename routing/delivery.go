package routing

import (
	"go.uber.org/zap/zapcore"
)

// Delivery records the first arrival of a plain message at its target.
type Delivery struct {
	ID       MessageID `json:"id"`
	Source   UserID    `json:"source"`
	Target   UserID    `json:"target"`
	Size     int       `json:"size"`
	Sent     Tick      `json:"sent"`
	Received Tick      `json:"received"`
	// Hops are the relays between source and target.
	Hops []UserID `json:"hops"`
	// Batches enclosed the message on its final leg, innermost first.
	Batches []*Message `json:"batches,omitempty"`
}

// Latency is the number of ticks between origination and delivery.
func (d *Delivery) Latency() int {
	return int(d.Received) - int(d.Sent)
}

// Counts summarizes the log.
type Counts struct {
	Sent     int `json:"sent"`
	Received int `json:"received"`
	Dropped  int `json:"dropped"`
	Batches  int `json:"batches"`
}

func (c Counts) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddInt("sent", c.Sent)
	encoder.AddInt("received", c.Received)
	encoder.AddInt("dropped", c.Dropped)
	encoder.AddInt("batches", c.Batches)
	return nil
}

// Log is the audit trail of a run. Received and dropped ids are recorded once.
type Log struct {
	sent       []MessageID
	recv       map[MessageID]struct{}
	deliveries []Delivery
	drop       map[MessageID]struct{}
	batches    []*Message
}

func newLog() *Log {
	return &Log{
		recv: map[MessageID]struct{}{},
		drop: map[MessageID]struct{}{},
	}
}

func (l *Log) addSent(id MessageID) {
	l.sent = append(l.sent, id)
}

// addDelivery returns false if the message was delivered before.
func (l *Log) addDelivery(t Tick, msg *Message, hops []UserID, encs []*Message) bool {
	if _, exist := l.recv[msg.ID]; exist {
		return false
	}
	l.recv[msg.ID] = struct{}{}
	l.deliveries = append(l.deliveries, Delivery{
		ID:       msg.ID,
		Source:   msg.Source,
		Target:   msg.Target,
		Size:     msg.Size,
		Sent:     msg.Timestamp,
		Received: t,
		Hops:     hops,
		Batches:  encs,
	})
	return true
}

func (l *Log) addDrop(id MessageID) {
	l.drop[id] = struct{}{}
}

func (l *Log) addBatch(msg *Message) {
	l.batches = append(l.batches, msg)
}

// Sent returns originated ids in order of origination.
func (l *Log) Sent() []MessageID {
	return l.sent
}

func (l *Log) Received(id MessageID) bool {
	_, exist := l.recv[id]
	return exist
}

func (l *Log) Dropped(id MessageID) bool {
	_, exist := l.drop[id]
	return exist
}

// InFlight is true for ids neither delivered nor dropped.
func (l *Log) InFlight(id MessageID) bool {
	return !l.Received(id) && !l.Dropped(id)
}

// Deliveries returns delivery records in order of arrival.
// The returned slice must not be modified.
func (l *Log) Deliveries() []Delivery {
	return l.deliveries
}

// Batches returns created batches in order of creation.
func (l *Log) Batches() []*Message {
	return l.batches
}

func (l *Log) Counts() Counts {
	return Counts{
		Sent:     len(l.sent),
		Received: len(l.recv),
		Dropped:  len(l.drop),
		Batches:  len(l.batches),
	}
}
