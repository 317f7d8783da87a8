// Package stats reduces a routing log to the summary reported for a run.
package stats

import (
	"math"

	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/meshmessaging/usenix23/routing"
)

// Sketch describes a sample by its population moments and range.
// Values are rounded to three decimals. A sketch of no values is zero.
type Sketch struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func NewSketch(values []float64) Sketch {
	if len(values) == 0 {
		return Sketch{}
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	return Sketch{
		Count:  len(values),
		Mean:   round(mean),
		StdDev: round(math.Sqrt(math.Max(variance, 0))),
		Min:    round(floats.Min(values)),
		Max:    round(floats.Max(values)),
	}
}

func (s Sketch) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddInt("count", s.Count)
	encoder.AddFloat64("mean", s.Mean)
	encoder.AddFloat64("stddev", s.StdDev)
	encoder.AddFloat64("min", s.Min)
	encoder.AddFloat64("max", s.Max)
	return nil
}

func round(x float64) float64 {
	return math.Round(x*1e3) / 1e3
}

type Summary struct {
	Sent         int     `json:"sent"`
	Received     int     `json:"received"`
	DeliveryRate float64 `json:"delivery-rate"`
	// HopLimited counts sent messages dropped by the hop limit and never received.
	HopLimited int `json:"hop-limited"`
	// InFlight counts sent messages neither received nor dropped.
	InFlight int    `json:"in-flight"`
	Hops     Sketch `json:"hops"`
	Latency  Sketch `json:"latency"`
	// Reencryptions is the number of created batches.
	Reencryptions int `json:"reencryptions"`
	// ReencryptionsReceived is the number of distinct batches that enclosed a delivery.
	ReencryptionsReceived int `json:"reencryptions-received"`
	// PerReceived describes the number of enclosing batches per delivery.
	PerReceived Sketch `json:"per-received"`
}

func (s *Summary) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddInt("sent", s.Sent)
	encoder.AddInt("received", s.Received)
	encoder.AddFloat64("delivery rate", s.DeliveryRate)
	encoder.AddInt("reaching hop limit", s.HopLimited)
	encoder.AddInt("still on the way", s.InFlight)
	encoder.AddObject("hops", s.Hops)
	encoder.AddObject("latency", s.Latency)
	encoder.AddInt("reencryptions", s.Reencryptions)
	encoder.AddInt("reencryptions for received", s.ReencryptionsReceived)
	encoder.AddObject("reencryptions per received", s.PerReceived)
	return nil
}

// Summarize reduces log for the messages in sent.
func Summarize(sent []routing.MessageID, log *routing.Log) Summary {
	var (
		summary = Summary{Sent: len(sent), Reencryptions: len(log.Batches())}
		hops    []float64
		latency []float64
		per     []float64
		encs    = map[routing.MessageID]struct{}{}
	)
	for _, id := range sent {
		switch {
		case log.Received(id):
			summary.Received++
		case log.Dropped(id):
			summary.HopLimited++
		default:
			summary.InFlight++
		}
	}
	if summary.Sent > 0 {
		summary.DeliveryRate = round(float64(summary.Received) / float64(summary.Sent))
	}
	for _, d := range log.Deliveries() {
		hops = append(hops, float64(len(d.Hops)))
		latency = append(latency, float64(d.Latency()))
		per = append(per, float64(len(d.Batches)))
		for _, batch := range d.Batches {
			encs[batch.ID] = struct{}{}
		}
	}
	summary.Hops = NewSketch(hops)
	summary.Latency = NewSketch(latency)
	summary.PerReceived = NewSketch(per)
	summary.ReencryptionsReceived = len(encs)
	return summary
}
