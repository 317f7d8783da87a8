package routing

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Format of a trace stream.
type Format string

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
	// FormatCBOR writes a sequence of CBOR items.
	FormatCBOR Format = "cbor"
)

var errUnknownFormat = errors.New("unknown trace format")

func (f Format) Validate() error {
	switch f {
	case FormatJSON, FormatCBOR:
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, string(f))
	}
}

type jsonOutput struct {
	Type  eventType       `json:"t"`
	Event json.RawMessage `json:"o"`
}

type cborOutput struct {
	Type  eventType       `cbor:"t"`
	Event cbor.RawMessage `cbor:"o"`
}

type tracer interface {
	On(traceEvent)
}

type noopTracer struct{}

func (noopTracer) On(traceEvent) {}

// Tracer records every call to the engine so that it can be replayed by RunTrace.
type Tracer struct {
	mu     sync.Mutex
	format Format
	buf    *bufio.Writer
	closer io.Closer
	err    error
}

// NewTracer creates a tracer writing to w. If w is an io.Closer it is closed by Close.
func NewTracer(w io.Writer, format Format) (*Tracer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	t := &Tracer{format: format, buf: bufio.NewWriterSize(w, 1<<16)}
	if closer, ok := w.(io.Closer); ok {
		t.closer = closer
	}
	return t, nil
}

func (t *Tracer) On(event traceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	t.err = t.write(event)
}

func (t *Tracer) write(event traceEvent) error {
	switch t.format {
	case FormatCBOR:
		raw, err := cbor.Marshal(event)
		if err != nil {
			return err
		}
		buf, err := cbor.Marshal(&cborOutput{Type: event.Type(), Event: raw})
		if err != nil {
			return err
		}
		_, err = t.buf.Write(buf)
		return err
	default:
		raw, err := json.Marshal(event)
		if err != nil {
			return err
		}
		buf, err := json.Marshal(&jsonOutput{Type: event.Type(), Event: raw})
		if err != nil {
			return err
		}
		if _, err := t.buf.Write(buf); err != nil {
			return err
		}
		return t.buf.WriteByte('\n')
	}
}

// Close flushes buffered events and returns the first error hit while tracing.
func (t *Tracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.buf.Flush(); err != nil && t.err == nil {
		t.err = err
	}
	if t.closer != nil {
		if err := t.closer.Close(); err != nil && t.err == nil {
			t.err = err
		}
	}
	return t.err
}

type decoder interface {
	next() (eventType, []byte, error)
	unmarshal([]byte, traceEvent) error
}

type jsonDecoder struct {
	dec *json.Decoder
}

func (d jsonDecoder) next() (eventType, []byte, error) {
	var out jsonOutput
	if err := d.dec.Decode(&out); err != nil {
		return 0, nil, err
	}
	return out.Type, out.Event, nil
}

func (d jsonDecoder) unmarshal(buf []byte, ev traceEvent) error {
	return json.Unmarshal(buf, ev)
}

type cborDecoder struct {
	dec *cbor.Decoder
}

func (d cborDecoder) next() (eventType, []byte, error) {
	var out cborOutput
	if err := d.dec.Decode(&out); err != nil {
		return 0, nil, err
	}
	return out.Type, out.Event, nil
}

func (d cborDecoder) unmarshal(buf []byte, ev traceEvent) error {
	return cbor.Unmarshal(buf, ev)
}

func newDecoder(r io.Reader, format Format) (decoder, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	switch format {
	case FormatJSON:
		return jsonDecoder{dec: json.NewDecoder(br)}, nil
	case FormatCBOR:
		return cborDecoder{dec: cbor.NewDecoder(br)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, string(format))
	}
}

type traceRunner struct {
	opts          []Opt
	p             *Protocol
	assertOutputs bool
}

// RunTrace replays a trace recorded by Tracer and returns the resulting engine.
// Recorded checkpoints are compared with the replayed log.
func RunTrace(r io.Reader, format Format, opts ...Opt) (*Protocol, error) {
	dec, err := newDecoder(r, format)
	if err != nil {
		return nil, err
	}
	enum := newEventEnum()
	runner := &traceRunner{opts: opts, assertOutputs: true}
	for i := 0; ; i++ {
		ev, err := enum.Decode(dec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if runner.p == nil {
					return nil, errEmptyTrace
				}
				return runner.p, nil
			}
			return nil, fmt.Errorf("decode event %d: %w", i, err)
		}
		if runner.p == nil && ev.Type() != traceConfig {
			return nil, fmt.Errorf("event %d: %w", i, errMissingConfig)
		}
		if err := ev.Run(runner); err != nil {
			return nil, fmt.Errorf("run event %d: %w", i, err)
		}
	}
}
