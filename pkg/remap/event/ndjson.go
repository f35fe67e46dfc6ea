package event

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/randalmurphal/remap/pkg/remap/value"
)

// maxLineBytes bounds a single NDJSON line.
const maxLineBytes = 1 << 20

// Decoder reads events from newline-delimited JSON, one object per line.
//
// A line whose object has a "fields" key is a full event envelope as
// written by Encoder; its id and timestamp are kept when present and
// generated otherwise. Any other object is taken as the fields
// themselves, wrapped in a fresh event. Blank lines are skipped.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{scanner: sc}
}

// Decode returns the next event, or io.EOF when the input is exhausted.
//
// An undecodable line is returned as a *LineError; the Decoder stays
// usable and the next call moves on to the following line. Any other
// error is terminal.
func (d *Decoder) Decode() (*Event, error) {
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		evt, err := decodeLine(raw)
		if err != nil {
			return nil, &LineError{Line: d.line, Err: err}
		}
		return evt, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// LineError reports a single input line that could not be decoded.
type LineError struct {
	// Line is the 1-based line number in the input.
	Line int
	// Err is the decode failure.
	Err error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LineError) Unwrap() error {
	return e.Err
}

// envelope mirrors Event with decodable field types.
type envelope struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func decodeLine(raw []byte) (*Event, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	fieldsRaw, isEnvelope := probe["fields"]
	if !isEnvelope {
		fieldsRaw = raw
	}

	fields, err := decodeFields(fieldsRaw)
	if err != nil {
		return nil, err
	}

	var opts []Option
	if isEnvelope {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("invalid event envelope: %w", err)
		}
		if env.ID != "" {
			opts = append(opts, WithID(env.ID))
		}
		if !env.Timestamp.IsZero() {
			opts = append(opts, WithTimestamp(env.Timestamp))
		}
	}
	return New(fields, opts...), nil
}

func decodeFields(raw []byte) (value.Object, error) {
	v, err := value.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(value.Object)
	if !ok {
		return nil, errors.New("event fields must be a JSON object")
	}
	return obj, nil
}

// Encoder writes events as newline-delimited JSON envelopes, the shape
// Decoder reads back.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Encode writes evt as one NDJSON line.
func (e *Encoder) Encode(evt *Event) error {
	return e.enc.Encode(evt)
}
