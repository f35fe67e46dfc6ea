package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FromAny converts a Go value into a Value.
//
// Supported inputs: nil, bool, string, all signed integer widths, float32,
// float64, json.Number, time.Time, []any, map[string]any, and Value itself.
// Numbers decoded from JSON should arrive as json.Number so that integer and
// float inputs stay distinct; see FromJSON.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Integer(val), nil
	case int32:
		return Integer(val), nil
	case int64:
		return Integer(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Float(f), nil
	case time.Time:
		return Timestamp{Time: val}, nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, err
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for key, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, err
			}
			obj[key] = conv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("cannot represent %T as a value", v)
	}
}

// FromJSON decodes a JSON document into a Value.
// Numbers without a fractional part decode as Integer, others as Float.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return FromAny(raw)
}

// ToAny converts a Value back to plain Go data: nil, bool, int64, float64,
// string, time.Time, []any, and map[string]any.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(val)
	case Integer:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case Timestamp:
		return val.Time
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for key, elem := range val {
			out[key] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON implements json.Marshaler.
func (v Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(v)) }

// MarshalJSON implements json.Marshaler.
func (v Integer) MarshalJSON() ([]byte, error) { return json.Marshal(int64(v)) }

// MarshalJSON implements json.Marshaler.
func (v Float) MarshalJSON() ([]byte, error) { return json.Marshal(float64(v)) }

// MarshalJSON implements json.Marshaler.
func (v String) MarshalJSON() ([]byte, error) { return json.Marshal(string(v)) }

// MarshalJSON implements json.Marshaler.
// Timestamps encode as RFC 3339 strings with nanosecond precision.
func (v Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.UTC().Format(time.RFC3339Nano))
}

// MarshalJSON implements json.Marshaler.
func (v Array) MarshalJSON() ([]byte, error) { return json.Marshal([]Value(v)) }

// MarshalJSON implements json.Marshaler.
func (v Object) MarshalJSON() ([]byte, error) { return json.Marshal(map[string]Value(v)) }

// UnmarshalJSON implements json.Unmarshaler via FromJSON, so structs
// holding an Object round-trip through encoding/json.
func (v *Object) UnmarshalJSON(data []byte) error {
	decoded, err := FromJSON(data)
	if err != nil {
		return err
	}
	obj, ok := decoded.(Object)
	if !ok {
		return fmt.Errorf("cannot unmarshal %s into an object", decoded.Kind())
	}
	*v = obj
	return nil
}
