package firestore

import (
	"fmt"
	"strconv"
	"time"
)

// Value is the tagged union Firestore uses for every field. Exactly one
// member is set.
type Value struct {
	NullValue      *string     `json:"nullValue,omitempty"`
	BooleanValue   *bool       `json:"booleanValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"`
	DoubleValue    *float64    `json:"doubleValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	StringValue    *string     `json:"stringValue,omitempty"`
	ArrayValue     *ArrayValue `json:"arrayValue,omitempty"`
	MapValue       *MapValue   `json:"mapValue,omitempty"`
}

// ArrayValue is an ordered list of values.
type ArrayValue struct {
	Values []Value `json:"values,omitempty"`
}

// MapValue is a nested document.
type MapValue struct {
	Fields map[string]Value `json:"fields,omitempty"`
}

const nullSentinel = "NULL_VALUE"

// EncodeValue converts a plain Go value into a Firestore value. Supported
// inputs are the types JSON decoding and the gateway's own services
// produce: nil, bool, string, ints, floats, time.Time, []any,
// []string and map[string]any.
func EncodeValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		s := nullSentinel
		return Value{NullValue: &s}, nil
	case bool:
		return Value{BooleanValue: &t}, nil
	case string:
		return Value{StringValue: &t}, nil
	case int:
		s := strconv.FormatInt(int64(t), 10)
		return Value{IntegerValue: &s}, nil
	case int32:
		s := strconv.FormatInt(int64(t), 10)
		return Value{IntegerValue: &s}, nil
	case int64:
		s := strconv.FormatInt(t, 10)
		return Value{IntegerValue: &s}, nil
	case float32:
		f := float64(t)
		return Value{DoubleValue: &f}, nil
	case float64:
		return Value{DoubleValue: &t}, nil
	case time.Time:
		s := t.UTC().Format(time.RFC3339Nano)
		return Value{TimestampValue: &s}, nil
	case []string:
		arr := make([]Value, 0, len(t))
		for _, item := range t {
			s := item
			arr = append(arr, Value{StringValue: &s})
		}
		return Value{ArrayValue: &ArrayValue{Values: arr}}, nil
	case []any:
		arr := make([]Value, 0, len(t))
		for _, item := range t {
			enc, err := EncodeValue(item)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, enc)
		}
		return Value{ArrayValue: &ArrayValue{Values: arr}}, nil
	case map[string]any:
		fields, err := EncodeFields(t)
		if err != nil {
			return Value{}, err
		}
		return Value{MapValue: &MapValue{Fields: fields}}, nil
	default:
		return Value{}, fmt.Errorf("unsupported field type %T", v)
	}
}

// EncodeFields converts a plain document into Firestore fields.
func EncodeFields(doc map[string]any) (map[string]Value, error) {
	fields := make(map[string]Value, len(doc))
	for k, v := range doc {
		enc, err := EncodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = enc
	}
	return fields, nil
}

// DecodeValue converts a Firestore value back into a plain Go value.
// Integers come back as int64 and timestamps as time.Time.
func DecodeValue(v Value) any {
	switch {
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return *v.IntegerValue
		}
		return n
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.TimestampValue != nil:
		ts, err := time.Parse(time.RFC3339Nano, *v.TimestampValue)
		if err != nil {
			return *v.TimestampValue
		}
		return ts
	case v.StringValue != nil:
		return *v.StringValue
	case v.ArrayValue != nil:
		arr := make([]any, 0, len(v.ArrayValue.Values))
		for _, item := range v.ArrayValue.Values {
			arr = append(arr, DecodeValue(item))
		}
		return arr
	case v.MapValue != nil:
		return DecodeFields(v.MapValue.Fields)
	default:
		return nil
	}
}

// DecodeFields converts Firestore fields back into a plain document.
func DecodeFields(fields map[string]Value) map[string]any {
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = DecodeValue(v)
	}
	return doc
}
