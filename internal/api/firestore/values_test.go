package firestore

import (
	"reflect"
	"testing"
	"time"
)

func TestEncodeDecodeFields(t *testing.T) {
	created := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)

	doc := map[string]any{
		"userId":   "user-1",
		"atsScore": int64(82),
		"accuracy": 91.5,
		"passed":   true,
		"skills":   []any{"Go", "SQL"},
		"parsedData": map[string]any{
			"name":  "John Doe",
			"email": "john@example.com",
		},
		"notes":     nil,
		"createdAt": created,
	}

	fields, err := EncodeFields(doc)
	if err != nil {
		t.Fatalf("EncodeFields() error = %v", err)
	}

	if got := fields["userId"].StringValue; got == nil || *got != "user-1" {
		t.Errorf("userId encoded as %+v, want stringValue user-1", fields["userId"])
	}
	if got := fields["atsScore"].IntegerValue; got == nil || *got != "82" {
		t.Errorf("atsScore encoded as %+v, want integerValue 82", fields["atsScore"])
	}
	if got := fields["createdAt"].TimestampValue; got == nil {
		t.Errorf("createdAt encoded as %+v, want timestampValue", fields["createdAt"])
	}

	decoded := DecodeFields(fields)

	want := map[string]any{
		"userId":   "user-1",
		"atsScore": int64(82),
		"accuracy": 91.5,
		"passed":   true,
		"skills":   []any{"Go", "SQL"},
		"parsedData": map[string]any{
			"name":  "John Doe",
			"email": "john@example.com",
		},
		"notes":     nil,
		"createdAt": created,
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("decoded = %#v, want %#v", decoded, want)
	}
}

func TestEncodeValue_IntWidths(t *testing.T) {
	for _, v := range []any{42, int32(42), int64(42)} {
		enc, err := EncodeValue(v)
		if err != nil {
			t.Fatalf("EncodeValue(%T) error = %v", v, err)
		}
		if enc.IntegerValue == nil || *enc.IntegerValue != "42" {
			t.Errorf("EncodeValue(%T) = %+v, want integerValue 42", v, enc)
		}
	}
}

func TestEncodeValue_Unsupported(t *testing.T) {
	if _, err := EncodeValue(struct{ X int }{1}); err == nil {
		t.Error("EncodeValue(struct) succeeded, want error")
	}
	if _, err := EncodeFields(map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("EncodeFields(chan) succeeded, want error")
	}
}

func TestEncodeValue_StringSlice(t *testing.T) {
	enc, err := EncodeValue([]string{"a", "b"})
	if err != nil {
		t.Fatalf("EncodeValue() error = %v", err)
	}
	if enc.ArrayValue == nil || len(enc.ArrayValue.Values) != 2 {
		t.Fatalf("EncodeValue([]string) = %+v, want 2-element array", enc)
	}

	// []string decodes back as []any; the gateway only writes, reads are
	// generic documents.
	decoded := DecodeValue(enc)
	if !reflect.DeepEqual(decoded, []any{"a", "b"}) {
		t.Errorf("decoded = %#v, want [a b]", decoded)
	}
}
