package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// FieldError lists record fields that did not fit the target type. Every other
// field was decoded.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return "fields did not decode: " + strings.Join(e.Fields, ", ")
}

// ToRecord converts a typed entity into its stored representation.
func ToRecord(v interface{}) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// FromRecord decodes a stored record into the struct out points to. Records
// are free-form JSON, so values are converted where they can be ("60" and 45.5
// both fill an int). A field that still does not fit is left zero and reported
// through a *FieldError.
func FromRecord(rec Record, out interface{}) error {
	if err := decodeInto(map[string]interface{}(rec), out); err == nil {
		return nil
	}

	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return fmt.Errorf("decode record: target must be a non-nil pointer, got %T", out)
	}
	target.Elem().Set(reflect.Zero(target.Elem().Type()))

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var bad []string
	for _, k := range keys {
		if err := decodeInto(map[string]interface{}{k: rec[k]}, out); err != nil {
			bad = append(bad, k)
		}
	}
	if len(bad) > 0 {
		return &FieldError{Fields: bad}
	}
	return nil
}

func decodeInto(input map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncKind(numericHook),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// numericHook turns numeric strings and fractional numbers into the number kind
// the field wants. Anything else is passed through for the decoder to judge.
func numericHook(from, to reflect.Kind, data interface{}) (interface{}, error) {
	if !isIntKind(to) && !isFloatKind(to) {
		return data, nil
	}
	var f float64
	switch {
	case from == reflect.String:
		s := strings.TrimSpace(data.(string))
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return data, nil
		}
		f = parsed
	case isFloatKind(from):
		f = reflect.ValueOf(data).Float()
	default:
		return data, nil
	}
	if isIntKind(to) {
		return int64(f), nil
	}
	return f, nil
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
