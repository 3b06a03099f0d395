package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Substitution is the optional third argument of GetString. It is one
// of None, Scalar, Keyed, Fields or Invalid.
type Substitution interface {
	isSubstitution()
}

// None requests no placeholder expansion. A nil Substitution means the
// same thing.
type None struct{}

// Scalar replaces every {$a} with its value.
type Scalar string

// Keyed replaces every {$a->KEY} with the value stored under KEY. Only
// string and numeric values are used; anything else is skipped.
type Keyed map[string]any

// Field is one key/value pair of a Fields substitution.
type Field struct {
	Key   string
	Value any
}

// Fields is Keyed with an explicit application order. Decoded JSON
// objects use it so keys are applied in the order a browser would
// enumerate them.
type Fields []Field

// Invalid carries an argument of a type GetString does not understand,
// such as a boolean. The template is returned unchanged.
type Invalid struct {
	Kind string
}

func (None) isSubstitution()    {}
func (Scalar) isSubstitution()  {}
func (Keyed) isSubstitution()   {}
func (Fields) isSubstitution()  {}
func (Invalid) isSubstitution() {}

// Number formats f the way a browser prints a number and wraps it as a
// Scalar.
func Number(f float64) Scalar {
	return Scalar(formatNumber(f))
}

// Int wraps an integer as a Scalar.
func Int(n int64) Scalar {
	return Scalar(strconv.FormatInt(n, 10))
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if a := math.Abs(f); a != 0 && (a >= 1e21 || a < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// scalarValue converts a Keyed or Fields value to its placeholder text. ok is
// false for values that must be skipped.
func scalarValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case Scalar:
		return string(x), true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		// Out-of-range literals parse to ±Inf with ErrRange.
		if f, err := x.Float64(); err == nil || errors.Is(err, strconv.ErrRange) {
			return formatNumber(f), true
		}
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return formatNumber(float64(x)), true
	case float64:
		return formatNumber(x), true
	}
	return "", false
}

// DecodeSubstitution turns a JSON value into a Substitution: absent or
// null is None, a string or number is Scalar, an object is Fields in
// property enumeration order, an array is Fields by element index, and
// anything else is Invalid.
func DecodeSubstitution(raw json.RawMessage) (Substitution, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return None{}, nil
	}
	if raw[0] == '{' {
		return decodeFields(raw)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case string:
		return Scalar(x), nil
	case json.Number:
		s, _ := scalarValue(x)
		return Scalar(s), nil
	case []any:
		fields := make(Fields, len(x))
		for i, e := range x {
			fields[i] = Field{Key: strconv.Itoa(i), Value: e}
		}
		return fields, nil
	case bool:
		return Invalid{Kind: "boolean"}, nil
	}
	return Invalid{Kind: "unknown"}, nil
}

// decodeFields reads a JSON object keeping its property order. A
// repeated key keeps its first position and its last value. Integer
// keys move to the front in ascending order, as in a browser.
func decodeFields(raw []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	fields := Fields{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if i, seen := index[key]; seen {
			fields[i].Value = v
			continue
		}
		index[key] = len(fields)
		fields = append(fields, Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	sort.SliceStable(fields, func(i, j int) bool {
		ni, iok := arrayIndex(fields[i].Key)
		nj, jok := arrayIndex(fields[j].Key)
		if iok && jok {
			return ni < nj
		}
		return iok && !jok
	})
	return fields, nil
}

// arrayIndex reports whether key is a canonical array index.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}
