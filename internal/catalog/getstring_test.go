package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, component string, entries map[string]string) *Table {
	t.Helper()
	tbl := NewTable()
	require.NoError(t, tbl.Populate(component, entries))
	tbl.Freeze()
	return tbl
}

func TestGetStringMissOnEmptyTable(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, "[[missing,core]]", tbl.GetString("missing", "core", nil))
}

func TestGetStringMissingIdentifierInKnownComponent(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"welcome": "Hello"})
	assert.Equal(t, "[[other,core]]", tbl.GetString("other", "core", None{}))
	assert.Equal(t, "[[welcome,admin]]", tbl.GetString("welcome", "admin", None{}))
}

func TestGetStringEmptyTemplateIsAHit(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"blank": ""})
	assert.Equal(t, "", tbl.GetString("blank", "core", nil))
}

func TestGetStringNoSubstitution(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"welcome": "Hello {$a}"})
	assert.Equal(t, "Hello {$a}", tbl.GetString("welcome", "core", nil))
	assert.Equal(t, "Hello {$a}", tbl.GetString("welcome", "core", None{}))
}

func TestGetStringScalar(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{
		"welcome": "Hello {$a}",
		"twice":   "{$a} and {$a}",
	})
	assert.Equal(t, "Hello World", tbl.GetString("welcome", "core", Scalar("World")))
	assert.Equal(t, "x and x", tbl.GetString("twice", "core", Scalar("x")))
	assert.Equal(t, "Hello 3", tbl.GetString("welcome", "core", Int(3)))
	assert.Equal(t, "Hello 2.5", tbl.GetString("welcome", "core", Number(2.5)))
}

func TestGetStringScalarIsLiteral(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"welcome": "Hello {$a}"})
	assert.Equal(t, "Hello $& $1", tbl.GetString("welcome", "core", Scalar("$& $1")))
}

func TestGetStringKeyed(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{
		"welcome": "Hi {$a->name}, you have {$a->count} items",
	})
	got := tbl.GetString("welcome", "core", Keyed{"name": "Ann", "count": 3})
	assert.Equal(t, "Hi Ann, you have 3 items", got)
}

func TestGetStringKeyedSkipsNonScalar(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{
		"mixed": "{$a->name} {$a->flag} {$a->list} {$a->nested}",
	})
	got := tbl.GetString("mixed", "core", Keyed{
		"name":   "Ann",
		"flag":   true,
		"list":   []any{1, 2},
		"nested": map[string]any{"x": 1},
	})
	assert.Equal(t, "Ann {$a->flag} {$a->list} {$a->nested}", got)
}

func TestGetStringKeyedEscapesPatternCharacters(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{
		"tricky": "{$a->a.b} {$a->axb} {$a->*} {$a->x-y}",
	})
	got := tbl.GetString("tricky", "core", Keyed{"a.b": "dot", "*": "star", "x-y": "dash"})
	assert.Equal(t, "dot {$a->axb} star dash", got)
}

func TestGetStringKeyedLeavesScalarTokenAlone(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"s": "{$a} {$a->k}"})
	assert.Equal(t, "{$a} v", tbl.GetString("s", "core", Keyed{"k": "v"}))
}

func TestGetStringKeysAreCaseSensitive(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"s": "{$a->Name} {$a->name}"})
	assert.Equal(t, "{$a->Name} ann", tbl.GetString("s", "core", Keyed{"name": "ann"}))
	assert.Equal(t, "[[S,core]]", tbl.GetString("S", "core", nil))
	assert.Equal(t, "[[s,Core]]", tbl.GetString("s", "Core", nil))
}

func TestGetStringInvalidSubstitution(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"welcome": "Hello {$a}"})
	tbl.Debug = true
	assert.Equal(t, "Hello {$a}", tbl.GetString("welcome", "core", Invalid{Kind: "boolean"}))
}

func TestGetStringNumericKeyedValues(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"n": "{$a->i}|{$a->f}|{$a->j}|{$a->u}"})
	got := tbl.GetString("n", "core", Keyed{
		"i": int64(-4),
		"f": 0.25,
		"j": json.Number("7"),
		"u": uint8(9),
	})
	assert.Equal(t, "-4|0.25|7|9", got)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{-1.5, "-1.5"},
		{0, "0"},
		{1e21, "1e+21"},
		{123456789, "123456789"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "formatNumber(%v)", tt.in)
	}
}

func TestDecodeSubstitution(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Substitution
	}{
		{"absent", ``, None{}},
		{"null", `null`, None{}},
		{"string", `"World"`, Scalar("World")},
		{"integer", `3`, Scalar("3")},
		{"float", `2.50`, Scalar("2.5")},
		{"boolean", `true`, Invalid{Kind: "boolean"}},
		{"array", `["x","y"]`, Fields{{Key: "0", Value: "x"}, {Key: "1", Value: "y"}}},
		{"out of range number", `1e400`, Scalar("Infinity")},
		{"negative out of range number", `-1e400`, Scalar("-Infinity")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSubstitution(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSubstitutionObject(t *testing.T) {
	sub, err := DecodeSubstitution(json.RawMessage(`{"name":"Ann","count":3,"ok":false}`))
	require.NoError(t, err)

	fields, ok := sub.(Fields)
	require.True(t, ok, "got %T", sub)
	assert.Equal(t, Fields{
		{Key: "name", Value: "Ann"},
		{Key: "count", Value: json.Number("3")},
		{Key: "ok", Value: false},
	}, fields)

	tbl := newTable(t, "core", map[string]string{"s": "{$a->name}:{$a->count}:{$a->ok}"})
	assert.Equal(t, "Ann:3:{$a->ok}", tbl.GetString("s", "core", sub))
}

func TestDecodeSubstitutionKeepsPropertyOrder(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"s": "{$a->name}"})

	// name is applied first, so the placeholder it introduces is filled
	// by the later count key.
	sub, err := DecodeSubstitution(json.RawMessage(`{"name":"{$a->count}","count":3}`))
	require.NoError(t, err)
	assert.Equal(t, "3", tbl.GetString("s", "core", sub))

	// Reversed, count has already been applied when name inserts it.
	sub, err = DecodeSubstitution(json.RawMessage(`{"count":3,"name":"{$a->count}"}`))
	require.NoError(t, err)
	assert.Equal(t, "{$a->count}", tbl.GetString("s", "core", sub))
}

func TestDecodeSubstitutionIntegerKeysFirst(t *testing.T) {
	sub, err := DecodeSubstitution(json.RawMessage(`{"b":1,"10":2,"a":3,"2":4,"02":5,"b":6}`))
	require.NoError(t, err)

	var keys []string
	for _, f := range sub.(Fields) {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"2", "10", "b", "a", "02"}, keys)
	assert.Equal(t, json.Number("6"), sub.(Fields)[2].Value)
}

func TestGetStringKeyedOutOfRangeNumber(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{"n": "{$a->big}"})
	assert.Equal(t, "Infinity", tbl.GetString("n", "core", Keyed{"big": json.Number("1e400")}))
}

func TestDecodeSubstitutionMalformed(t *testing.T) {
	_, err := DecodeSubstitution(json.RawMessage(`{"name":`))
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	tbl := newTable(t, "core", map[string]string{
		"help": "**Hello** {$a}",
	})
	html, err := tbl.RenderHTML("help", "core", Scalar("World"))
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>Hello</strong> World")

	html, err = tbl.RenderHTML("nothing", "core", nil)
	require.NoError(t, err)
	assert.Contains(t, html, "[[nothing,core]]")
}
