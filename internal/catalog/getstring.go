package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// scalarToken is the placeholder replaced by a Scalar substitution.
const scalarToken = "{$a}"

// MissMarker is what GetString returns for an unknown string.
func MissMarker(identifier, component string) string {
	return "[[" + identifier + "," + component + "]]"
}

// keyToken is the placeholder replaced by Keyed[key].
func keyToken(key string) string {
	return "{$a->" + key + "}"
}

// GetString resolves identifier within component and expands a into its
// placeholders. It never fails: unknown strings come back as the miss
// marker and unusable substitutions leave the template untouched.
func (t *Table) GetString(identifier, component string, a Substitution) string {
	tmpl, ok := t.Lookup(component, identifier)
	if !ok {
		marker := MissMarker(identifier, component)
		if t.Debug {
			log.WithField("func", "get_string").Warnf("undefined string %s", marker)
		}
		return marker
	}

	switch sub := a.(type) {
	case nil, None:
		return tmpl
	case Scalar:
		return strings.ReplaceAll(tmpl, scalarToken, string(sub))
	case Keyed:
		return t.expandFields(tmpl, sub.sorted())
	case Fields:
		return t.expandFields(tmpl, sub)
	default:
		if t.Debug {
			log.WithField("func", "get_string").Warnf("incorrect placeholder type %T", a)
		}
		return tmpl
	}
}

// sorted returns the entries of k ordered by key. Go maps have no
// order of their own.
func (k Keyed) sorted() Fields {
	keys := make([]string, 0, len(k))
	for key := range k {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make(Fields, len(keys))
	for i, key := range keys {
		fields[i] = Field{Key: key, Value: k[key]}
	}
	return fields
}

// expandFields applies fields in order. Tokens are matched as plain
// text, so key names containing pattern characters only hit their own
// placeholder.
func (t *Table) expandFields(tmpl string, fields Fields) string {
	for _, f := range fields {
		v, ok := scalarValue(f.Value)
		if !ok {
			if t.Debug {
				log.WithField("func", "get_string").Warn(fmt.Sprintf("invalid value type for $a->%s", f.Key))
			}
			continue
		}
		tmpl = strings.ReplaceAll(tmpl, keyToken(f.Key), v)
	}
	return tmpl
}
