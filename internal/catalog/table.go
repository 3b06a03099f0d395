// Package catalog resolves (component, identifier) pairs to localized
// template strings and expands their {$a} placeholders.
package catalog

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/ziadkadry99/pageutil/internal/logging"
)

var log = logging.For("catalog")

// ErrFrozen is returned by Populate once the table has been handed over
// to readers.
var ErrFrozen = errors.New("catalog: table is frozen")

// Table maps component -> identifier -> template. A loader fills it with
// Populate and then calls Freeze; after that it is read-only.
type Table struct {
	// Debug turns on warnings for misses and skipped substitutions.
	Debug bool

	mu      sync.RWMutex
	strings map[string]map[string]string
	frozen  bool
}

// NewTable returns an empty, writable table.
func NewTable() *Table {
	return &Table{strings: make(map[string]map[string]string)}
}

// Populate merges entries into component. Later values for the same
// identifier replace earlier ones.
func (t *Table) Populate(component string, entries map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return errors.Wrapf(ErrFrozen, "populating %q", component)
	}
	m, ok := t.strings[component]
	if !ok {
		m = make(map[string]string, len(entries))
		t.strings[component] = m
	}
	for id, s := range entries {
		m[id] = s
	}
	return nil
}

// Freeze ends the population phase.
func (t *Table) Freeze() {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// Lookup returns the raw template for component/identifier. The boolean
// is false when either level is missing; an empty template is a hit.
func (t *Table) Lookup(component, identifier string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, ok := t.strings[component]
	if !ok {
		return "", false
	}
	s, ok := m[identifier]
	return s, ok
}

// Component returns a copy of every string in component, or nil when the
// component is unknown.
func (t *Table) Component(component string) map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, ok := t.strings[component]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Components lists the component names in sorted order.
func (t *Table) Components() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.strings))
	for name := range t.strings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of strings across all components.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, m := range t.strings {
		n += len(m)
	}
	return n
}
