package catalog

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PackPattern matches the component files of one language inside a
// language-pack directory: <lang>/<component>.yaml|yml|json.
const PackPattern = "%s/*.{yaml,yml,json}"

// Pack is the parsed content of one language: component -> identifier
// -> template.
type Pack map[string]map[string]string

// Components returns the component names in sorted order.
func (p Pack) Components() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDir reads the language pack for lang from dir.
func LoadDir(dir, lang string) (Pack, error) {
	return LoadFS(os.DirFS(dir), lang)
}

// LoadFS reads the language pack for lang from fsys. Each file holds a
// flat mapping of identifier to template; the file name (without
// extension) is the component.
func LoadFS(fsys fs.FS, lang string) (Pack, error) {
	pattern := strings.Replace(PackPattern, "%s", escapeGlob(lang), 1)
	files, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %s", pattern)
	}
	sort.Strings(files)

	pack := make(Pack, len(files))
	for _, f := range files {
		component := strings.TrimSuffix(path.Base(f), path.Ext(f))
		entries, err := readComponentFile(fsys, f)
		if err != nil {
			return nil, err
		}
		if existing, ok := pack[component]; ok {
			for k, v := range entries {
				existing[k] = v
			}
			continue
		}
		pack[component] = entries
	}
	return pack, nil
}

func readComponentFile(fsys fs.FS, name string) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}

	var nodes map[string]yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", name)
	}

	entries := make(map[string]string, len(nodes))
	for id, n := range nodes {
		if n.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("%s: string %q is not a scalar (line %d)", name, id, n.Line)
		}
		entries[id] = n.Value
	}
	return entries, nil
}

// Fill populates t with every component in p. It does not freeze t.
func (p Pack) Fill(t *Table) error {
	for _, component := range p.Components() {
		if err := t.Populate(component, p[component]); err != nil {
			return err
		}
	}
	return nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `{`, `\{`)
	return r.Replace(s)
}
