// Package yamldict implements the YAML dictionary codec.
//
// Input may be flat or nested; nested mappings are flattened into
// dot-joined keys on load:
//
//	nav:
//	  home: Home        ->  "nav.home": "Home"
//	about.title: About  ->  "about.title": "About"
//
// Output is always written flat with sorted keys, mirroring the JSON
// codec. Non-string leaf values (numbers, booleans, null, sequences)
// are not translatable and are rejected on load with the offending
// line and key path, matching the JSON codec's strictness.
package yamldict

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/langsync/langsync/dict"
)

// Load reads a YAML dictionary file with the same forgiving contract as
// dict.Load: missing file means an empty dictionary with a nil error,
// unreadable or unparsable content means an empty dictionary plus the
// error for the caller to log.
func Load(path, lang, marker string) (*dict.Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dict.New(lang, marker), nil
		}
		return dict.New(lang, marker), fmt.Errorf("reading %s: %w", path, err)
	}

	d, err := Parse(data, lang, marker)
	if err != nil {
		return dict.New(lang, marker), fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

// Parse parses YAML dictionary data, flattening nested mappings and
// rejecting non-string leaves.
func Parse(data []byte, lang, marker string) (*dict.Dictionary, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	d := dict.New(lang, marker)
	if len(doc.Content) == 0 {
		return d, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return d, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: root is not a mapping", root.Line)
	}

	if err := collect(root, "", d, marker); err != nil {
		return nil, err
	}
	return d, nil
}

// collect walks a mapping node and stores string leaves under their
// dot-joined paths. Any other leaf is an error carrying its line and
// path.
func collect(node *yaml.Node, prefix string, d *dict.Dictionary, marker string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}
		if val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}

		switch {
		case val.Kind == yaml.MappingNode:
			if err := collect(val, path, d, marker); err != nil {
				return err
			}
		case val.Kind == yaml.ScalarNode && val.Tag == "!!str":
			d.Set(path, dict.FromWire(val.Value, marker))
		default:
			return fmt.Errorf("line %d: %s: not a string value", val.Line, path)
		}
	}
	return nil
}

// Marshal serializes the dictionary as a flat YAML mapping with sorted
// keys, placeholder markers re-attached.
func Marshal(d *dict.Dictionary) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Wire(d.Marker)}
		if valNode.Value == "" {
			valNode.Style = yaml.DoubleQuotedStyle
		}
		root.Content = append(root.Content, keyNode, valNode)
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return out, nil
}

// WriteFile serializes the dictionary and writes it to path, creating
// parent directories as needed.
func WriteFile(d *dict.Dictionary, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling %s dictionary: %w", d.Lang, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
