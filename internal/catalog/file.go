package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileEntries is the on-disk shape of a catalog file.
type fileEntries struct {
	Currencies []Entry `yaml:"currencies"`
	Items      []Entry `yaml:"items"`
	Roles      []Entry `yaml:"roles"`
	Stats      []Entry `yaml:"stats"`
}

// LoadFile reads a YAML catalog file into a new catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f fileEntries
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	c := New()
	for _, add := range []struct {
		kind    Kind
		entries []Entry
	}{
		{KindCurrency, f.Currencies},
		{KindItem, f.Items},
		{KindRole, f.Roles},
		{KindStat, f.Stats},
	} {
		if err := c.Add(add.kind, add.entries...); err != nil {
			return nil, err
		}
	}
	return c, nil
}
