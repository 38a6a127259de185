package gallery

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var builtinCountries []byte

// Country is an entry of the country registry.
type Country struct {
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
	Flag string `json:"flag" yaml:"flag"`
}

// CountryRegistry is an immutable slug-keyed table of countries.
type CountryRegistry struct {
	ordered []Country
	bySlug  map[string]Country
}

// DefaultCountries returns the built-in registry.
func DefaultCountries() *CountryRegistry {
	reg, err := LoadCountries(bytes.NewReader(builtinCountries))
	if err != nil {
		panic(fmt.Sprintf("builtin country table: %v", err))
	}
	return reg
}

// LoadCountriesFile reads a registry from a YAML file.
func LoadCountriesFile(path string) (*CountryRegistry, error) {
	f, err := os.Open(path) //nolint:gosec // Path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("load countries: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadCountries(f)
}

// LoadCountries parses a YAML list of {slug, name, flag} entries.
// Slugs must be unique and URL-safe, names must be non-empty.
func LoadCountries(r io.Reader) (*CountryRegistry, error) {
	var list []Country
	if err := yaml.NewDecoder(r).Decode(&list); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse countries: %w", err)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("parse countries: %w: table is empty", ErrInvalidInput)
	}

	reg := &CountryRegistry{
		ordered: make([]Country, 0, len(list)),
		bySlug:  make(map[string]Country, len(list)),
	}

	for i, c := range list {
		if !IsValidSlug(c.Slug) {
			return nil, fmt.Errorf("parse countries: entry %d: %w: invalid slug %q", i, ErrInvalidInput, c.Slug)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("parse countries: entry %d: %w: empty name", i, ErrInvalidInput)
		}
		if _, dup := reg.bySlug[c.Slug]; dup {
			return nil, fmt.Errorf("parse countries: %w: duplicate slug %q", ErrInvalidInput, c.Slug)
		}
		reg.bySlug[c.Slug] = c
		reg.ordered = append(reg.ordered, c)
	}

	return reg, nil
}

// Lookup returns the country registered under slug.
func (r *CountryRegistry) Lookup(slug string) (Country, bool) {
	c, ok := r.bySlug[slug]
	return c, ok
}

// All returns the countries in table order.
func (r *CountryRegistry) All() []Country {
	return append([]Country(nil), r.ordered...)
}

// Len returns the number of registered countries.
func (r *CountryRegistry) Len() int {
	return len(r.ordered)
}
