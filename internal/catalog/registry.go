package catalog

import (
	"fmt"
	"sort"
)

// Registry holds the catalogs loaded at start-up. It is read-only afterwards.
type Registry struct {
	catalogs map[string]*Catalog
}

func NewRegistry(catalogs ...*Catalog) *Registry {
	r := &Registry{catalogs: make(map[string]*Catalog, len(catalogs))}
	for _, c := range catalogs {
		r.add(c)
	}
	return r
}

func (r *Registry) add(c *Catalog) {
	r.catalogs[c.Name()] = c
}

// Get returns the named catalog or ErrCatalogNotFound.
func (r *Registry) Get(name string) (*Catalog, error) {
	if r != nil {
		if c, ok := r.catalogs[name]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.catalogs))
	for n := range r.catalogs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
