package catalog

import (
	"fmt"
	"strings"

	"CatalogAPI/internal/model"
)

type Layout string

const (
	LayoutTable      Layout = "Table"
	LayoutHorizontal Layout = "Horizontal"
	LayoutGrid       Layout = "Grid"
	LayoutMasonry    Layout = "Masonry"
)

type PaginationStyle string

const (
	StyleLinks   PaginationStyle = "Links"
	StyleShowing PaginationStyle = "Showing"
)

const (
	DefaultPerPage      = 15
	DefaultNoItemsFound = "No items found"
)

// Settings are the display and pagination options of a catalog.
type Settings struct {
	Layout           Layout          `json:"layout"`
	PerPage          int             `json:"per_page"`
	MaxPerPage       int             `json:"max_per_page"`
	NoItemsFound     string          `json:"no_items_found"`
	HasPagination    bool            `json:"has_pagination"`
	TopPagination    bool            `json:"top_pagination"`
	BottomPagination bool            `json:"bottom_pagination"`
	LeftPagination   bool            `json:"left_pagination"`
	PaginationStyle  PaginationStyle `json:"pagination_style"`
	Orderable        string          `json:"orderable,omitempty"`
}

// DefaultSettings returns the settings a catalog gets when its file omits them.
func DefaultSettings() Settings {
	return Settings{
		Layout:          LayoutHorizontal,
		PerPage:         DefaultPerPage,
		NoItemsFound:    DefaultNoItemsFound,
		HasPagination:   true,
		TopPagination:   true,
		PaginationStyle: StyleLinks,
	}
}

// Prefilter is a permanent filter. Its value is either literal or read from
// the store under StoreKey when a plan is built.
type Prefilter struct {
	Field    string   `json:"field"`
	Op       Operator `json:"op"`
	Value    any      `json:"value,omitempty"`
	StoreKey string   `json:"store,omitempty"`
}

// Definition is the raw, unvalidated description of a catalog.
type Definition struct {
	Name        string
	Source      string
	Settings    Settings
	Columns     []string
	Prefilters  []Prefilter
	Presort     string
	DefaultSort string
	Filters     []FilterBinding
}

type resolvedPrefilter struct {
	Prefilter
	column ColumnRef
}

type resolvedBinding struct {
	FilterBinding
	key    string
	column ColumnRef
}

// Catalog is a validated catalog definition bound to its source entity.
// It is immutable after NewCatalog returns and safe to share.
type Catalog struct {
	name        string
	source      *model.Model
	settings    Settings
	columns     []string
	prefilters  []resolvedPrefilter
	presort     []SortClause
	defaultSort []SortClause
	bindings    []resolvedBinding
	bindingIdx  map[string]int
}

// NewCatalog validates def against schema. Every path, sort spec and setting
// is checked here so a broken catalog never reaches a request.
func NewCatalog(schema model.Schema, def Definition) (*Catalog, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidCatalog)
	}
	base, ok := schema.Model(def.Source)
	if !ok {
		return nil, fmt.Errorf("%w: catalog %s: unknown source entity %q", ErrInvalidCatalog, name, def.Source)
	}

	settings, err := validateSettings(base, def.Settings)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog %s: %v", ErrInvalidCatalog, name, err)
	}

	c := &Catalog{
		name:       name,
		source:     base,
		settings:   settings,
		bindingIdx: make(map[string]int, len(def.Filters)),
	}

	if len(def.Columns) == 0 {
		c.columns = append([]string(nil), base.Attributes...)
	} else {
		for _, col := range def.Columns {
			if !base.HasAttribute(col) {
				return nil, fmt.Errorf("%w: catalog %s: column %q is not an attribute of %s", ErrInvalidCatalog, name, col, base.Name)
			}
			c.columns = append(c.columns, col)
		}
	}

	for i, pf := range def.Prefilters {
		rp, err := resolvePrefilter(base, pf)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: prefilter %d: %w", name, i, err)
		}
		c.prefilters = append(c.prefilters, rp)
	}

	if c.presort, err = ParseSort(base, def.Presort); err != nil {
		return nil, fmt.Errorf("catalog %s: presort: %w", name, err)
	}
	for i := range c.presort {
		c.presort[i].Permanent = true
	}
	if c.defaultSort, err = ParseSort(base, def.DefaultSort); err != nil {
		return nil, fmt.Errorf("catalog %s: default_sort: %w", name, err)
	}

	for _, b := range def.Filters {
		col, err := ResolveBinding(base, b)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: filter %q: %w", name, b.Label, err)
		}
		key := b.FieldKey()
		if _, dup := c.bindingIdx[key]; dup {
			return nil, fmt.Errorf("%w: catalog %s: filter key %q declared twice", ErrInvalidCatalog, name, key)
		}
		c.bindingIdx[key] = len(c.bindings)
		c.bindings = append(c.bindings, resolvedBinding{FilterBinding: b, key: key, column: col})
	}

	return c, nil
}

func validateSettings(base *model.Model, s Settings) (Settings, error) {
	switch s.Layout {
	case "":
		s.Layout = LayoutHorizontal
	case LayoutTable, LayoutHorizontal, LayoutGrid, LayoutMasonry:
	default:
		return s, fmt.Errorf("unknown layout %q", s.Layout)
	}
	switch s.PaginationStyle {
	case "":
		s.PaginationStyle = StyleLinks
	case StyleLinks, StyleShowing:
	default:
		return s, fmt.Errorf("unknown pagination_style %q", s.PaginationStyle)
	}
	if s.PerPage == 0 {
		s.PerPage = DefaultPerPage
	}
	if s.PerPage < 0 {
		return s, fmt.Errorf("per_page must be positive, got %d", s.PerPage)
	}
	if s.MaxPerPage == 0 {
		s.MaxPerPage = s.PerPage
	}
	if s.MaxPerPage < s.PerPage {
		return s, fmt.Errorf("max_per_page %d is below per_page %d", s.MaxPerPage, s.PerPage)
	}
	if s.NoItemsFound == "" {
		s.NoItemsFound = DefaultNoItemsFound
	}
	if s.Orderable != "" && len(base.GetPrimaryKeys()) != 1 {
		return s, fmt.Errorf("orderable needs a single-column primary key on %s, got %v", base.Name, base.GetPrimaryKeys())
	}
	if s.Orderable != "" && !base.HasAttribute(s.Orderable) {
		return s, fmt.Errorf("orderable %q is not an attribute of %s", s.Orderable, base.Name)
	}
	return s, nil
}

func resolvePrefilter(base *model.Model, pf Prefilter) (resolvedPrefilter, error) {
	if pf.Op == "" {
		pf.Op = OpEq
	}
	if !pf.Op.valid() {
		return resolvedPrefilter{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidCatalog, pf.Op)
	}
	col, err := resolvePath(base, pf.Field, MaxFilterHops)
	if err != nil {
		return resolvedPrefilter{}, err
	}
	hasStore := strings.TrimSpace(pf.StoreKey) != ""
	switch pf.Op {
	case OpNull, OpNotNull:
		if pf.Value != nil || hasStore {
			return resolvedPrefilter{}, fmt.Errorf("%w: %s takes no value", ErrInvalidCatalog, pf.Op)
		}
	default:
		if pf.Value != nil && hasStore {
			return resolvedPrefilter{}, fmt.Errorf("%w: value and store are exclusive", ErrInvalidCatalog)
		}
		if _, isList := asList(pf.Value); isList && pf.Op != OpIn {
			return resolvedPrefilter{}, resolveErr(ErrInvalidValue, col.Entity, col.Path(), "list value needs op in")
		}
	}
	return resolvedPrefilter{Prefilter: pf, column: col}, nil
}

func (c *Catalog) Name() string { return c.name }

// Source returns the entity the catalog lists.
func (c *Catalog) Source() *model.Model { return c.source }

func (c *Catalog) Settings() Settings { return c.settings }

func (c *Catalog) Columns() []string { return append([]string(nil), c.columns...) }

// Filters returns the declared filter bindings in declaration order.
func (c *Catalog) Filters() []FilterBinding {
	out := make([]FilterBinding, len(c.bindings))
	for i, b := range c.bindings {
		out[i] = b.FilterBinding
	}
	return out
}

// Prefilters returns the permanent filters as declared.
func (c *Catalog) Prefilters() []Prefilter {
	out := make([]Prefilter, len(c.prefilters))
	for i, p := range c.prefilters {
		out[i] = p.Prefilter
	}
	return out
}

func (c *Catalog) Presort() []SortClause { return append([]SortClause(nil), c.presort...) }

func (c *Catalog) DefaultSort() []SortClause { return append([]SortClause(nil), c.defaultSort...) }
