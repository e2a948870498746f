package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"CatalogAPI/internal/logger"
	"CatalogAPI/internal/model"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Source           string          `yaml:"source"`
	Layout           string          `yaml:"layout"`
	PerPage          *int            `yaml:"per_page"`
	MaxPerPage       *int            `yaml:"max_per_page"`
	NoItemsFound     *string         `yaml:"no_items_found"`
	HasPagination    *bool           `yaml:"has_pagination"`
	TopPagination    *bool           `yaml:"top_pagination"`
	BottomPagination *bool           `yaml:"bottom_pagination"`
	LeftPagination   *bool           `yaml:"left_pagination"`
	PaginationStyle  string          `yaml:"pagination_style"`
	Orderable        string          `yaml:"orderable"`
	Columns          []string        `yaml:"columns"`
	Prefilters       []prefilterFile `yaml:"prefilters"`
	Presort          string          `yaml:"presort"`
	DefaultSort      string          `yaml:"default_sort"`
	Filters          []filterFile    `yaml:"filters"`
}

type prefilterFile struct {
	Field string `yaml:"field"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
	Store string `yaml:"store"`
}

type filterFile struct {
	Label     string `yaml:"label"`
	Key       string `yaml:"key"`
	Component string `yaml:"component"`
}

var allowedCatalogKeys = map[string]bool{
	"source": true, "layout": true, "per_page": true, "max_per_page": true,
	"no_items_found": true, "has_pagination": true, "top_pagination": true,
	"bottom_pagination": true, "left_pagination": true, "pagination_style": true,
	"orderable": true, "columns": true, "prefilters": true, "presort": true,
	"default_sort": true, "filters": true,
}

var allowedPrefilterKeys = map[string]bool{"field": true, "op": true, "value": true, "store": true}

var allowedFilterKeys = map[string]bool{"label": true, "key": true, "component": true}

// LoadCatalogsFromDir parses every *.yml in dir against schema. The file name
// is the catalog name.
func LoadCatalogsFromDir(dir string, schema model.Schema) (*Registry, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalog files in %s", dir)
	}
	sort.Strings(files)

	reg := NewRegistry()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		c, err := ParseCatalog(name, data, schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		reg.add(c)
		logger.Info("catalog_loaded", map[string]any{
			"catalog": name,
			"source":  c.Source().Name,
			"filters": len(c.bindings),
		})
	}
	return reg, nil
}

// ParseCatalog decodes one catalog file and validates it with NewCatalog.
func ParseCatalog(name string, data []byte, schema model.Schema) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: YAML parse error: %v", ErrInvalidCatalog, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty YAML", ErrInvalidCatalog)
	}
	if err := validateCatalogNode(root.Content[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var f catalogFile
	if err := root.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: unmarshal error: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(schema, f.definition(name))
}

func (f catalogFile) definition(name string) Definition {
	s := DefaultSettings()
	s.Layout = Layout(f.Layout)
	s.PaginationStyle = PaginationStyle(f.PaginationStyle)
	s.Orderable = f.Orderable
	if f.PerPage != nil {
		s.PerPage = *f.PerPage
	}
	if f.MaxPerPage != nil {
		s.MaxPerPage = *f.MaxPerPage
	}
	if f.NoItemsFound != nil {
		s.NoItemsFound = *f.NoItemsFound
	}
	setBool(&s.HasPagination, f.HasPagination)
	setBool(&s.TopPagination, f.TopPagination)
	setBool(&s.BottomPagination, f.BottomPagination)
	setBool(&s.LeftPagination, f.LeftPagination)

	def := Definition{
		Name:        name,
		Source:      f.Source,
		Settings:    s,
		Columns:     f.Columns,
		Presort:     f.Presort,
		DefaultSort: f.DefaultSort,
	}
	for _, p := range f.Prefilters {
		def.Prefilters = append(def.Prefilters, Prefilter{
			Field:    p.Field,
			Op:       Operator(p.Op),
			Value:    p.Value,
			StoreKey: p.Store,
		})
	}
	for _, fl := range f.Filters {
		def.Filters = append(def.Filters, FilterBinding{
			Key:   fl.Key,
			Label: fl.Label,
			Kind:  KindForComponent(fl.Component),
		})
	}
	return def
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func validateCatalogNode(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("catalog must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if !allowedCatalogKeys[key.Value] {
			return fmt.Errorf("unknown key '%s' in catalog (line %d)", key.Value, key.Line)
		}
		switch key.Value {
		case "prefilters":
			if err := validateEntries(val, "prefilter", allowedPrefilterKeys); err != nil {
				return err
			}
		case "filters":
			if err := validateEntries(val, "filter", allowedFilterKeys); err != nil {
				return err
			}
		case "columns":
			if val.Kind != yaml.SequenceNode {
				return fmt.Errorf("columns must be a list (line %d)", val.Line)
			}
		}
	}
	return nil
}

func validateEntries(node *yaml.Node, context string, allowed map[string]bool) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("%ss must be a list (line %d)", context, node.Line)
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return fmt.Errorf("%s must be a mapping (line %d)", context, item.Line)
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			k := item.Content[i]
			if !allowed[k.Value] {
				return fmt.Errorf("unknown key '%s' in %s (line %d)", k.Value, context, k.Line)
			}
		}
	}
	return nil
}
