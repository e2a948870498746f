package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"CatalogAPI/internal/logger"

	"gopkg.in/yaml.v3"
)

// LoadModelsFromDir decodes every *.yml file of dir into a Schema keyed by file name.
func LoadModelsFromDir(dir string) (Schema, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no model files in %s", dir)
	}
	sort.Strings(files)

	schema := Schema{}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, err := ParseModel(name, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		schema[name] = m
		logger.Info("model_loaded", map[string]any{
			"model":      name,
			"attributes": len(m.Attributes),
			"relations":  len(m.Relations),
		})
	}
	return schema, nil
}

// ParseModel validates the YAML structure first, then decodes it.
func ParseModel(name string, data []byte) (*Model, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty YAML")
	}
	if err := validateYAMLNode(root.Content[0], "model"); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	var m Model
	if err := root.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	m.Name = name
	if strings.TrimSpace(m.Table) == "" {
		m.Table = SnakeCase(name) + "s"
	}
	if len(m.Attributes) == 0 {
		return nil, fmt.Errorf("model %s declares no attributes", name)
	}
	m.indexAttributes()
	for _, pk := range m.GetPrimaryKeys() {
		if !m.HasAttribute(pk) {
			return nil, fmt.Errorf("primary key %q of model %s is not a declared attribute", pk, name)
		}
	}
	if m.Relations == nil {
		m.Relations = map[string]*ModelRelation{}
	}
	return &m, nil
}
