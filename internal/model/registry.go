package model

import "fmt"

// Schema maps logical model names to their descriptors. It is read-only once linked.
type Schema map[string]*Model

// Registry is the process-wide schema loaded at start-up.
var Registry = Schema{}

func InitRegistry(dir string) error {
	schema, err := LoadSchema(dir)
	if err != nil {
		return err
	}
	Registry = schema
	return nil
}

// LoadSchema reads, links and validates every model YAML in dir.
func LoadSchema(dir string) (Schema, error) {
	schema, err := LoadModelsFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	if err := schema.Link(); err != nil {
		return nil, fmt.Errorf("link error: %w", err)
	}
	return schema, nil
}

// Model returns the named model.
func (s Schema) Model(name string) (*Model, bool) {
	m, ok := s[name]
	return m, ok
}
