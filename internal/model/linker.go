package model

import (
	"fmt"
	"sort"
)

// Link resolves relation targets, fills FK/PK defaults and checks that every
// join column is a declared attribute. It must run before the schema is used.
func (s Schema) Link() error {
	names := s.sortedNames()

	// pass 1: targets, types, defaults
	for _, modelName := range names {
		m := s[modelName]
		for _, relName := range sortedRelations(m) {
			rel := m.Relations[relName]
			if rel == nil {
				return fmt.Errorf("relation '%s.%s' is empty", modelName, relName)
			}
			target, ok := s[rel.Model]
			if !ok {
				return fmt.Errorf("invalid relation: model '%s' not found in '%s.%s'", rel.Model, modelName, relName)
			}
			rel._ModelRef = target

			switch rel.Type {
			case BelongsTo:
				if rel.Through != "" {
					return fmt.Errorf("relation '%s.%s': belongs_to cannot use through", modelName, relName)
				}
				// FK lives on the current model and points at the related one
				if rel.FK == "" {
					rel.FK = relName + "_id"
				}
				if rel.PK == "" {
					rel.PK = target.GetPrimaryKeys()[0]
				}
			case HasOne, HasMany:
				// FK lives on the related (or pivot) model and points back at the current one
				if rel.FK == "" {
					rel.FK = SnakeCase(modelName) + "_id"
				}
				if rel.PK == "" {
					rel.PK = m.GetPrimaryKeys()[0]
				}
			default:
				return fmt.Errorf("relation '%s.%s' must have valid Type (has_many, has_one, belongs_to), got '%s'", modelName, relName, rel.Type)
			}
		}
	}

	// pass 2: through pivots and column checks
	for _, modelName := range names {
		m := s[modelName]
		for _, relName := range sortedRelations(m) {
			rel := m.Relations[relName]
			target := rel._ModelRef

			if rel.Through != "" {
				pivot, ok := s[rel.Through]
				if !ok {
					return fmt.Errorf("invalid through: model '%s' not found in '%s.%s'", rel.Through, modelName, relName)
				}
				var final *ModelRelation
				for _, pivotRelName := range sortedRelations(pivot) {
					pr := pivot.Relations[pivotRelName]
					if pr.Model == rel.Model && pr.Type == BelongsTo {
						final = pr
						break
					}
				}
				if final == nil {
					return fmt.Errorf("invalid through: no belongs_to relation from '%s' to '%s' found in '%s.%s'", rel.Through, rel.Model, modelName, relName)
				}
				rel._ThroughRef = pivot
				rel._FinalRef = final
				if !pivot.HasAttribute(rel.FK) {
					return fmt.Errorf("relation '%s.%s': fk '%s' is not an attribute of pivot %s", modelName, relName, rel.FK, pivot.Name)
				}
				if !m.HasAttribute(rel.PK) {
					return fmt.Errorf("relation '%s.%s': pk '%s' is not an attribute of %s", modelName, relName, rel.PK, modelName)
				}
				continue
			}

			switch rel.Type {
			case BelongsTo:
				if !m.HasAttribute(rel.FK) {
					return fmt.Errorf("relation '%s.%s': fk '%s' is not an attribute of %s", modelName, relName, rel.FK, modelName)
				}
				if !target.HasAttribute(rel.PK) {
					return fmt.Errorf("relation '%s.%s': pk '%s' is not an attribute of %s", modelName, relName, rel.PK, target.Name)
				}
			default:
				if !target.HasAttribute(rel.FK) {
					return fmt.Errorf("relation '%s.%s': fk '%s' is not an attribute of %s", modelName, relName, rel.FK, target.Name)
				}
				if !m.HasAttribute(rel.PK) {
					return fmt.Errorf("relation '%s.%s': pk '%s' is not an attribute of %s", modelName, relName, rel.PK, modelName)
				}
			}
		}
	}
	return nil
}

func (s Schema) sortedNames() []string {
	names := make([]string, 0, len(s))
	for name, m := range s {
		if m.Name == "" {
			m.Name = name
		}
		if m.attrSet == nil {
			m.indexAttributes()
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedRelations(m *Model) []string {
	names := make([]string, 0, len(m.Relations))
	for name := range m.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
