package model

// Relation types understood by the linker and the query compiler.
const (
	BelongsTo = "belongs_to"
	HasOne    = "has_one"
	HasMany   = "has_many"
)

// Model describes one entity of the static schema: its table, attributes and relations.
type Model struct {
	Name        string                    `yaml:"-"` // logical name of the model
	Table       string                    `yaml:"table"`
	Attributes  []string                  `yaml:"attributes"`
	Relations   map[string]*ModelRelation `yaml:"relations"`
	PrimaryKeys []string                  `yaml:"primary_keys"` // optional, e.g. ["id"] or ["part1","part2"]

	attrSet map[string]struct{}
}

// ModelRelation describes a named association from one model to another.
type ModelRelation struct {
	Type    string `yaml:"type"`    // has_one, has_many, belongs_to
	Model   string `yaml:"model"`   // logical name of the related model
	FK      string `yaml:"fk"`      // belongs_to: column on this model; has_*: column on the related (or through) model
	PK      string `yaml:"pk"`      // belongs_to: key of the related model; has_*: key of this model
	Through string `yaml:"through"` // pivot model for has_one/has_many :through
	Where   string `yaml:"where"`   // scope condition, columns written as ".column"

	// runtime links, set by LinkModelRelations
	_ModelRef   *Model         `yaml:"-"`
	_ThroughRef *Model         `yaml:"-"`
	_FinalRef   *ModelRelation `yaml:"-"`
}

// GetPrimaryKeys returns the primary key columns, ["id"] when not configured.
func (m *Model) GetPrimaryKeys() []string {
	if len(m.PrimaryKeys) > 0 {
		return m.PrimaryKeys
	}
	return []string{"id"}
}

// HasAttribute reports whether name is a declared attribute of the model.
func (m *Model) HasAttribute(name string) bool {
	if m == nil {
		return false
	}
	if m.attrSet == nil {
		for _, a := range m.Attributes {
			if a == name {
				return true
			}
		}
		return false
	}
	_, ok := m.attrSet[name]
	return ok
}

func (m *Model) GetRelation(name string) *ModelRelation {
	if m == nil || m.Relations == nil {
		return nil
	}
	return m.Relations[name]
}

func (m *Model) indexAttributes() {
	m.attrSet = make(map[string]struct{}, len(m.Attributes))
	for _, a := range m.Attributes {
		m.attrSet[a] = struct{}{}
	}
}

// GetModelRef returns the related model once the registry is linked.
func (r *ModelRelation) GetModelRef() *Model {
	return r._ModelRef
}

func (r *ModelRelation) SetModelRef(model *Model) {
	r._ModelRef = model
}

// GetThroughRef returns the pivot model of a :through relation.
func (r *ModelRelation) GetThroughRef() *Model {
	return r._ThroughRef
}

func (r *ModelRelation) SetThroughRef(model *Model) {
	r._ThroughRef = model
}

// GetFinalRelation returns the pivot's relation that reaches the target model.
func (r *ModelRelation) GetFinalRelation() *ModelRelation {
	return r._FinalRef
}

// ToMany reports whether traversing the relation may yield several records.
func (r *ModelRelation) ToMany() bool {
	return r.Type == HasMany || r.Through != ""
}
