package catalog

import (
	"fmt"
	"math"
	"strings"
)

// ComponentKind is the kind of field component a filter is attached to.
// It decides the predicate operator.
type ComponentKind int

const (
	KindOther ComponentKind = iota
	KindMultiValue
	KindTextInput
)

func (k ComponentKind) String() string {
	switch k {
	case KindMultiValue:
		return "multi_value"
	case KindTextInput:
		return "text_input"
	default:
		return "other"
	}
}

var multiValueComponents = map[string]bool{
	"multiselect":   true,
	"selectbuttons": true,
	"selectlinks":   true,
	"checkboxes":    true,
	"multiimage":    true,
	"tags":          true,
}

var textInputComponents = map[string]bool{
	"input":       true,
	"textarea":    true,
	"searchinput": true,
}

// KindForComponent maps a front-end component name to its ComponentKind.
func KindForComponent(component string) ComponentKind {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(component), "_", ""))
	switch {
	case multiValueComponents[key]:
		return KindMultiValue
	case textInputComponents[key]:
		return KindTextInput
	default:
		return KindOther
	}
}

type Operator string

const (
	OpIn       Operator = "in"
	OpContains Operator = "contains"
	OpEq       Operator = "eq"
	OpNull     Operator = "null"
	OpNotNull  Operator = "not_null"
)

func (o Operator) valid() bool {
	switch o {
	case OpIn, OpContains, OpEq, OpNull, OpNotNull:
		return true
	}
	return false
}

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ColumnRef addresses an attribute reached from the base entity through zero
// or more relations. Entity is the model that owns Attribute.
type ColumnRef struct {
	Relations []string `json:"relations,omitempty"`
	Attribute string   `json:"attribute"`
	Entity    string   `json:"entity"`
}

// Path renders the reference back into its dot form.
func (c ColumnRef) Path() string {
	if len(c.Relations) == 0 {
		return c.Attribute
	}
	return strings.Join(c.Relations, ".") + "." + c.Attribute
}

// Predicate is one resolved filter. A plan ANDs all of its predicates.
type Predicate struct {
	Column    ColumnRef `json:"column"`
	Op        Operator  `json:"op"`
	Value     any       `json:"value,omitempty"`
	Permanent bool      `json:"permanent"`
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Column.Path(), p.Op, p.Value)
}

type SortClause struct {
	Column    ColumnRef `json:"column"`
	Direction Direction `json:"direction"`
	Permanent bool      `json:"permanent"`
}

func (s SortClause) String() string {
	return s.Column.Path() + ":" + string(s.Direction)
}

// QueryPlan is the immutable result of one resolution pass.
type QueryPlan struct {
	Catalog  string       `json:"catalog"`
	Source   string       `json:"source"`
	Filters  []Predicate  `json:"filters"`
	Sorts    []SortClause `json:"sorts"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Columns  []string     `json:"columns"`
}

// Offset returns the number of records skipped before the current page.
func (p *QueryPlan) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt / p.PageSize * p.PageSize
	}
	return (p.Page - 1) * p.PageSize
}

// Store is the read-only key/value context a catalog may reference
// (parameters stored when the catalog was embedded).
type Store interface {
	Lookup(key string) (any, bool)
}

// MapStore is a Store over a plain map.
type MapStore map[string]any

func (s MapStore) Lookup(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s[key]
	return v, ok
}
