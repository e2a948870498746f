package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"CatalogAPI/internal/model"
)

// FilterBinding is a field component declared as a catalog filter.
type FilterBinding struct {
	Key   string        `json:"key,omitempty"` // dot path, may be empty
	Label string        `json:"label"`
	Kind  ComponentKind `json:"kind"`
}

// FieldKey is the key the binding filters on and the request key its value
// is submitted under. An empty Key falls back to the snake-cased label.
func (b FilterBinding) FieldKey() string {
	if k := strings.TrimSpace(b.Key); k != "" {
		return k
	}
	return model.SnakeCase(b.Label)
}

// ResolveBinding resolves the binding's column without looking at a value.
func ResolveBinding(base *model.Model, b FilterBinding) (ColumnRef, error) {
	key := b.FieldKey()
	if key == "" {
		return ColumnRef{}, resolveErr(ErrUnknownAttribute, entityName(base), "", "filter has neither key nor label")
	}
	return resolvePath(base, key, MaxFilterHops)
}

// ResolveFilter maps a binding and its submitted value to a predicate.
// Operator priority: multi-value components test membership, text inputs test
// substring containment, everything else tests equality.
func ResolveFilter(base *model.Model, b FilterBinding, value any) (Predicate, error) {
	col, err := ResolveBinding(base, b)
	if err != nil {
		return Predicate{}, err
	}
	return predicateFor(col, b, value)
}

func predicateFor(col ColumnRef, b FilterBinding, value any) (Predicate, error) {
	list, isList := asList(value)
	switch b.Kind {
	case KindMultiValue:
		if !isList {
			list = []any{value}
		}
		return Predicate{Column: col, Op: OpIn, Value: list}, nil
	case KindTextInput:
		if isList {
			return Predicate{}, resolveErr(ErrInvalidValue, col.Entity, col.Path(), "text input expects a single value")
		}
		return Predicate{Column: col, Op: OpContains, Value: scalarString(value)}, nil
	default:
		if isList {
			return Predicate{}, resolveErr(ErrInvalidValue, col.Entity, col.Path(),
				fmt.Sprintf("%s filter expects a single value", b.Kind))
		}
		return Predicate{Column: col, Op: OpEq, Value: value}, nil
	}
}

// asList converts slices and arrays (except []byte) into []any.
func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// isEmptyValue reports a cleared filter: nil, blank string or empty list.
func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	if list, ok := asList(value); ok {
		return len(list) == 0
	}
	return false
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		// JSON numbers arrive as float64; "12" reads better than "12.000000"
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
	}
	return fmt.Sprint(value)
}

func entityName(m *model.Model) string {
	if m == nil {
		return ""
	}
	return m.Name
}
