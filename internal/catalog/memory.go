package catalog

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"CatalogAPI/internal/model"
)

// Evaluate applies a plan to records already held in memory. Related records
// are nested under the relation name: a map for belongs_to and has_one, a
// slice of maps for has_many and through relations. Results match what the
// SQL compilation returns for the same data, including NULL ordering.
func Evaluate(base *model.Model, plan *QueryPlan, records []Record) ([]Record, int, error) {
	if err := checkSource(base, plan); err != nil {
		return nil, 0, err
	}

	matched := make([]Record, 0, len(records))
	for _, r := range records {
		ok, err := matchesAll(base, r, plan.Filters)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, r)
		}
	}

	keys := make([]func(Record) any, 0, len(plan.Sorts)+1)
	dirs := make([]Direction, 0, len(plan.Sorts)+1)
	sortedPK := map[string]bool{}
	for _, s := range plan.Sorts {
		key, err := sortKey(base, s)
		if err != nil {
			return nil, 0, err
		}
		keys = append(keys, key)
		dirs = append(dirs, s.Direction)
		if len(s.Column.Relations) == 0 {
			sortedPK[s.Column.Attribute] = true
		}
	}
	for _, pk := range base.GetPrimaryKeys() {
		if !sortedPK[pk] {
			keys = append(keys, attrKey(pk))
			dirs = append(dirs, Asc)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for k, key := range keys {
			c := compareValues(key(matched[i]), key(matched[j]))
			if c == 0 {
				continue
			}
			if dirs[k] == Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	total := len(matched)
	start := min(plan.Offset(), total)
	end := total
	if plan.PageSize > 0 {
		end = min(start+plan.PageSize, total)
	}
	return matched[start:end], total, nil
}

func matchesAll(base *model.Model, r Record, filters []Predicate) (bool, error) {
	for _, p := range filters {
		if len(p.Column.Relations) == 0 {
			if !matchValue(r[p.Column.Attribute], p) {
				return false, nil
			}
			continue
		}
		related, err := walk(base, []Record{r}, p.Column)
		if err != nil {
			return false, err
		}
		found := false
		for _, rr := range related {
			if matchValue(rr[p.Column.Attribute], p) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

// walk follows the relation hops of col and returns the records reached.
func walk(base *model.Model, from []Record, col ColumnRef) ([]Record, error) {
	cur := base
	for _, name := range col.Relations {
		rel := cur.GetRelation(name)
		if rel == nil || rel.GetModelRef() == nil {
			return nil, resolveErr(ErrUnknownRelationship, cur.Name, col.Path(), "")
		}
		var next []Record
		for _, r := range from {
			next = append(next, nested(r[name])...)
		}
		from = next
		cur = rel.GetModelRef()
	}
	return from, nil
}

func nested(v any) []Record {
	switch t := v.(type) {
	case nil:
		return nil
	case Record:
		return []Record{t}
	case []Record:
		return t
	case []any:
		out := make([]Record, 0, len(t))
		for _, e := range t {
			if m, ok := e.(Record); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func matchValue(v any, p Predicate) bool {
	switch p.Op {
	case OpNull:
		return v == nil
	case OpNotNull:
		return v != nil
	case OpIn:
		if v == nil {
			return false
		}
		list, _ := asList(p.Value)
		for _, want := range list {
			if compareValues(v, want) == 0 {
				return true
			}
		}
		return false
	case OpContains:
		if v == nil || p.Value == nil {
			return false
		}
		return strings.Contains(scalarString(v), scalarString(p.Value))
	default:
		if p.Value == nil {
			return v == nil
		}
		return v != nil && compareValues(v, p.Value) == 0
	}
}

func attrKey(attr string) func(Record) any {
	return func(r Record) any { return r[attr] }
}

func sortKey(base *model.Model, s SortClause) (func(Record) any, error) {
	if len(s.Column.Relations) == 0 {
		return attrKey(s.Column.Attribute), nil
	}
	rel := base.GetRelation(s.Column.Relations[0])
	if rel == nil || rel.GetModelRef() == nil {
		return nil, resolveErr(ErrUnknownRelationship, base.Name, s.Column.Path(), "")
	}
	attr := s.Column.Attribute
	toMany := rel.ToMany()
	return func(r Record) any {
		related := nested(r[s.Column.Relations[0]])
		if !toMany {
			if len(related) == 0 {
				return nil
			}
			return related[0][attr]
		}
		// MIN for ascending, MAX for descending, NULLs ignored
		var best any
		for _, rr := range related {
			v := rr[attr]
			if v == nil {
				continue
			}
			c := compareValues(v, best)
			if best == nil || (s.Direction == Desc && c > 0) || (s.Direction != Desc && c < 0) {
				best = v
			}
		}
		return best
	}, nil
}

// compareValues orders two column values. nil sorts after everything else.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
