package catalog

import (
	"fmt"
	"strings"

	"CatalogAPI/internal/model"
)

// Relationship hops allowed before the final attribute.
const (
	MaxFilterHops = 2
	MaxSortHops   = 1
)

// resolvePath walks a dot path ("relation.relation.attribute") from base.
// The hop count is checked before any segment is looked up.
func resolvePath(base *model.Model, path string, maxHops int) (ColumnRef, error) {
	path = strings.TrimSpace(path)
	if base == nil {
		return ColumnRef{}, resolveErr(ErrUnknownAttribute, "", path, "no base entity")
	}
	if path == "" {
		return ColumnRef{}, resolveErr(ErrUnknownAttribute, base.Name, path, "empty path")
	}

	segs := strings.Split(path, ".")
	for _, s := range segs {
		if strings.TrimSpace(s) == "" {
			return ColumnRef{}, resolveErr(ErrUnknownAttribute, base.Name, path, "empty path segment")
		}
	}
	hops := len(segs) - 1
	if hops > maxHops {
		return ColumnRef{}, resolveErr(ErrUnsupportedNestingDepth, base.Name, path,
			fmt.Sprintf("%d relationship hops, at most %d allowed", hops, maxHops))
	}

	cur := base
	relations := make([]string, 0, hops)
	for _, seg := range segs[:hops] {
		seg = strings.TrimSpace(seg)
		rel := cur.GetRelation(seg)
		if rel == nil || rel.GetModelRef() == nil {
			return ColumnRef{}, resolveErr(ErrUnknownRelationship, cur.Name, path,
				fmt.Sprintf("%q is not a relation of %s", seg, cur.Name))
		}
		relations = append(relations, seg)
		cur = rel.GetModelRef()
	}

	attr := strings.TrimSpace(segs[hops])
	if !cur.HasAttribute(attr) {
		return ColumnRef{}, resolveErr(ErrUnknownAttribute, cur.Name, path,
			fmt.Sprintf("%q is not an attribute of %s", attr, cur.Name))
	}

	ref := ColumnRef{Attribute: attr, Entity: cur.Name}
	if len(relations) > 0 {
		ref.Relations = relations
	}
	return ref, nil
}
