package catalog

import (
	"fmt"
	"strings"

	"CatalogAPI/internal/model"
)

// ParseSort parses "col[:DIR]|col2[:DIR]" into ordered sort clauses. The first
// segment is the primary key, the following ones break ties. Direction
// defaults to ASC and is case-insensitive.
func ParseSort(base *model.Model, spec string) ([]SortClause, error) {
	var clauses []SortClause
	for _, seg := range strings.Split(spec, "|") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		path, token, hasDir := strings.Cut(seg, ":")
		dir := Asc
		if hasDir {
			switch strings.ToUpper(strings.TrimSpace(token)) {
			case "ASC":
				dir = Asc
			case "DESC":
				dir = Desc
			default:
				return nil, resolveErr(ErrInvalidDirection, entityName(base), seg,
					fmt.Sprintf("direction %q is not ASC or DESC", strings.TrimSpace(token)))
			}
		}

		col, err := resolvePath(base, path, MaxSortHops)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, SortClause{Column: col, Direction: dir})
	}
	return clauses, nil
}
