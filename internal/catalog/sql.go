package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"CatalogAPI/internal/model"

	"github.com/Masterminds/squirrel"
)

// BuildIndexQuery compiles a plan into the page SELECT for Postgres.
//
// Relation filters become nested EXISTS semi-joins, one per hop, so a
// has_many match never duplicates base rows. Relation sorts join belongs_to
// and has_one targets and aggregate has_many ones. Primary keys are appended
// as the last ordering so pages are stable.
func BuildIndexQuery(base *model.Model, plan *QueryPlan) (squirrel.SelectBuilder, error) {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar)
	if err := checkSource(base, plan); err != nil {
		return sb, err
	}

	cols := make([]string, len(plan.Columns))
	for i, c := range plan.Columns {
		cols[i] = "main." + c
	}
	sb = sb.Columns(cols...).From(fmt.Sprintf("%s AS main", base.Table))

	sb, err := applyFilters(sb, base, plan.Filters)
	if err != nil {
		return sb, err
	}

	sb, err = applySorts(sb, base, plan.Sorts)
	if err != nil {
		return sb, err
	}

	if plan.PageSize > 0 {
		sb = sb.Limit(uint64(plan.PageSize))
	}
	if off := plan.Offset(); off > 0 {
		sb = sb.Offset(uint64(off))
	}
	return sb, nil
}

// BuildCountQuery counts every record matching the plan's filters.
func BuildCountQuery(base *model.Model, plan *QueryPlan) (squirrel.SelectBuilder, error) {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar)
	if err := checkSource(base, plan); err != nil {
		return sb, err
	}
	sb = sb.Columns("COUNT(*)").From(fmt.Sprintf("%s AS main", base.Table))
	return applyFilters(sb, base, plan.Filters)
}

func checkSource(base *model.Model, plan *QueryPlan) error {
	if base == nil || plan == nil {
		return fmt.Errorf("compile plan: missing base model or plan")
	}
	if plan.Source != base.Name {
		return fmt.Errorf("compile plan: plan source %q does not match model %q", plan.Source, base.Name)
	}
	return nil
}

// BuildReorderUpdate sets the orderable column of one record to position.
// The record must also satisfy every permanent filter of the plan, so an id
// outside the catalog scope updates nothing.
func BuildReorderUpdate(base *model.Model, plan *QueryPlan, column string, id any, position int) (squirrel.UpdateBuilder, error) {
	ub := squirrel.UpdateBuilder{}.PlaceholderFormat(squirrel.Dollar)
	if err := checkSource(base, plan); err != nil {
		return ub, err
	}
	if !base.HasAttribute(column) {
		return ub, resolveErr(ErrUnknownAttribute, base.Name, column, "orderable column")
	}

	pks := base.GetPrimaryKeys()
	if len(pks) != 1 {
		return ub, fmt.Errorf("reorder %s: needs a single-column primary key, got %v", base.Name, pks)
	}

	ub = ub.Table(fmt.Sprintf("%s AS main", base.Table)).
		Set(column, position).
		Where(squirrel.Eq{"main." + pks[0]: id})

	var permanent []Predicate
	for _, p := range plan.Filters {
		if p.Permanent {
			permanent = append(permanent, p)
		}
	}
	conds, err := Conditions(base, permanent)
	if err != nil {
		return ub, err
	}
	for _, c := range conds {
		ub = ub.Where(c)
	}
	return ub, nil
}

// Conditions compiles predicates into WHERE parts, one per predicate.
func Conditions(base *model.Model, filters []Predicate) ([]squirrel.Sqlizer, error) {
	out := make([]squirrel.Sqlizer, 0, len(filters))
	for i, p := range filters {
		cond, err := predicateSQL(base, p, fmt.Sprintf("f%d", i))
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func applyFilters(sb squirrel.SelectBuilder, base *model.Model, filters []Predicate) (squirrel.SelectBuilder, error) {
	conds, err := Conditions(base, filters)
	if err != nil {
		return sb, err
	}
	for _, c := range conds {
		sb = sb.Where(c)
	}
	return sb, nil
}

func predicateSQL(base *model.Model, p Predicate, prefix string) (squirrel.Sqlizer, error) {
	if len(p.Column.Relations) == 0 {
		return condition("main."+p.Column.Attribute, p), nil
	}
	return existsChain(base, "main", p.Column.Relations, p, prefix, 0)
}

// existsChain emits EXISTS (SELECT 1 FROM <target> WHERE <link> AND <next>)
// for each remaining hop, with the value condition at the innermost level.
func existsChain(parent *model.Model, parentAlias string, rels []string, p Predicate, prefix string, depth int) (squirrel.Sqlizer, error) {
	rel := parent.GetRelation(rels[0])
	if rel == nil || rel.GetModelRef() == nil {
		return nil, resolveErr(ErrUnknownRelationship, parent.Name, p.Column.Path(), "")
	}
	alias := fmt.Sprintf("%s_%d", prefix, depth)
	sub := relationFrom(squirrel.Select("1"), rel, parentAlias, alias)

	if len(rels) == 1 {
		sub = sub.Where(condition(alias+"."+p.Column.Attribute, p))
	} else {
		inner, err := existsChain(rel.GetModelRef(), alias, rels[1:], p, prefix, depth+1)
		if err != nil {
			return nil, err
		}
		sub = sub.Where(inner)
	}
	return squirrel.Expr("EXISTS (?)", sub), nil
}

// relationFrom adds the FROM clause and the correlation to parentAlias.
func relationFrom(sb squirrel.SelectBuilder, rel *model.ModelRelation, parentAlias, alias string) squirrel.SelectBuilder {
	target := rel.GetModelRef()
	sb = sb.From(fmt.Sprintf("%s AS %s", target.Table, alias))

	switch {
	case rel.GetThroughRef() != nil:
		pivot, final := rel.GetThroughRef(), rel.GetFinalRelation()
		pa := alias + "p"
		sb = sb.Join(fmt.Sprintf("%s AS %s ON %s.%s = %s.%s", pivot.Table, pa, pa, final.FK, alias, final.PK)).
			Where(fmt.Sprintf("%s.%s = %s.%s", pa, rel.FK, parentAlias, rel.PK))
	case rel.Type == model.BelongsTo:
		sb = sb.Where(fmt.Sprintf("%s.%s = %s.%s", alias, rel.PK, parentAlias, rel.FK))
	default:
		sb = sb.Where(fmt.Sprintf("%s.%s = %s.%s", alias, rel.FK, parentAlias, rel.PK))
	}

	if scope := scopeSQL(rel.Where, alias); scope != "" {
		sb = sb.Where(scope)
	}
	return sb
}

func condition(col string, p Predicate) squirrel.Sqlizer {
	switch p.Op {
	case OpIn:
		list, _ := asList(p.Value)
		if list == nil {
			list = []any{}
		}
		return squirrel.Eq{col: list}
	case OpContains:
		// an unset store value must not widen the scope to every row
		if p.Value == nil {
			return squirrel.Expr("(1=0)")
		}
		return squirrel.Like{col: likePattern(scalarString(p.Value))}
	case OpNull:
		return squirrel.Eq{col: nil}
	case OpNotNull:
		return squirrel.NotEq{col: nil}
	default:
		return squirrel.Eq{col: p.Value}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps v for a substring LIKE match, escaping wildcards.
func likePattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}

// scope columns are written as ".column"
var scopeColumn = regexp.MustCompile(`(^|[^\w.])\.([A-Za-z_]\w*)`)

func scopeSQL(where, alias string) string {
	where = strings.TrimSpace(where)
	if where == "" {
		return ""
	}
	return scopeColumn.ReplaceAllString(where, "${1}"+alias+".${2}")
}

func applySorts(sb squirrel.SelectBuilder, base *model.Model, sorts []SortClause) (squirrel.SelectBuilder, error) {
	joined := map[string]string{}
	sortedPK := map[string]bool{}

	for i, s := range sorts {
		if len(s.Column.Relations) == 0 {
			sb = sb.OrderBy(fmt.Sprintf("main.%s %s", s.Column.Attribute, s.Direction))
			sortedPK[s.Column.Attribute] = true
			continue
		}

		relName := s.Column.Relations[0]
		rel := base.GetRelation(relName)
		if rel == nil || rel.GetModelRef() == nil {
			return sb, resolveErr(ErrUnknownRelationship, base.Name, s.Column.Path(), "")
		}

		if rel.ToMany() {
			expr, err := aggregateSort(rel, s, fmt.Sprintf("s%d", i))
			if err != nil {
				return sb, err
			}
			sb = sb.OrderBy(expr)
			continue
		}

		alias, ok := joined[relName]
		if !ok {
			alias = fmt.Sprintf("t%d", len(joined))
			joined[relName] = alias
			sb = sb.LeftJoin(joinClause(rel, alias))
		}
		sb = sb.OrderBy(fmt.Sprintf("%s.%s %s", alias, s.Column.Attribute, s.Direction))
	}

	for _, pk := range base.GetPrimaryKeys() {
		if !sortedPK[pk] {
			sb = sb.OrderBy(fmt.Sprintf("main.%s ASC", pk))
		}
	}
	return sb, nil
}

func joinClause(rel *model.ModelRelation, alias string) string {
	var on string
	if rel.Type == model.BelongsTo {
		on = fmt.Sprintf("main.%s = %s.%s", rel.FK, alias, rel.PK)
	} else {
		on = fmt.Sprintf("%s.%s = main.%s", alias, rel.FK, rel.PK)
	}
	if scope := scopeSQL(rel.Where, alias); scope != "" {
		on = fmt.Sprintf("(%s) AND (%s)", on, scope)
	}
	return fmt.Sprintf("%s AS %s ON %s", rel.GetModelRef().Table, alias, on)
}

// aggregateSort orders by the smallest (ASC) or largest (DESC) related value.
func aggregateSort(rel *model.ModelRelation, s SortClause, alias string) (string, error) {
	agg := "MIN"
	if s.Direction == Desc {
		agg = "MAX"
	}
	sub := relationFrom(squirrel.Select(fmt.Sprintf("%s(%s.%s)", agg, alias, s.Column.Attribute)), rel, "main", alias)
	sql, args, err := sub.ToSql()
	if err != nil {
		return "", err
	}
	if len(args) > 0 {
		return "", fmt.Errorf("sort %s: relation scope must not take arguments", s.Column.Path())
	}
	return fmt.Sprintf("(%s) %s", sql, s.Direction), nil
}
