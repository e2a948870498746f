package catalog

import (
	"math"
	"sort"
	"strings"
)

// Request is the transient part of a query: what the user picked on screen.
type Request struct {
	Filters map[string]any `json:"filters"`
	Sort    string         `json:"sort"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// BuildPlan merges the catalog's permanent constraints with req into a plan.
// Permanent filters and presort always come first and cannot be removed by
// the request. BuildPlan reads store but never writes to it, and leaves the
// catalog untouched.
func (c *Catalog) BuildPlan(req Request, store Store) (*QueryPlan, error) {
	if err := c.checkDeclared(req.Filters); err != nil {
		return nil, err
	}

	plan := &QueryPlan{
		Catalog: c.name,
		Source:  c.source.Name,
		Columns: c.Columns(),
	}

	for _, pf := range c.prefilters {
		p, err := pf.predicate(store)
		if err != nil {
			return nil, err
		}
		plan.Filters = append(plan.Filters, p)
	}

	for _, b := range c.bindings {
		v, ok := req.Filters[b.key]
		if !ok || isEmptyValue(v) {
			continue
		}
		p, err := predicateFor(b.column, b.FilterBinding, v)
		if err != nil {
			return nil, err
		}
		plan.Filters = append(plan.Filters, p)
	}

	plan.Sorts = append(plan.Sorts, c.presort...)
	transient := c.defaultSort
	if strings.TrimSpace(req.Sort) != "" {
		parsed, err := ParseSort(c.source, req.Sort)
		if err != nil {
			return nil, err
		}
		if len(parsed) > 0 {
			transient = parsed
		}
	}
	plan.Sorts = append(plan.Sorts, transient...)

	plan.Page, plan.PageSize = c.pageWindow(req.Page, req.PerPage)
	return plan, nil
}

func (c *Catalog) checkDeclared(filters map[string]any) error {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := c.bindingIdx[k]; !ok {
			return resolveErr(ErrUndeclaredFilter, c.source.Name, k, "no filter of catalog "+c.name+" uses this key")
		}
	}
	return nil
}

func (c *Catalog) pageWindow(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	size := c.settings.PerPage
	if perPage > 0 {
		size = min(perPage, c.settings.MaxPerPage)
	}
	// keep (page-1)*size representable
	if maxPage := math.MaxInt / size; page > maxPage {
		page = maxPage
	}
	return page, size
}

// predicate binds the prefilter to its value. A store value goes through the
// same shape checks as a declared one.
func (pf resolvedPrefilter) predicate(store Store) (Predicate, error) {
	p := Predicate{Column: pf.column, Op: pf.Op, Value: pf.Value, Permanent: true}
	if pf.StoreKey != "" {
		p.Value = nil
		if store != nil {
			if v, ok := store.Lookup(pf.StoreKey); ok {
				p.Value = v
			}
		}
	}
	if _, isList := asList(p.Value); isList && p.Op != OpIn {
		return Predicate{}, resolveErr(ErrInvalidValue, pf.column.Entity, pf.column.Path(),
			"store key "+pf.StoreKey+" holds a list, op "+string(p.Op)+" needs a single value")
	}
	switch p.Op {
	case OpIn:
		list, isList := asList(p.Value)
		if !isList {
			list = []any{}
			if p.Value != nil {
				list = []any{p.Value}
			}
		}
		p.Value = list
	case OpContains:
		if p.Value != nil {
			p.Value = scalarString(p.Value)
		}
	case OpNull, OpNotNull:
		p.Value = nil
	}
	return p, nil
}
