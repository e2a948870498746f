package catalog

import "fmt"

// Record is one row of a catalog page, keyed by column name.
type Record = map[string]any

// Paginator is the page envelope returned to the front end.
type Paginator struct {
	CurrentPage int             `json:"current_page"`
	Data        []Record        `json:"data"`
	From        *int            `json:"from"`
	LastPage    int             `json:"last_page"`
	PerPage     int             `json:"per_page"`
	To          *int            `json:"to"`
	Total       int             `json:"total"`
	Style       PaginationStyle `json:"style"`
	Summary     string          `json:"summary,omitempty"`
}

func NewPaginator(plan *QueryPlan, total int, data []Record, style PaginationStyle) *Paginator {
	if data == nil {
		data = []Record{}
	}
	p := &Paginator{
		CurrentPage: plan.Page,
		Data:        data,
		LastPage:    1,
		PerPage:     plan.PageSize,
		Total:       total,
		Style:       style,
	}
	if plan.PageSize > 0 && total > 0 {
		p.LastPage = (total + plan.PageSize - 1) / plan.PageSize
	}
	if len(data) > 0 {
		from := plan.Offset() + 1
		to := from + len(data) - 1
		p.From, p.To = &from, &to
	}
	if style == StyleShowing {
		p.Summary = p.summary()
	}
	return p
}

func (p *Paginator) summary() string {
	if p.From == nil {
		return fmt.Sprintf("Showing 0 of %d", p.Total)
	}
	return fmt.Sprintf("Showing %d to %d of %d", *p.From, *p.To, p.Total)
}

// HasMorePages reports whether a page follows the current one.
func (p *Paginator) HasMorePages() bool {
	return p.CurrentPage < p.LastPage
}
