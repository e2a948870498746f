package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func memoryPosts() []Record {
	fr := Record{"id": 1, "name": "France", "code": "FR"}
	de := Record{"id": 2, "name": "Germany", "code": "DE"}
	ada := Record{"id": 10, "first_name": "Ada", "country": fr}
	bob := Record{"id": 11, "first_name": "Bob", "country": de}

	return []Record{
		{"id": 1, "title": "Go generics", "status": "published", "rating": 4, "author": ada,
			"tags": []Record{{"id": 1, "name": "go"}, {"id": 2, "name": "types"}}},
		{"id": 2, "title": "Rust traits", "status": "published", "rating": 5, "author": bob,
			"tags": []Record{{"id": 3, "name": "rust"}}},
		{"id": 3, "title": "Go modules", "status": "draft", "rating": 3, "author": bob,
			"tags": []any{Record{"id": 1, "name": "go"}}},
		{"id": 4, "title": "Untitled", "status": "published", "rating": nil, "author": nil},
	}
}

func ids(records []Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r["id"]
	}
	return out
}

func TestEvaluateCombinesFiltersWithAnd(t *testing.T) {
	schema := testSchema(t)
	post := mustModel(t, schema, "Post")

	plan := &QueryPlan{Source: "Post", Page: 1, PageSize: 10, Filters: []Predicate{
		{Column: ColumnRef{Attribute: "status", Entity: "Post"}, Op: OpEq, Value: "published"},
		{Column: ColumnRef{Attribute: "title", Entity: "Post"}, Op: OpContains, Value: "Go"},
	}}
	data, total, err := Evaluate(post, plan, memoryPosts())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if total != 1 || data[0]["id"] != 1 {
		t.Fatalf("expected only post 1, got %v", ids(data))
	}
}

func TestEvaluateRelationFilters(t *testing.T) {
	schema := testSchema(t)
	post := mustModel(t, schema, "Post")

	tests := []struct {
		name string
		pred Predicate
		want []any
	}{
		{
			name: "two hops through belongs_to",
			pred: Predicate{Column: ColumnRef{Relations: []string{"author", "country"}, Attribute: "code"}, Op: OpIn, Value: []any{"DE"}},
			want: []any{2, 3},
		},
		{
			name: "any related record matches",
			pred: Predicate{Column: ColumnRef{Relations: []string{"tags"}, Attribute: "name"}, Op: OpEq, Value: "go"},
			want: []any{1, 3},
		},
		{
			name: "missing related record never matches",
			pred: Predicate{Column: ColumnRef{Relations: []string{"author"}, Attribute: "first_name"}, Op: OpNull},
			want: []any{},
		},
		{
			name: "contains matches substrings",
			pred: Predicate{Column: ColumnRef{Attribute: "title"}, Op: OpContains, Value: "Go"},
			want: []any{1, 3},
		},
		{
			name: "contains is case sensitive",
			pred: Predicate{Column: ColumnRef{Attribute: "title"}, Op: OpContains, Value: "rust"},
			want: []any{},
		},
		{
			name: "equality against nil matches null",
			pred: Predicate{Column: ColumnRef{Attribute: "rating"}, Op: OpEq, Value: nil},
			want: []any{4},
		},
		{
			name: "numbers compare across types",
			pred: Predicate{Column: ColumnRef{Attribute: "rating"}, Op: OpIn, Value: []any{float64(4), float64(5)}},
			want: []any{1, 2},
		},
		{
			name: "empty membership matches nothing",
			pred: Predicate{Column: ColumnRef{Attribute: "id"}, Op: OpIn, Value: []any{}},
			want: []any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &QueryPlan{Source: "Post", Page: 1, PageSize: 10, Filters: []Predicate{tt.pred}}
			data, _, err := Evaluate(post, plan, memoryPosts())
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(data)); diff != "" {
				t.Fatalf("ids (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateSorts(t *testing.T) {
	schema := testSchema(t)
	post := mustModel(t, schema, "Post")

	tests := []struct {
		name  string
		sorts string
		want  []any
	}{
		{"nulls last ascending", "rating", []any{3, 1, 2, 4}},
		{"nulls first descending", "rating:DESC", []any{4, 2, 1, 3}},
		{"belongs_to with pk tie-breaker", "author.first_name", []any{1, 2, 3, 4}},
		{"has_many by smallest value", "tags.name", []any{1, 3, 2, 4}},
		{"has_many by largest value descending", "tags.name:DESC", []any{4, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorts, err := ParseSort(post, tt.sorts)
			if err != nil {
				t.Fatalf("ParseSort: %v", err)
			}
			plan := &QueryPlan{Source: "Post", Page: 1, PageSize: 10, Sorts: sorts}
			data, _, err := Evaluate(post, plan, memoryPosts())
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(data)); diff != "" {
				t.Fatalf("ids (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateRejectsForeignPlan(t *testing.T) {
	schema := testSchema(t)
	post := mustModel(t, schema, "Post")
	if _, _, err := Evaluate(post, &QueryPlan{Source: "Tag"}, nil); err == nil {
		t.Fatalf("expected an error for a plan built on another source")
	}
}
