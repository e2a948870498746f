package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSort(t *testing.T) {
	schema := testSchema(t)
	post := mustModel(t, schema, "Post")

	tests := []struct {
		spec string
		want []SortClause
	}{
		{"", nil},
		{" | ", nil},
		{"title", []SortClause{
			{Column: ColumnRef{Attribute: "title", Entity: "Post"}, Direction: Asc},
		}},
		{"rating:desc|title", []SortClause{
			{Column: ColumnRef{Attribute: "rating", Entity: "Post"}, Direction: Desc},
			{Column: ColumnRef{Attribute: "title", Entity: "Post"}, Direction: Asc},
		}},
		{"author.first_name:Asc| id :DESC", []SortClause{
			{Column: ColumnRef{Relations: []string{"author"}, Attribute: "first_name", Entity: "User"}, Direction: Asc},
			{Column: ColumnRef{Attribute: "id", Entity: "Post"}, Direction: Desc},
		}},
		{"rating:DESC|title|id:DESC", []SortClause{
			{Column: ColumnRef{Attribute: "rating", Entity: "Post"}, Direction: Desc},
			{Column: ColumnRef{Attribute: "title", Entity: "Post"}, Direction: Asc},
			{Column: ColumnRef{Attribute: "id", Entity: "Post"}, Direction: Desc},
		}},
		{"|title||", []SortClause{
			{Column: ColumnRef{Attribute: "title", Entity: "Post"}, Direction: Asc},
		}},
	}

	for _, tt := range tests {
		got, err := ParseSort(post, tt.spec)
		if err != nil {
			t.Fatalf("ParseSort(%q): %v", tt.spec, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("ParseSort(%q) mismatch (-want +got):\n%s", tt.spec, diff)
		}
	}
}

func TestParseSortErrors(t *testing.T) {
	schema := testSchema(t)
	post := mustModel(t, schema, "Post")

	tests := map[string]error{
		"title:UP":              ErrInvalidDirection,
		"title:":                ErrInvalidDirection,
		"title|rating:sideways": ErrInvalidDirection,
		"author.country.code":   ErrUnsupportedNestingDepth,
		"publisher.name":        ErrUnknownRelationship,
		"author.nickname":       ErrUnknownAttribute,
		"headline":              ErrUnknownAttribute,
	}
	for spec, want := range tests {
		if _, err := ParseSort(post, spec); !errors.Is(err, want) {
			t.Fatalf("ParseSort(%q): expected %v, got %v", spec, want, err)
		}
	}
}
