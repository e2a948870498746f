//go:build integration

package itests

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func saveStore(t *testing.T, values map[string]any) string {
	t.Helper()
	var out struct {
		StoreID string `json:"store_id"`
	}
	if status := postJSON(t, "/api/store", map[string]any{"values": values}, &out); status != http.StatusCreated {
		t.Fatalf("save store: status %d", status)
	}
	return out.StoreID
}

func TestStoreScopesBrowse(t *testing.T) {
	storeID := saveStore(t, map[string]any{"question_id": 2})

	var got page
	status := postJSON(t, "/api/catalog/browse", map[string]any{"catalog": "QuestionAnswers", "store_id": storeID}, &got)
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	want := queryIDs(t, `SELECT id FROM answers WHERE question_id = 2 ORDER BY position ASC, id ASC`)
	if diff := cmp.Diff(want, got.ids()); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
}

func TestReorderAnswers(t *testing.T) {
	storeID := saveStore(t, map[string]any{"question_id": 1})
	ids := queryIDs(t, `SELECT id FROM answers WHERE question_id = 1 ORDER BY position ASC, id ASC`)
	if len(ids) < 3 {
		t.Fatalf("sample data needs three answers for question 1, got %v", ids)
	}
	reversed := []any{ids[2], ids[1], ids[0]}

	var out struct {
		Updated int `json:"updated"`
	}
	status := postJSON(t, "/api/catalog/reorder", map[string]any{
		"catalog":  "QuestionAnswers",
		"store_id": storeID,
		"ids":      reversed,
	}, &out)
	if status != http.StatusOK || out.Updated != 3 {
		t.Fatalf("reorder: status %d, updated %d", status, out.Updated)
	}

	got := queryIDs(t, `SELECT id FROM answers WHERE question_id = 1 ORDER BY position ASC, id ASC`)
	if diff := cmp.Diff(reversed, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	// an answer of another question is outside the catalog scope
	foreign := queryIDs(t, `SELECT id FROM answers WHERE question_id = 2 ORDER BY id LIMIT 1`)
	status = postJSON(t, "/api/catalog/reorder", map[string]any{
		"catalog":  "QuestionAnswers",
		"store_id": storeID,
		"ids":      []any{ids[0], foreign[0]},
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for an out of scope id, got %d", status)
	}
	after := queryIDs(t, `SELECT id FROM answers WHERE question_id = 1 ORDER BY position ASC, id ASC`)
	if diff := cmp.Diff(reversed, after); diff != "" {
		t.Fatalf("rejected reorder must not change positions (-want +got):\n%s", diff)
	}
}

func TestReorderRejectsCatalogWithoutOrderable(t *testing.T) {
	status := postJSON(t, "/api/catalog/reorder", map[string]any{"catalog": "PublishedPosts", "ids": []any{1}}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}
