package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/model"
	"CatalogAPI/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleYAML = `
table: articles
attributes: [id, title, status, owner_id]
`

func testHandler(t *testing.T, db DB, st StoreBackend) *Handler {
	t.Helper()
	m, err := model.ParseModel("Article", []byte(articleYAML))
	require.NoError(t, err)
	schema := model.Schema{"Article": m}
	require.NoError(t, schema.Link())

	settings := catalog.DefaultSettings()
	settings.PerPage = 2
	settings.PaginationStyle = catalog.StyleShowing
	c, err := catalog.NewCatalog(schema, catalog.Definition{
		Name:     "MyArticles",
		Source:   "Article",
		Settings: settings,
		Columns:  []string{"id", "title"},
		Prefilters: []catalog.Prefilter{
			{Field: "status", Value: "live"},
			{Field: "owner_id", StoreKey: "owner"},
		},
		DefaultSort: "title",
		Filters:     []catalog.FilterBinding{{Label: "Title", Kind: catalog.KindTextInput}},
	})
	require.NoError(t, err)
	return &Handler{Catalogs: catalog.NewRegistry(c), DB: db, Store: st}
}

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Scan(dest ...any) error                       { return errors.New("not supported") }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.i-1], nil }

type countRow struct{ n int64 }

func (r countRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.n
	return nil
}

type fakeDB struct {
	total int64
	rows  [][]any
}

func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return &fakeRows{data: d.rows}, nil
}

func (d *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return countRow{n: d.total} }

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("no transactions in tests")
}

type memStore map[string]catalog.MapStore

func (m memStore) Save(_ context.Context, values map[string]any) (string, error) {
	id := "00000000-0000-0000-0000-000000000001"
	m[id] = values
	return id, nil
}

func (m memStore) Load(_ context.Context, id string) (catalog.MapStore, error) {
	if id == "bad" {
		return nil, store.ErrInvalidID
	}
	return m[id], nil
}

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestBrowseReturnsPageWithSettings(t *testing.T) {
	db := &fakeDB{total: 3, rows: [][]any{{int64(1), "Alpha"}, {int64(2), "Beta"}}}
	h := testHandler(t, db, memStore{})

	rec := post(t, h.Browse, `{"catalog":"MyArticles","filters":{"title":"a"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "MyArticles", out["catalog"])
	assert.EqualValues(t, 3, out["total"])
	assert.EqualValues(t, 2, out["last_page"])
	assert.Equal(t, "Showing 1 to 2 of 3", out["summary"])
	assert.Len(t, out["data"], 2)
	assert.Len(t, out["filters"], 1)
	settings := out["settings"].(map[string]any)
	assert.EqualValues(t, 2, settings["per_page"])
}

func TestBrowseErrorStatuses(t *testing.T) {
	h := testHandler(t, &fakeDB{}, memStore{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown catalog", `{"catalog":"Nope"}`, http.StatusNotFound},
		{"undeclared filter", `{"catalog":"MyArticles","filters":{"status":"draft"}}`, http.StatusBadRequest},
		{"bad sort", `{"catalog":"MyArticles","sort":"title:UP"}`, http.StatusBadRequest},
		{"list for text input", `{"catalog":"MyArticles","filters":{"title":["a","b"]}}`, http.StatusBadRequest},
		{"malformed store id", `{"catalog":"MyArticles","store_id":"bad"}`, http.StatusBadRequest},
		{"invalid json", `{"catalog":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h.Browse, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestBrowseRejectsGet(t *testing.T) {
	h := testHandler(t, &fakeDB{}, nil)
	rec := httptest.NewRecorder()
	h.Browse(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestPlanUsesStoredValues(t *testing.T) {
	st := memStore{"00000000-0000-0000-0000-000000000002": {"owner": int64(42)}}
	h := testHandler(t, nil, st)

	rec := post(t, h.Plan, `{"catalog":"MyArticles","store_id":"00000000-0000-0000-0000-000000000002","page":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		SQL       string `json:"sql"`
		Args      []any  `json:"args"`
		CountSQL  string `json:"count_sql"`
		CountArgs []any  `json:"count_args"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t,
		"SELECT main.id, main.title FROM articles AS main WHERE main.status = $1 AND main.owner_id = $2 ORDER BY main.title ASC, main.id ASC LIMIT 2 OFFSET 2",
		out.SQL)
	assert.Equal(t, []any{"live", float64(42)}, out.Args)
	assert.Equal(t, "SELECT COUNT(*) FROM articles AS main WHERE main.status = $1 AND main.owner_id = $2", out.CountSQL)
	assert.Equal(t, out.Args, out.CountArgs)
}

func TestReorderRequiresOrderableCatalog(t *testing.T) {
	h := testHandler(t, &fakeDB{}, nil)
	rec := post(t, h.Reorder, `{"catalog":"MyArticles","ids":[3,1,2]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestSaveStore(t *testing.T) {
	st := memStore{}
	h := testHandler(t, nil, st)

	rec := post(t, h.SaveStore, `{"values":{"owner":7}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["store_id"].(string)
	assert.Equal(t, float64(7), st[id]["owner"])

	h.Store = nil
	rec = post(t, h.SaveStore, `{"values":{}}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
}
