package screens

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/erpdesk/internal/erpapi"
	"github.com/five82/erpdesk/internal/notice"
	"github.com/five82/erpdesk/internal/search"
)

func TestCatalogRegisters(t *testing.T) {
	r := Default()
	assert.Len(t, r.All(), len(Catalog()))

	d, ok := r.Lookup("/app/fcm/gl/slip/?tab=1")
	require.True(t, ok)
	assert.Equal(t, "GL Slips", d.Title)

	_, ok = r.Lookup("/app/unknown")
	assert.False(t, ok)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(Definition{Route: "/app/a"}, Definition{Route: "/app/a/"})
	assert.ErrorContains(t, err, "duplicate screen route")

	_, err = NewRegistry(Definition{Title: "No route"})
	assert.ErrorContains(t, err, "has no route")
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("  period=2026-09 cash  account=1101 advance ")
	assert.Equal(t, "cash advance", q.Keyword)
	assert.Equal(t, map[string]string{"period": "2026-09", "account": "1101"}, q.Params)
	assert.Equal(t, "account=1101 period=2026-09 cash advance", q.String())

	assert.Equal(t, Query{}, ParseQuery(""))
	assert.Equal(t, Query{Keyword: "=x"}, ParseQuery("=x"))
}

func TestDefinitionValidate(t *testing.T) {
	d := Definition{Required: []string{"period"}}
	assert.EqualError(t, d.Validate(Query{}), "period is required")
	assert.EqualError(t, d.Validate(Query{Params: map[string]string{"period": " "}}), "period is required")
	assert.NoError(t, d.Validate(Query{Params: map[string]string{"period": "2026-09"}}))
}

func TestCell(t *testing.T) {
	row := Row{"s": "x", "n": 1234.5, "i": float64(100), "b": true, "nil": nil}
	assert.Equal(t, "x", Cell(row, "s"))
	assert.Equal(t, "1234.5", Cell(row, "n"))
	assert.Equal(t, "100", Cell(row, "i"))
	assert.Equal(t, "Y", Cell(row, "b"))
	assert.Equal(t, "", Cell(row, "nil"))
	assert.Equal(t, "", Cell(row, "missing"))
}

type sinkFunc func(notice.Level, string)

func (f sinkFunc) Notify(l notice.Level, m string) { f(l, m) }

func TestNewStoreAgainstBackend(t *testing.T) {
	var body Query
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/fcm/gl/slips/search", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":[{"slipNo":"GL-1","debitAmount":500}]}`)
	}))
	defer srv.Close()

	client, err := erpapi.NewClient(srv.URL)
	require.NoError(t, err)
	d, _ := Default().Lookup("/app/fcm/gl/slip")

	var notices []string
	store := NewStore(d, Adapt(client), search.WithNotifier(sinkFunc(func(_ notice.Level, m string) {
		notices = append(notices, m)
	})))

	assert.False(t, store.Search(context.Background(), ParseQuery("cash")))
	assert.Equal(t, []string{"period is required"}, notices)

	require.True(t, store.Search(context.Background(), ParseQuery("period=2026-09")))
	assert.Equal(t, "2026-09", body.Params["period"])
	rows := store.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "GL-1", Cell(rows[0], "slipNo"))
	assert.Equal(t, "500", Cell(rows[0], "debitAmount"))
	assert.Equal(t, "1 slips loaded", notices[len(notices)-1])
}
