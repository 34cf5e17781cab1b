package erpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, defaultAPIBase, u.String())

	u, err = parseBaseURL("erp.local:9000")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "erp.local:9000", u.Host)

	u, err = parseBaseURL("https://erp.example.com/base?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com", u.String())

	_, err = parseBaseURL("http://")
	assert.Error(t, err)
}

func TestClient_FetchesMenusAndPermissions(t *testing.T) {
	t.Parallel()

	var gotProgram, gotAuth, gotUA, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		switch r.URL.Path {
		case menusPath:
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data": []map[string]any{
					{"programNo": "FCM", "children": []map[string]any{{"programNo": "FCM010", "path": "/app/fcm/gl"}}},
				},
			})
		case menuButtonsPath:
			gotProgram = r.URL.Query().Get("programNo")
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    []map[string]any{{"programNo": "FCM010", "objectId": "btnSave", "visibleYn": "N"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithToken("secret"), WithTimeout(2*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	menus, err := c.FetchMenus(ctx)
	require.NoError(t, err)
	require.Len(t, menus, 1)
	require.Len(t, menus[0].Children, 1)
	assert.Equal(t, "FCM010", menus[0].Children[0].ProgramNo)

	perms, err := c.FetchButtonPermissions(ctx, " FCM010 ")
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.False(t, perms[0].Visible())
	assert.Equal(t, "FCM010", gotProgram)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.True(t, strings.HasPrefix(gotUA, "erpdesk/"), "User-Agent = %q", gotUA)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_FetchButtonPermissionsRequiresProgram(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	require.NoError(t, err)
	_, err = c.FetchButtonPermissions(context.Background(), "  ")
	assert.Error(t, err)
}

func TestSearch_PostsBodyAndAcceptsSingleObject(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"accountCode": "1100"}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	rows, err := Search[map[string]any](context.Background(), c, "/api/mdm/accounts/search", map[string]string{"keyword": "cash"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1100", rows[0]["accountCode"])
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "cash", gotBody["keyword"])
}

func TestSearch_NullDataIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": nil})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)
	rows, err := Search[map[string]any](context.Background(), c, "/api/x", struct{}{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestClient_ErrorShapes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/unsuccessful":
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "closed fiscal period"})
		case "/api/broken":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/fail":
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "db down"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = Search[map[string]any](ctx, c, "/api/unsuccessful", struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsuccessful))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "closed fiscal period", apiErr.UserMessage())

	_, err = Search[map[string]any](ctx, c, "/api/broken", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")

	_, err = Search[map[string]any](ctx, c, "/api/fail", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned status 500")
	assert.False(t, errors.Is(err, ErrUnsuccessful))
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "db down", apiErr.UserMessage())
}

func TestDecodeList_RejectsGarbage(t *testing.T) {
	_, err := decodeList[ButtonPermission](json.RawMessage(`[1,2`))
	assert.Error(t, err)
	_, err = decodeList[ButtonPermission](json.RawMessage(`"str"`))
	assert.Error(t, err)
}
