package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/postman"
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/dsl"
	"github.com/aretw0/postman/pkg/session"
)

func shopPage(_ context.Context, id string) (*memory.Component, error) {
	if id != "shop" {
		return nil, session.ErrPageNotFound
	}
	b := dsl.New("shop")
	b.Root().
		Panel("cart").Control("qty").Set("value", 1).End().End().
		Panel("profile").Control("name").Set("value", "ada")
	return b.Build()
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	eng, err := postman.New(postman.WithReportStore(store))
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(eng, session.NewManager(shopPage),
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("metrics"))
		})),
	))
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_GetPage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/pages/shop")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sb strings.Builder
	_, _ = bufio.NewReader(resp.Body).WriteTo(&sb)
	html := sb.String()
	assert.Contains(t, html, `<div id="cart" data-kind="panel">`)
	assert.Contains(t, html, `<dt>value</dt><dd>ada</dd>`)

	resp, err = http.Get(srv.URL + "/pages/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_PostEvent_JSON(t *testing.T) {
	srv, store := newTestServer(t)

	resp := post(t, srv.URL+"/pages/shop/events?format=json",
		`{"mutations":[{"node":"qty","set":{"value":2}}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out EventResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"cart"}, out.Report.DirtyIDs)
	require.Contains(t, out.Fragments, "cart")
	assert.NotContains(t, out.Fragments, "profile")
	assert.Contains(t, out.Fragments["cart"], "<dd>2</dd>")

	_, err := store.Load(context.Background(), out.Report.RequestID)
	assert.NoError(t, err, "report persisted")

	// State survives between requests; an empty postback dirties nothing.
	resp = post(t, srv.URL+"/pages/shop/events", `{}`, "Accept", "application/json")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Report.Clean())
	assert.Empty(t, out.Fragments)
}

func TestServer_PostEvent_HTML(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := post(t, srv.URL+"/pages/shop/events", `{"mutations":[{"node":"name","set":{"value":"grace"}}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sb strings.Builder
	_, _ = bufio.NewReader(resp.Body).WriteTo(&sb)
	html := sb.String()
	assert.Contains(t, html, `hx-swap-oob="outerHTML:#profile"`)
	assert.Contains(t, html, "grace")
	assert.NotContains(t, html, `id="cart"`)
}

func TestServer_PostEvent_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := post(t, srv.URL+"/pages/shop/events", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/pages/shop/events", `{"mutations":[{"node":"ghost","set":{"x":1}}]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_PostEvent_RejectedEventLeavesPageUntouched(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := post(t, srv.URL+"/pages/shop/events",
		`{"mutations":[{"node":"qty","set":{"value":7}},{"node":"ghost","set":{"x":1}}]}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	page, err := http.Get(srv.URL + "/pages/shop")
	require.NoError(t, err)
	defer page.Body.Close()
	var sb strings.Builder
	_, _ = bufio.NewReader(page.Body).WriteTo(&sb)
	assert.Contains(t, sb.String(), `<dt>value</dt><dd>1</dd>`)
	assert.NotContains(t, sb.String(), `<dd>7</dd>`)
}

func TestServer_PostEvent_SameValueIsNotAChange(t *testing.T) {
	srv, _ := newTestServer(t)

	// The page holds qty=int(1); the decoded body carries json.Number("1").
	resp := post(t, srv.URL+"/pages/shop/events?format=json", `{"mutations":[{"node":"qty","set":{"value":1}}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out EventResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Report.Clean(), "dirty: %v", out.Report.DirtyIDs)
	assert.Empty(t, out.Report.ChangedIDs)
}

func TestServer_Reports(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := post(t, srv.URL+"/pages/shop/events?format=json", `{"mutations":[{"node":"qty","set":{"value":5}}]}`)
	var out EventResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	list, err := http.Get(srv.URL + "/reports")
	require.NoError(t, err)
	defer list.Body.Close()
	var ids []string
	require.NoError(t, json.NewDecoder(list.Body).Decode(&ids))
	assert.Contains(t, ids, out.Report.RequestID)

	one, err := http.Get(srv.URL + "/reports/" + out.Report.RequestID)
	require.NoError(t, err)
	defer one.Body.Close()
	var report domain.Report
	require.NoError(t, json.NewDecoder(one.Body).Decode(&report))
	assert.Equal(t, out.Report.DirtyIDs, report.DirtyIDs)

	missing, err := http.Get(srv.URL + "/reports/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServer_GraphAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/pages/shop/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	var sb strings.Builder
	_, _ = bufio.NewReader(resp.Body).WriteTo(&sb)
	assert.True(t, strings.HasPrefix(sb.String(), "graph TD"))

	m, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	m.Body.Close()
	assert.Equal(t, http.StatusOK, m.StatusCode)
}

func TestServer_Stream(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/pages/shop/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)
	_, _ = reader.ReadString('\n') // data: connected
	_, _ = reader.ReadString('\n') // blank

	post(t, srv.URL+"/pages/shop/events", `{"mutations":[{"node":"qty","set":{"value":9}}]}`)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: report\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"dirty_ids":["cart"]`)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(slogDiscard())
	ch, cancel := sm.Subscribe("p")
	for i := 0; i < 20; i++ {
		sm.Broadcast("p", "m")
	}
	assert.Len(t, ch, 10)
	cancel()
	cancel()
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
