package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	"github.com/Aman-CERP/indsearch/internal/logging"
	"github.com/Aman-CERP/indsearch/internal/render"
	"github.com/Aman-CERP/indsearch/internal/search"
	"github.com/Aman-CERP/indsearch/internal/store"
	"github.com/Aman-CERP/indsearch/internal/telemetry"
)

const testCatalog = `{
  "TX_MAX": {"title": "Maximum Tx", "abstract": "desc", "vars": {"tas": "Temp"}, "realm": "atmos", "module": "temp", "name": "tx_max", "keywords": ["heat"]},
  "FROST_DAYS": {"title": "Frost days", "abstract": "Number of days below 0C", "vars": {"tasmin": "Minimum temperature"}, "realm": "atmos", "module": "atmos", "name": "frost_days", "keywords": ["cold"]}
}`

func newService(t *testing.T, content string) *search.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "indicators.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	svc := search.NewService(
		catalog.NewLoader(path),
		store.NewFactory(store.DefaultIndexConfig()),
		search.WithServiceLogger(logging.Discard()),
		search.WithServiceMetrics(telemetry.NewQueryMetrics()),
	)
	t.Cleanup(func() { _ = svc.Close() })
	_ = svc.Reload(context.Background())
	return svc
}

func newTestServer(t *testing.T, svc *search.Service) *httptest.Server {
	t.Helper()
	srv := New(svc, render.MustNew(render.Options{}), WithLogger(logging.Discard()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var sb strings.Builder
	_, err = io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	return resp, sb.String()
}

func TestPage_RendersWholeCatalog(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))

	resp, body := get(t, ts.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `id="queryInput"`)
	assert.Contains(t, body, `id="tx_max"`)
	assert.Contains(t, body, `id="frost_days"`)
	assert.Less(t, strings.Index(body, `id="tx_max"`), strings.Index(body, `id="frost_days"`))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestPage_WithQuery(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))

	_, body := get(t, ts.URL+"/?q=frost")

	assert.Contains(t, body, `value="frost"`)
	assert.Contains(t, body, `id="frost_days"`)
	assert.NotContains(t, body, `id="tx_max"`)
}

func TestSearch_ReturnsFragment(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))

	resp, body := get(t, ts.URL+"/search?q=maxx")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Result-Count"))
	assert.Contains(t, body, `href="api.html#xclim.indicators.temp.tx_max"`)
	assert.NotContains(t, body, "<html")
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))

	resp, _ := get(t, ts.URL+"/search?q=")

	assert.Equal(t, "2", resp.Header.Get("X-Result-Count"))
}

func TestUnavailable_WhenCatalogMissing(t *testing.T) {
	// Given: a service whose catalog file does not exist
	ts := newTestServer(t, newService(t, ""))

	// Then: the page shows the banner
	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Search unavailable")

	// And: the fragment endpoint answers 503 with the error code
	resp, body = get(t, ts.URL+"/search?q=heat")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "ERR_507_SEARCH_UNAVAILABLE")

	// And: health reports the failure
	resp, body = get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var h Health
	require.NoError(t, json.Unmarshal([]byte(body), &h))
	assert.Equal(t, "unavailable", h.Status)
	assert.Equal(t, search.StateFailed, h.Catalog.State)
	assert.NotEmpty(t, h.Catalog.Error)

	resp, _ = get(t, ts.URL+"/indicators.json")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCatalog_ServesSourceOrder(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))

	resp, body := get(t, ts.URL+"/indicators.json")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	inds, err := catalog.Decode(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, inds, 2)
	assert.Equal(t, "tx_max", inds[0].ID)
	assert.Equal(t, "frost_days", inds[1].ID)
}

func TestHealth_Loaded(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))
	get(t, ts.URL+"/search?q=heat")

	resp, body := get(t, ts.URL+"/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var h Health
	require.NoError(t, json.Unmarshal([]byte(body), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 2, h.Catalog.Count)
	require.NotNil(t, h.Queries)
	assert.Equal(t, int64(1), h.Queries.TotalQueries)
}

func TestRequestID_KeepsValidHeader(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))
	id := "6f1c1a3e-5a7d-4c1b-9a55-1d2c3b4a5e6f"

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, newService(t, testCatalog))

	resp, _ := get(t, ts.URL+"/nope")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocket_ReplacesMarkupPerMessage(t *testing.T) {
	// Given: a websocket connection to the live search
	ts := newTestServer(t, newService(t, testCatalog))
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	exchange := func(q string) string {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(q)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		return string(msg)
	}

	// When: typing a query character by character
	// Then: every reply is the complete replacement markup
	assert.Contains(t, exchange("f"), `id="frost_days"`)
	reply := exchange("frost")
	assert.Contains(t, reply, `id="frost_days"`)
	assert.NotContains(t, reply, `id="tx_max"`)

	// And: clearing the input lists everything again
	all := exchange("")
	assert.Contains(t, all, `id="tx_max"`)
	assert.Contains(t, all, `id="frost_days"`)
}

func TestWebsocket_Unavailable(t *testing.T) {
	ts := newTestServer(t, newService(t, ""))
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("heat")))
	_, msg, err := conn.ReadMessage()

	require.NoError(t, err)
	assert.Contains(t, string(msg), "Search unavailable")
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := New(newService(t, testCatalog), render.MustNew(render.Options{}), WithLogger(logging.Discard()))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
