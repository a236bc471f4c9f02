package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config, graph *Graph) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newPlannerServer(cfg, graph).routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeRoute(t *testing.T, resp *http.Response) RouteResponse {
	t.Helper()
	var out RouteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRouteHandler(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), squareGraph())

	resp := postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "C", "mandatory": ["D"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	out := decodeRoute(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, []NodeID{"A", "D", "C"}, out.Path)
	assert.Equal(t, []Point{{0, 0}, {0, 1}, {1, 1}}, out.Points)
	assert.Equal(t, 2, out.Legs)
	assert.InDelta(t, 2.0, out.TotalCost, 1e-12)
	assert.Zero(t, out.DistanceMeters, "planar track coordinates carry no meter distance")
}

func TestRouteHandler_GeographicDistance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Geographic = true
	srv := newTestServer(t, cfg, squareGraph())

	resp := postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "C", "mandatory": ["D"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeRoute(t, resp)
	assert.InDelta(t, PathLengthMeters(out.Points), out.DistanceMeters, 1e-6)
	assert.Greater(t, out.DistanceMeters, 200_000.0, "two one-degree segments near the equator")
}

func TestRouteHandler_Errors(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), squareGraph())

	tests := []struct {
		name string
		body string
		code int
	}{
		{"unknown start", `{"start": "Z", "goal": "C"}`, http.StatusNotFound},
		{"unknown waypoint", `{"start": "A", "goal": "C", "mandatory": ["Q"]}`, http.StatusNotFound},
		{"against edge direction", `{"start": "C", "goal": "A"}`, http.StatusUnprocessableEntity},
		{"missing goal", `{"start": "A"}`, http.StatusBadRequest},
		{"bad body", `{"start": `, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/route", tt.body)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}

	resp := postJSON(t, srv.URL+"/route", `{"start": "C", "goal": "A"}`)
	out := decodeRoute(t, resp)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Message)
}

func TestRouteHandler_MethodAndPreflight(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), squareGraph())

	resp, err := http.Get(srv.URL + "/route")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/route", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouteHandler_NoGraph(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), nil)

	resp := postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "C"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/graphLines")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouteHandler_SnapsPoints(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), squareGraph())

	resp := postJSON(t, srv.URL+"/route",
		`{"startPoint": {"x": 0.1, "y": 0.05}, "goalPoint": {"x": 1.2, "y": 0.9}, "mandatory": ["D"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeRoute(t, resp)
	assert.Equal(t, []NodeID{"A", "D", "C"}, out.Path)
}

func TestRouteHandler_GoalLastOverride(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), lineGraph())

	resp := postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "G", "mandatory": ["M"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []NodeID{"A", "G", "M"}, decodeRoute(t, resp).Order)

	resp = postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "G", "mandatory": ["M"], "goalLast": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeRoute(t, resp)
	assert.Equal(t, []NodeID{"A", "M", "G"}, out.Order)
	assert.InDelta(t, 9.0, out.TotalCost, 1e-12)
}

func TestRouteHandler_RateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.RateLimit = 0.001
	cfg.Server.RateBurst = 1
	srv := newTestServer(t, cfg, squareGraph())

	resp := postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "C"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "C"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHealthAndGraphLines(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), lineGraph())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health struct {
		Status   string `json:"status"`
		HasGraph bool   `json:"hasGraph"`
		NumNodes int    `json:"numNodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ready", health.Status)
	assert.True(t, health.HasGraph)
	assert.Equal(t, 3, health.NumNodes)

	resp, err = http.Get(srv.URL + "/graphLines")
	require.NoError(t, err)
	defer resp.Body.Close()

	var lines struct {
		Success  bool      `json:"success"`
		Lines    [][]Point `json:"lines"`
		NumEdges int       `json:"numEdges"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lines))
	assert.True(t, lines.Success)
	assert.Len(t, lines.Lines, 2)
	assert.Equal(t, 2, lines.NumEdges)

	resp, err = http.Get(srv.URL + "/graph.geojson")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))
}

func TestLoadGraphHandler(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), nil)

	path := filepath.Join(t.TempDir(), "square.json")
	require.NoError(t, SaveGraphJSON(squareGraph(), path))

	body, err := json.Marshal(map[string]string{"file": path})
	require.NoError(t, err)
	resp := postJSON(t, srv.URL+"/loadGraph", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success  bool `json:"success"`
		NumNodes int  `json:"numNodes"`
		NumEdges int  `json:"numEdges"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, 4, out.NumNodes)
	assert.Equal(t, 4, out.NumEdges)

	resp = postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "C", "mandatory": ["D"]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := json.Marshal(map[string]string{"file": filepath.Join(t.TempDir(), "nope.graphml")})
	require.NoError(t, err)
	resp = postJSON(t, srv.URL+"/loadGraph", string(missing))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/loadGraph", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(), squareGraph())

	resp := postJSON(t, srv.URL+"/route", `{"start": "A", "goal": "C", "mandatory": ["D"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "planner_graph_nodes 4")
	assert.Contains(t, text, `planner_http_requests_total{code="200",endpoint="route"} 1`)
	assert.Contains(t, text, `planner_route_latency_seconds_count{status="success"} 1`)
}
