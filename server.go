package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type RouteRequest struct {
	Start      NodeID   `json:"start,omitempty"`
	Goal       NodeID   `json:"goal,omitempty"`
	Mandatory  []NodeID `json:"mandatory,omitempty"`
	StartPoint *Point   `json:"startPoint,omitempty"` // snapped to the nearest node when start is empty
	GoalPoint  *Point   `json:"goalPoint,omitempty"`  // snapped to the nearest node when goal is empty
	GoalLast   *bool    `json:"goalLast,omitempty"`   // overrides the configured policy
}

type RouteResponse struct {
	Path           []NodeID `json:"path"`
	Points         []Point  `json:"points"`
	Order          []NodeID `json:"order,omitempty"`
	Legs           int      `json:"legs"`
	TotalCost      float64  `json:"totalCost"`
	DistanceMeters float64  `json:"distanceMeters,omitempty"`
	Success        bool     `json:"success"`
	Message        string   `json:"message,omitempty"`
}

// plannerServer serves tours over the active graph. The graph is immutable,
// the lock only guards swapping it for a reloaded one.
type plannerServer struct {
	cfg     Config
	metrics *plannerMetrics
	limiter *rate.Limiter

	graphMu sync.RWMutex
	graph   *Graph
	index   *NodeIndex
}

func newPlannerServer(cfg Config, graph *Graph) *plannerServer {
	s := &plannerServer{
		cfg:     cfg,
		metrics: newPlannerMetrics(),
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
	}
	if graph != nil {
		s.setGraph(graph)
	}
	return s
}

func (s *plannerServer) setGraph(graph *Graph) {
	index := NewNodeIndex(graph)

	s.graphMu.Lock()
	s.graph = graph
	s.index = index
	s.graphMu.Unlock()

	s.metrics.setGraph(graph)
}

func (s *plannerServer) current() (*Graph, *NodeIndex) {
	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	return s.graph, s.index
}

// routes registers every endpoint
func (s *plannerServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/route", s.instrument("route", s.corsMiddleware(s.rateLimitMiddleware(s.routeHandler))))
	mux.Handle("/loadGraph", s.instrument("loadGraph", s.corsMiddleware(s.loadGraphHandler)))
	mux.Handle("/graphLines", s.instrument("graphLines", s.corsMiddleware(s.graphLinesHandler)))
	mux.Handle("/graph.geojson", s.instrument("graphGeoJSON", s.corsMiddleware(s.graphGeoJSONHandler)))
	mux.Handle("/health", s.instrument("health", s.corsMiddleware(s.healthHandler)))
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return mux
}

// statusRecorder captures the response code for the request counter
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *plannerServer) instrument(endpoint string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		s.metrics.requests.WithLabelValues(endpoint, strconv.Itoa(rec.code)).Inc()
	})
}

// corsMiddleware adds CORS headers to allow frontend requests
func (s *plannerServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.AllowOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// rateLimitMiddleware rejects requests once the token bucket is empty
func (s *plannerServer) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			log.Println("⚠️  Route request rate limited")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// resolveStop returns id, or the node nearest to p when id is empty
func resolveStop(index *NodeIndex, id NodeID, p *Point, label string) (NodeID, error) {
	if id != "" || p == nil {
		return id, nil
	}
	nearest, dist, err := index.Nearest(*p)
	if err != nil {
		return "", err
	}
	log.Printf("   🔗 %s (%.3f, %.3f) snapped to node %s (%.3f away)\n", label, p.X, p.Y, nearest, dist)
	return nearest, nil
}

// POST /route - Compute a tour over start, mandatory waypoints and goal
func (s *plannerServer) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")
	defer log.Println("========================================")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	graph, index := s.current()
	if graph == nil {
		log.Println("❌ Graph not available")
		http.Error(w, "Graph not loaded. Call /loadGraph first", http.StatusServiceUnavailable)
		return
	}

	start, err := resolveStop(index, req.Start, req.StartPoint, "Start")
	if err == nil {
		req.Goal, err = resolveStop(index, req.Goal, req.GoalPoint, "Goal")
	}
	if err != nil {
		log.Printf("❌ Could not snap to graph: %v\n", err)
		writeJSON(w, http.StatusUnprocessableEntity, RouteResponse{Message: err.Error()})
		return
	}
	if start == "" || req.Goal == "" {
		log.Println("❌ Start and goal are required")
		http.Error(w, "start and goal are required", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: %s\n", start)
	log.Printf("   Goal:  %s\n", req.Goal)
	log.Printf("   Mandatory waypoints: %d\n", len(req.Mandatory))

	cfg := s.cfg
	if req.GoalLast != nil {
		cfg.Sequencer.GoalLast = *req.GoalLast
	}
	opts := cfg.SequenceOptions()

	began := time.Now()
	tour, err := SequenceContext(r.Context(), graph, start, req.Goal, req.Mandatory, EuclideanHeuristic, opts...)
	s.metrics.observeRoute(time.Since(began), tour, err)

	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrUnknownNode):
			code = http.StatusNotFound
		case errors.Is(err, ErrNoPath):
			code = http.StatusUnprocessableEntity
		case errors.Is(err, ErrSearchCancelled), errors.Is(err, context.Canceled):
			code = http.StatusRequestTimeout
		}
		log.Printf("❌ Route failed: %v\n", err)
		writeJSON(w, code, RouteResponse{Message: err.Error()})
		return
	}

	points, err := tour.Points(graph)
	if err != nil {
		log.Printf("❌ Route references unknown node: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, RouteResponse{Message: err.Error()})
		return
	}

	response := RouteResponse{
		Path:      tour.Path,
		Points:    points,
		Order:     tour.Order,
		Legs:      len(tour.Legs),
		TotalCost: tour.TotalCost,
		Success:   true,
	}
	if s.cfg.Server.Geographic {
		response.DistanceMeters = PathLengthMeters(points)
	}

	log.Printf("✅ Tour found with %d nodes over %d legs\n", len(tour.Path), len(tour.Legs))
	log.Printf("   Total cost: %.3f\n", tour.TotalCost)
	log.Printf("   Visit order: %v\n", tour.Order)

	writeJSON(w, http.StatusOK, response)
}

// POST /loadGraph - Replace the active graph with one read from disk
func (s *plannerServer) loadGraphHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Load graph request received")
	defer log.Println("========================================")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == "" {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	graph, err := LoadGraph(req.File, s.cfg.GraphMLKeys)
	if err == nil {
		err = graph.Validate()
	}
	if err != nil {
		log.Printf("❌ Failed to load graph: %v\n", err)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	s.setGraph(graph)
	log.Printf("✅ Graph %s is now active\n", req.File)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"numNodes": graph.NodeCount(),
		"numEdges": graph.EdgeCount(),
	})
}

// GET /graphLines - Get graph edges as line strings for visualization
func (s *plannerServer) graphLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	graph, _ := s.current()
	if graph == nil {
		http.Error(w, "Graph not loaded. Call /loadGraph first", http.StatusServiceUnavailable)
		return
	}

	lines := graph.EdgeLines()
	log.Printf("📊 Returning %d line segments\n", len(lines))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"lines":    lines,
		"numNodes": graph.NodeCount(),
		"numEdges": len(lines),
	})
}

// GET /graph.geojson - Graph edges as a GeoJSON feature collection
func (s *plannerServer) graphGeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	graph, _ := s.current()
	if graph == nil {
		http.Error(w, "Graph not loaded. Call /loadGraph first", http.StatusServiceUnavailable)
		return
	}

	data, err := GraphGeoJSON(graph).MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// GET /health - Health check endpoint
func (s *plannerServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	graph, _ := s.current()

	status := "ready"
	numNodes := 0
	if graph == nil {
		status = "waiting for graph"
	} else {
		numNodes = graph.NodeCount()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"hasGraph": graph != nil,
		"numNodes": numNodes,
	})
}
