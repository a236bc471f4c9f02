package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// plannerMetrics holds the Prometheus collectors of the route service
type plannerMetrics struct {
	registry     *prometheus.Registry
	routeLatency *prometheus.HistogramVec
	requests     *prometheus.CounterVec
	tourLegs     prometheus.Histogram
	tourCost     prometheus.Histogram
	graphNodes   prometheus.Gauge
	graphEdges   prometheus.Gauge
}

func newPlannerMetrics() *plannerMetrics {
	m := &plannerMetrics{
		registry: prometheus.NewRegistry(),
		routeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_route_latency_seconds",
			Help:    "Latency of tour computations",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_http_requests_total",
			Help: "HTTP requests by endpoint and status code",
		}, []string{"endpoint", "code"}),
		tourLegs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_tour_legs",
			Help:    "Number of legs per computed tour",
			Buckets: prometheus.LinearBuckets(1, 5, 10),
		}),
		tourCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_tour_cost",
			Help:    "Total cost of computed tours",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_graph_nodes",
			Help: "Nodes in the active graph",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_graph_edges",
			Help: "Edges in the active graph",
		}),
	}

	m.registry.MustRegister(m.routeLatency)
	m.registry.MustRegister(m.requests)
	m.registry.MustRegister(m.tourLegs)
	m.registry.MustRegister(m.tourCost)
	m.registry.MustRegister(m.graphNodes)
	m.registry.MustRegister(m.graphEdges)
	return m
}

func (m *plannerMetrics) observeRoute(d time.Duration, tour Tour, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.routeLatency.WithLabelValues(status).Observe(d.Seconds())
	if err == nil {
		m.tourLegs.Observe(float64(len(tour.Legs)))
		m.tourCost.Observe(tour.TotalCost)
	}
}

func (m *plannerMetrics) setGraph(g *Graph) {
	m.graphNodes.Set(float64(g.NodeCount()))
	m.graphEdges.Set(float64(g.EdgeCount()))
}
