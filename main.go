package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configFile := flag.String("config", "config.json", "Path to the JSON config file")
	serve := flag.Bool("serve", false, "Run the HTTP route service")
	simulate := flag.Bool("simulate", false, "Drive the vehicle simulator along the computed tour")
	geojsonOut := flag.String("geojson", "", "Write the computed tour as GeoJSON to this file")
	snapshotOut := flag.String("snapshot", "", "Write the loaded graph as a JSON snapshot to this file")
	flag.Parse()

	log.Println("========================================")
	log.Println("🚀 Track Route Planner")
	log.Println("========================================")

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		if err := runServer(ctx, cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := runOnce(ctx, cfg, *simulate, *geojsonOut, *snapshotOut); err != nil {
		log.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

// runOnce computes the configured tour and optionally simulates and exports it
func runOnce(ctx context.Context, cfg Config, simulate bool, geojsonOut, snapshotOut string) error {
	graph, err := LoadGraph(cfg.GraphFile, cfg.GraphMLKeys)
	if err != nil {
		return err
	}

	if snapshotOut != "" {
		if err := SaveGraphJSON(graph, snapshotOut); err != nil {
			return err
		}
	}

	log.Printf("🔍 Sequencing %d mandatory waypoints from %s to %s...\n",
		len(cfg.MandatoryNodes), cfg.StartNode, cfg.GoalNode)

	began := time.Now()
	tour, err := SequenceContext(ctx, graph, cfg.StartNode, cfg.GoalNode, cfg.MandatoryNodes,
		EuclideanHeuristic, cfg.SequenceOptions()...)
	if err != nil {
		return err
	}

	log.Printf("✅ Shortest path: %v\n", tour.Path)
	log.Printf("   Total cost: %.4f\n", tour.TotalCost)
	log.Printf("   Visit order: %v\n", tour.Order)
	log.Printf("   ⏱️  Sequencing time: %.3f seconds\n", time.Since(began).Seconds())

	if geojsonOut != "" {
		fc, err := TourGeoJSON(graph, tour)
		if err != nil {
			return err
		}
		if err := WriteGeoJSON(fc, geojsonOut); err != nil {
			return err
		}
		log.Printf("💾 Tour written to %s\n", geojsonOut)
	}

	if !simulate {
		return nil
	}

	points, err := tour.Points(graph)
	if err != nil {
		return err
	}
	nav, err := NewNavigator(points, cfg.Vehicle)
	if err != nil {
		return err
	}

	log.Printf("🚗 Starting navigation from node %s at (%.2f, %.2f)\n", cfg.StartNode, nav.Vehicle.X, nav.Vehicle.Y)
	err = Drive(ctx, nav, func(res StepResult) {
		if res.Reached {
			id := tour.Path[res.TargetIndex+1]
			log.Printf("   Reached target %d: node %s at (%.2f, %.2f)\n", res.TargetIndex+1, id, res.Vehicle.X, res.Vehicle.Y)
		}
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	log.Println("🏁 Navigation complete!")
	return nil
}

// runServer serves the route API until ctx is cancelled
func runServer(ctx context.Context, cfg Config) error {
	log.Println("Loading graph file...")

	var s *plannerServer
	if graph, err := LoadGraph(cfg.GraphFile, cfg.GraphMLKeys); err == nil {
		if err := graph.Validate(); err != nil {
			log.Printf("⚠️  Graph %s is inconsistent: %v\n", cfg.GraphFile, err)
		}
		s = newPlannerServer(cfg, graph)
		log.Printf("   Nodes: %d\n", graph.NodeCount())
		b := graph.Bounds()
		log.Printf("   Bounding box: (%.2f, %.2f) to (%.2f, %.2f)\n", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
	} else {
		log.Printf("ℹ️  No graph loaded: %v\n", err)
		log.Println("   Call /loadGraph to load one")
		s = newPlannerServer(cfg, nil)
	}
	log.Println("")

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server starting on %s\n", cfg.Server.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /route          - Compute a tour over start, waypoints and goal")
	log.Println("  POST /loadGraph      - Load a GraphML or JSON snapshot graph")
	log.Println("  GET  /graphLines     - Get graph edges for visualization")
	log.Println("  GET  /graph.geojson  - Get graph edges as GeoJSON")
	log.Println("  GET  /health         - Check server status")
	log.Println("  GET  /metrics        - Prometheus metrics")
	log.Println("========================================")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
