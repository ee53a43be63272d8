// Package metrics holds the Prometheus collectors shared by the spatial
// indexes, the narrow phase and the collision detector.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IndexRebuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collide_index_rebuilds_total",
		Help: "Total number of full spatial index rebuilds",
	}, []string{"index"})
	IndexPatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collide_index_patches_total",
		Help: "Total number of in-place spatial index updates",
	}, []string{"index"})
	IndexQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collide_index_queries_total",
		Help: "Total number of spatial index queries by operation",
	}, []string{"index", "op"})
	CollisionPairsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collide_pairs_total",
		Help: "Total number of colliding pairs reported",
	}, []string{"index"})
	QuadTreeNodeOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collide_quadtree_node_ops_total",
		Help: "Quadtree split, merge and grow operations",
	}, []string{"op"})
	NarrowTestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collide_narrow_tests_total",
		Help: "Narrow phase tests by algorithm",
	}, []string{"algorithm"})
	IterationCapHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collide_iteration_cap_hits_total",
		Help: "GJK and EPA runs stopped by the iteration cap",
	}, []string{"algorithm"})
	PushCascadeSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "collide_push_cascade_size",
		Help:    "Objects pushed by a single collision translate",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
	})
)

func init() {
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(IndexPatchesTotal)
	prometheus.MustRegister(IndexQueriesTotal)
	prometheus.MustRegister(CollisionPairsTotal)
	prometheus.MustRegister(QuadTreeNodeOpsTotal)
	prometheus.MustRegister(NarrowTestsTotal)
	prometheus.MustRegister(IterationCapHitsTotal)
	prometheus.MustRegister(PushCascadeSize)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
