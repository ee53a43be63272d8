package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerExposesCollectors(t *testing.T) {
	IndexRebuildsTotal.WithLabelValues("grid").Inc()
	PushCascadeSize.Observe(2)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"collide_index_rebuilds_total",
		"collide_push_cascade_size_bucket",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("scrape lacks %s", name)
		}
	}
}

func TestCounterLabels(t *testing.T) {
	before := testutil.ToFloat64(IndexQueriesTotal.WithLabelValues("quadtree", "select_point"))
	IndexQueriesTotal.WithLabelValues("quadtree", "select_point").Inc()
	if got := testutil.ToFloat64(IndexQueriesTotal.WithLabelValues("quadtree", "select_point")); got != before+1 {
		t.Errorf("select_point queries = %v, expected %v", got, before+1)
	}
}
