// Package health serves liveness and readiness probes for the collide
// metrics server. Readiness runs every registered check, such as the index
// holding its scene and agreeing with a brute-force scan.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// ReadinessTimeout bounds a single readiness probe.
const ReadinessTimeout = 5 * time.Second

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	Name() string
	// Check returns an error when the component is unhealthy.
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated result of every check.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of one check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth runs every check. The overall status is "healthy" only if
// all of them pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}
	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: "healthy"}
	}
	return status
}

// LivenessHandler answers 200 while the process can serve requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs every check and answers 503 when one fails.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ReadinessTimeout)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// Register mounts /health and /ready on mux.
func (hc *HealthChecker) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", hc.LivenessHandler)
	mux.HandleFunc("/ready", hc.ReadinessHandler)
}

// IndexHealthCheck fails while the index holds fewer shapes than expected.
type IndexHealthCheck struct {
	objects  func() int
	expected int
}

// NewIndexHealthCheck reports unhealthy until objects() reaches expected.
func NewIndexHealthCheck(objects func() int, expected int) *IndexHealthCheck {
	return &IndexHealthCheck{objects: objects, expected: expected}
}

func (c *IndexHealthCheck) Name() string { return "index" }

func (c *IndexHealthCheck) Check(ctx context.Context) error {
	if n := c.objects(); n < c.expected {
		return fmt.Errorf("index holds %d of %d shapes", n, c.expected)
	}
	return nil
}

// ErrInconsistent is returned by a consistency check whose index and
// reference scan disagree.
var ErrInconsistent = errors.New("index disagrees with brute-force scan")

// ConsistencyHealthCheck runs a verification function, typically a
// comparison of the index pairs against a brute-force scan.
type ConsistencyHealthCheck struct {
	verify func(ctx context.Context) error
}

func NewConsistencyHealthCheck(verify func(ctx context.Context) error) *ConsistencyHealthCheck {
	return &ConsistencyHealthCheck{verify: verify}
}

func (c *ConsistencyHealthCheck) Name() string { return "consistency" }

func (c *ConsistencyHealthCheck) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.verify(ctx)
}

// MemoryHealthCheck fails when the heap grows past a limit.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck checks heap usage against maxMemoryMB. A nil
// usage function reads runtime.MemStats.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = heapMB
	}
	return &MemoryHealthCheck{maxMemoryMB: maxMemoryMB, getMemoryUsage: getMemoryUsage}
}

func heapMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}

func (m *MemoryHealthCheck) Name() string { return "memory" }

func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	if currentMB := m.getMemoryUsage(); currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
