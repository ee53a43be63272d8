// cmd/collide/main.go

// Command collide loads a shape scene into a spatial index and reports
// colliding pairs, point and box selections and push resolution results.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/opd-ai/go-collide/pkg/collision"
	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/health"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/metrics"
	"github.com/opd-ai/go-collide/pkg/shapeio"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logging.NewLoggerTo(os.Stderr, slog.LevelInfo).Error(ctx, "collide failed", err)
		os.Exit(1)
	}
}

// options are the parsed command line flags.
type options struct {
	configPath    string
	envPath       string
	createDefault bool
	index         string
	scene         string
	out           string
	selectAt      string
	selectRect    string
	translate     string
	verify        bool
	hull          bool
	serve         bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("collide", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "collide.json", "Path to configuration file")
	fs.StringVar(&opts.envPath, "env", "", "Path to a .env file (default: ./.env when present)")
	fs.BoolVar(&opts.createDefault, "default", false, "Create default configuration file and exit")
	fs.StringVar(&opts.index, "index", "", "Index kind: 'grid' or 'quadtree' (overrides config)")
	fs.StringVar(&opts.scene, "scene", "", "Shape file to load (.json, .msgpack or .mp)")
	fs.StringVar(&opts.out, "out", "", "Write the scene after any translate to this file")
	fs.StringVar(&opts.selectAt, "select", "", "Report shapes containing the point x,y")
	fs.StringVar(&opts.selectRect, "rect", "", "Report shapes touching the box x0,y0,x1,y1")
	fs.StringVar(&opts.translate, "translate", "", "Move shape idx by tx,ty and resolve pushes: idx,tx,ty")
	fs.BoolVar(&opts.verify, "verify", false, "Compare the index against a brute-force scan")
	fs.BoolVar(&opts.hull, "hull", false, "Report the convex hull of the scene")
	fs.BoolVar(&opts.serve, "serve", false, "Serve metrics and health probes until interrupted")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !opts.createDefault && opts.scene == "" {
		fs.Usage()
		return nil, errors.New("a -scene file is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			return logging.WrapError(err, "create default config %s", opts.configPath)
		}
		fmt.Fprintf(stdout, "config\t%s\n", opts.configPath)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLoggerTo(stderr, level)

	d, err := collision.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	d.SetLogger(logger)

	doc, err := shapeio.ReadFile(opts.scene)
	if err != nil {
		return err
	}
	objs, labels, err := doc.Build()
	if err != nil {
		return logging.WrapError(err, "build scene %s", opts.scene)
	}
	d.Build(objs)
	logger.Info(ctx, "Scene loaded", "path", opts.scene, "shapes", len(objs), "index", cfg.Index)

	sc := &scene{objs: objs, labels: labels, out: stdout}

	if opts.translate != "" {
		v, err := parseFloats(opts.translate, 3)
		if err != nil {
			return fmt.Errorf("-translate: %w", err)
		}
		i := int(v[0])
		if float64(i) != v[0] || i < 0 || i >= len(objs) {
			return fmt.Errorf("-translate: no shape at index %v", v[0])
		}
		for _, s := range d.CollisionTranslate(objs[i], v[1], v[2]) {
			sc.print("pushed", s)
		}
	}

	for _, p := range d.FindCollisionPairs(nil, cfg.NoRepeat) {
		sc.print("pair", p.A, p.B)
	}

	if opts.selectAt != "" {
		v, err := parseFloats(opts.selectAt, 2)
		if err != nil {
			return fmt.Errorf("-select: %w", err)
		}
		for _, s := range d.SelectPoint(geometry.Point{X: v[0], Y: v[1]}, nil) {
			sc.print("point", s)
		}
	}

	if opts.selectRect != "" {
		v, err := parseFloats(opts.selectRect, 4)
		if err != nil {
			return fmt.Errorf("-rect: %w", err)
		}
		for _, s := range d.SelectRect(geometry.NewAABBRect(v[0], v[1], v[2], v[3]), nil) {
			sc.print("rect", s)
		}
	}

	if opts.verify {
		n, err := verify(d, objs)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "verify\tok\t%d\n", n)
	}

	if opts.hull {
		hull := sceneHull(objs)
		parts := make([]string, len(hull))
		for i, p := range hull {
			parts[i] = fmt.Sprintf("%g,%g", p.X, p.Y)
		}
		fmt.Fprintf(stdout, "hull\t%s\n", strings.Join(parts, " "))
	}

	if opts.out != "" {
		out, err := shapeio.NewDocument(objs, labels)
		if err != nil {
			return logging.WrapError(err, "encode scene")
		}
		if err := shapeio.WriteFile(opts.out, out); err != nil {
			return err
		}
		logger.Info(ctx, "Scene written", "path", opts.out)
	}

	if opts.serve {
		return serve(ctx, cfg, d, objs, logger)
	}
	return nil
}

// loadConfig reads the .env file, then the config file when it exists,
// then the environment overrides and finally the -index flag.
func loadConfig(opts *options) (*config.Config, error) {
	var err error
	if opts.envPath != "" {
		err = config.LoadDotEnv(opts.envPath)
	} else {
		err = config.LoadDotEnv()
	}
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if _, statErr := os.Stat(opts.configPath); statErr == nil {
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	if opts.index != "" {
		cfg.Index = strings.ToLower(opts.index)
	}
	return cfg, nil
}

// scene names shapes in output lines by label, or by "#index" when the
// shape has none.
type scene struct {
	objs   []geometry.Shape
	labels []string
	names  map[geometry.Shape]string
	out    io.Writer
}

func (sc *scene) name(s geometry.Shape) string {
	if sc.names == nil {
		sc.names = make(map[geometry.Shape]string, len(sc.objs))
		for i, o := range sc.objs {
			name := fmt.Sprintf("#%d", i)
			if i < len(sc.labels) && sc.labels[i] != "" {
				name = sc.labels[i]
			}
			sc.names[o] = name
		}
	}
	if name, ok := sc.names[s]; ok {
		return name
	}
	return "?"
}

func (sc *scene) print(kind string, shapes ...geometry.Shape) {
	fields := make([]string, 0, len(shapes)+1)
	fields = append(fields, kind)
	for _, s := range shapes {
		fields = append(fields, sc.name(s))
	}
	fmt.Fprintln(sc.out, strings.Join(fields, "\t"))
}

// verify compares the index pairs against an exhaustive scan with the same
// solver and returns the pair count.
func verify(d *collision.Detector[spatial.Index], objs []geometry.Shape) (int, error) {
	got := d.FindCollisionPairs(nil, true)
	want := collision.Brute(objs, d.Solver().Collide)
	if !collision.SamePairs(objs, got, want) {
		return 0, fmt.Errorf("%w: index reports %d pairs, brute force %d", health.ErrInconsistent, len(got), len(want))
	}
	return len(got), nil
}

// sceneHull is the convex hull of every vertex in the scene. Circles
// contribute the corners of their bounding box.
func sceneHull(objs []geometry.Shape) []geometry.Point {
	var pts []geometry.Point
	for _, s := range objs {
		if vs := geometry.Vertices(s); vs != nil {
			pts = append(pts, vs...)
			continue
		}
		br := s.BoundingRect()
		pts = append(pts, br.Points()...)
	}
	return geometry.ConvexHull(pts)
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite number %q", p)
		}
		out[i] = v
	}
	return out, nil
}

const defaultMetricsAddr = ":9090"

// serve exposes /metrics, /health and /ready until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, d *collision.Detector[spatial.Index], objs []geometry.Shape, logger *logging.Logger) error {
	addr := cfg.MetricsAddr
	if addr == "" {
		addr = defaultMetricsAddr
	}

	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewIndexHealthCheck(d.Len, len(objs)))
	consistency := health.NewConsistencyHealthCheck(func(ctx context.Context) error {
		_, err := verify(d, objs)
		return err
	})
	checker.AddCheck(health.NewBreakerHealthCheck(consistency, 3, 30*time.Second, logger))
	checker.AddCheck(health.NewMemoryHealthCheck(1024, nil))

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	checker.Register(mux)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Serving metrics and health probes", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return logging.WrapError(err, "metrics server on %s", addr)
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
