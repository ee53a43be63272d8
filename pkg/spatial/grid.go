package spatial

import (
	"math"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/metrics"
)

// GridParams controls when and how finely a GridMap partitions its
// envelope.
type GridParams struct {
	Columns int
	Rows    int
	// SplitCount and SplitWidth: the envelope is divided into
	// Columns x Rows cells when it holds more than SplitCount objects or
	// is wider than SplitWidth. Otherwise a single cell covers it.
	SplitCount int
	SplitWidth float64
}

// DefaultGridParams returns the 8x4 grid used by NewGridMap callers that
// have no tuning of their own.
func DefaultGridParams() GridParams {
	return GridParams{Columns: 8, Rows: 4, SplitCount: 40, SplitWidth: 800}
}

var (
	gridRebuilds    = metrics.IndexRebuildsTotal.WithLabelValues("grid")
	gridPatches     = metrics.IndexPatchesTotal.WithLabelValues("grid")
	gridPairs       = metrics.CollisionPairsTotal.WithLabelValues("grid")
	gridSelectPoint = metrics.IndexQueriesTotal.WithLabelValues("grid", "select_point")
	gridSelectRect  = metrics.IndexQueriesTotal.WithLabelValues("grid", "select_rect")
	gridFindObjects = metrics.IndexQueriesTotal.WithLabelValues("grid", "find_objects")
	gridFindPairs   = metrics.IndexQueriesTotal.WithLabelValues("grid", "find_pairs")
)

type gridCell struct {
	rect geometry.AABBRect
	objs []geometry.Shape
}

// GridMap is a uniform bucket grid sized to the envelope of its objects.
// The cell layout is fixed between rebuilds; mutations that stay inside
// the envelope patch the affected cells and anything else rebuilds.
type GridMap struct {
	hooks
	params GridParams
	store  store

	built        bool
	bounds       geometry.AABBRect
	cols, rows   int
	cellW, cellH float64
	cells        []gridCell
}

// NewGridMap creates an empty grid. Non-positive params fall back to
// DefaultGridParams field by field.
func NewGridMap(params GridParams) *GridMap {
	def := DefaultGridParams()
	if params.Columns < 1 {
		params.Columns = def.Columns
	}
	if params.Rows < 1 {
		params.Rows = def.Rows
	}
	if params.SplitCount < 1 {
		params.SplitCount = def.SplitCount
	}
	if params.SplitWidth <= 0 {
		params.SplitWidth = def.SplitWidth
	}
	g := &GridMap{hooks: newHooks(), params: params, store: newStore()}
	g.reset()
	return g
}

// Params returns the grid tuning.
func (g *GridMap) Params() GridParams { return g.params }

func (g *GridMap) reset() {
	g.built = false
	g.bounds = placeholder
	g.cols, g.rows = 1, 1
	g.cellW, g.cellH = placeholder.Width(), placeholder.Height()
	g.cells = []gridCell{{rect: placeholder}}
}

// Build replaces the contents with objs and lays out a fresh grid.
func (g *GridMap) Build(objs []geometry.Shape) {
	g.store.reset()
	for _, obj := range objs {
		g.store.add(obj)
	}
	g.rebuild()
}

func (g *GridMap) rebuild() {
	if g.store.len() == 0 {
		g.reset()
		return
	}
	env := g.store.envelope()
	g.built = true
	g.bounds = env
	g.cols, g.rows = 1, 1
	if g.store.len() > g.params.SplitCount || env.Width() > g.params.SplitWidth {
		g.cols, g.rows = g.params.Columns, g.params.Rows
	}
	g.cellW = env.Width() / float64(g.cols)
	g.cellH = env.Height() / float64(g.rows)

	g.cells = make([]gridCell, g.cols*g.rows)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			x := env.Left() + float64(c)*g.cellW
			y := env.Top() + float64(r)*g.cellH
			g.cells[r*g.cols+c].rect = geometry.NewAABBRect(x, y, x+g.cellW, y+g.cellH)
		}
	}
	for _, e := range g.store.entries {
		g.insert(e.obj, e.rect)
	}

	gridRebuilds.Inc()
	g.debug("grid rebuilt", "objects", g.store.len(), "columns", g.cols, "rows", g.rows)
	g.publishIndex(event.IndexRebuilt, g, "grid", g.store.len(), len(g.cells), g.bounds)
}

func clampCell(v float64, n int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= float64(n) {
		return n - 1
	}
	return int(v)
}

// cellOf maps a coordinate to its column or row.
func cellOf(v, origin, size float64, n int) int {
	if size <= 0 {
		return 0
	}
	return clampCell(math.Floor((v-origin)/size), n)
}

// cellRange returns the inclusive column and row span covered by r.
func (g *GridMap) cellRange(r geometry.AABBRect) (c0, r0, c1, r1 int, ok bool) {
	if !g.built || !g.bounds.Intersects(r) {
		return 0, 0, 0, 0, false
	}
	c0 = cellOf(r.Left(), g.bounds.Left(), g.cellW, g.cols)
	c1 = cellOf(r.Right(), g.bounds.Left(), g.cellW, g.cols)
	r0 = cellOf(r.Top(), g.bounds.Top(), g.cellH, g.rows)
	r1 = cellOf(r.Bottom(), g.bounds.Top(), g.cellH, g.rows)
	return c0, r0, c1, r1, true
}

func (g *GridMap) insert(obj geometry.Shape, r geometry.AABBRect) {
	c0, r0, c1, r1, ok := g.cellRange(r)
	if !ok {
		return
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cell := &g.cells[row*g.cols+col]
			cell.objs = append(cell.objs, obj)
		}
	}
}

func (g *GridMap) erase(obj geometry.Shape, r geometry.AABBRect) {
	c0, r0, c1, r1, ok := g.cellRange(r)
	if !ok {
		return
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cell := &g.cells[row*g.cols+col]
			cell.objs = removeShape(cell.objs, obj)
		}
	}
}

// Append adds obj. Appending a shape the grid already holds updates it.
func (g *GridMap) Append(obj geometry.Shape) {
	if obj == nil {
		return
	}
	if g.store.has(obj) {
		g.Update(obj)
		return
	}
	r, ok := g.store.add(obj)
	if !ok {
		return
	}
	if g.built && g.bounds.ContainsRect(r) {
		gridPatches.Inc()
		g.insert(obj, r)
		return
	}
	g.rebuild()
}

// Remove drops obj and reports whether the grid held it. The envelope is
// kept until the next rebuild.
func (g *GridMap) Remove(obj geometry.Shape) bool {
	r, ok := g.store.remove(obj)
	if !ok {
		return false
	}
	if g.store.len() == 0 {
		g.reset()
		return true
	}
	g.erase(obj, r)
	return true
}

// Update re-reads the bounding rect of obj after it was mutated. A shape
// whose bounds became non-finite is dropped.
func (g *GridMap) Update(obj geometry.Shape) bool {
	old, cur, ok := g.store.refresh(obj)
	if !ok {
		return false
	}
	if !finiteRect(cur) {
		g.Remove(obj)
		return false
	}
	if g.bounds.ContainsRect(cur) {
		gridPatches.Inc()
		g.erase(obj, old)
		g.insert(obj, cur)
		return true
	}
	g.rebuild()
	return true
}

func (g *GridMap) Has(obj geometry.Shape) bool { return g.store.has(obj) }

func (g *GridMap) Len() int { return g.store.len() }

// Clear drops every object and returns to the placeholder cell.
func (g *GridMap) Clear() {
	g.store.reset()
	g.reset()
}

func (g *GridMap) Objects() []geometry.Shape { return g.store.objects() }

// Bounds returns the envelope the cells were laid out over.
func (g *GridMap) Bounds() geometry.AABBRect { return g.bounds }

// Dims returns the current number of columns and rows.
func (g *GridMap) Dims() (cols, rows int) { return g.cols, g.rows }

// CellCount returns the number of cells.
func (g *GridMap) CellCount() int { return len(g.cells) }

// SelectPoint appends every shape containing p, borders included.
func (g *GridMap) SelectPoint(p geometry.Point, out []geometry.Shape) []geometry.Shape {
	gridSelectPoint.Inc()
	if !g.built || !g.bounds.ContainsPoint(p, true) {
		return out
	}
	col := cellOf(p.X, g.bounds.Left(), g.cellW, g.cols)
	row := cellOf(p.Y, g.bounds.Top(), g.cellH, g.rows)
	return newSelector().selectPoint(p, g.cells[row*g.cols+col].objs, out)
}

// SelectRect appends every shape touching r or contained in it.
func (g *GridMap) SelectRect(r geometry.AABBRect, out []geometry.Shape) []geometry.Shape {
	gridSelectRect.Inc()
	c0, r0, c1, r1, ok := g.cellRange(r)
	if !ok {
		return out
	}
	sel := newSelector()
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			out = sel.selectRect(&r, g.cells[row*g.cols+col].objs, out)
		}
	}
	return out
}

// FindCollisionObjects appends the shapes colliding with obj, which need
// not be in the grid. Without norepeat a shape is reported once per cell
// it shares with obj.
func (g *GridMap) FindCollisionObjects(obj geometry.Shape, out []geometry.Shape, norepeat bool) []geometry.Shape {
	gridFindObjects.Inc()
	if obj == nil {
		return out
	}
	c0, r0, c1, r1, ok := g.cellRange(obj.BoundingRect())
	if !ok {
		return out
	}
	scan := newObjectScan(obj, g.tester, norepeat)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			out = scan.scanCell(g.cells[row*g.cols+col].objs, out)
		}
	}
	return out
}

// FindCollisionPairs appends every colliding pair. Without norepeat a
// pair is reported once per cell both shapes share.
func (g *GridMap) FindCollisionPairs(out []Pair, norepeat bool) []Pair {
	gridFindPairs.Inc()
	n := len(out)
	scan := newPairScan(&g.store, g.tester, norepeat)
	for i := range g.cells {
		out = scan.scanCell(g.cells[i].objs, out)
	}
	gridPairs.Add(float64(len(out) - n))
	return out
}
