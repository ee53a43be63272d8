package spatial

import (
	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/metrics"
)

// QuadParams controls splitting and merging of quadtree leaves.
type QuadParams struct {
	// A leaf splits when it holds more than SplitCount objects, or more
	// than SplitMinCount while wider than SplitWidth. Merging uses the
	// mirrored strict thresholds, so a node never merges and re-splits on
	// the same count.
	SplitCount    int
	SplitMinCount int
	SplitWidth    float64
	// MaxDepth stops splitting below this level. Without it a pile of
	// coincident shapes would split forever.
	MaxDepth int
}

// DefaultQuadParams returns the usual quadtree tuning.
func DefaultQuadParams() QuadParams {
	return QuadParams{SplitCount: 40, SplitMinCount: 4, SplitWidth: 200, MaxDepth: 16}
}

// Quadrants in screen coordinates: north is the smaller y.
const (
	NorthWest = iota
	NorthEast
	SouthWest
	SouthEast
)

var (
	quadRebuilds    = metrics.IndexRebuildsTotal.WithLabelValues("quadtree")
	quadPairs       = metrics.CollisionPairsTotal.WithLabelValues("quadtree")
	quadSelectPoint = metrics.IndexQueriesTotal.WithLabelValues("quadtree", "select_point")
	quadSelectRect  = metrics.IndexQueriesTotal.WithLabelValues("quadtree", "select_rect")
	quadFindObjects = metrics.IndexQueriesTotal.WithLabelValues("quadtree", "find_objects")
	quadFindPairs   = metrics.IndexQueriesTotal.WithLabelValues("quadtree", "find_pairs")
	quadSplits      = metrics.QuadTreeNodeOpsTotal.WithLabelValues("split")
	quadMerges      = metrics.QuadTreeNodeOpsTotal.WithLabelValues("merge")
	quadGrows       = metrics.QuadTreeNodeOpsTotal.WithLabelValues("grow")
)

// quadNode is a leaf holding objects or an internal node with four
// children. Objects overlapping several quadrants are stored in each.
type quadNode struct {
	rect     geometry.AABBRect
	objs     []geometry.Shape
	children [4]*quadNode
	divided  bool
}

// QuadTree is an adaptive index that splits crowded leaves, merges sparse
// ones after removals and doubles its root to take in outlying shapes.
type QuadTree struct {
	hooks
	params QuadParams
	store  store
	root   *quadNode
}

// NewQuadTree creates an empty tree. Invalid params fall back to
// DefaultQuadParams field by field.
func NewQuadTree(params QuadParams) *QuadTree {
	def := DefaultQuadParams()
	if params.SplitCount < 1 {
		params.SplitCount = def.SplitCount
	}
	if params.SplitMinCount < 0 || params.SplitMinCount > params.SplitCount {
		params.SplitMinCount = min(def.SplitMinCount, params.SplitCount)
	}
	if params.SplitWidth <= 0 {
		params.SplitWidth = def.SplitWidth
	}
	if params.MaxDepth < 1 {
		params.MaxDepth = def.MaxDepth
	}
	q := &QuadTree{hooks: newHooks(), params: params, store: newStore()}
	q.reset()
	return q
}

// Params returns the tree tuning.
func (q *QuadTree) Params() QuadParams { return q.params }

func (q *QuadTree) reset() {
	q.root = &quadNode{rect: placeholder}
}

func (q *QuadTree) shouldSplit(n *quadNode, depth int) bool {
	if n.divided || depth >= q.params.MaxDepth {
		return false
	}
	count := len(n.objs)
	return count > q.params.SplitCount ||
		(count > q.params.SplitMinCount && n.rect.Width() > q.params.SplitWidth)
}

func (q *QuadTree) shouldMerge(count int, width float64) bool {
	return count < q.params.SplitMinCount ||
		(count < q.params.SplitCount && width <= q.params.SplitWidth)
}

// padded gives degenerate envelopes an area so quadrants stay distinct.
func padded(r geometry.AABBRect) geometry.AABBRect {
	w, h := r.Width(), r.Height()
	if w > 0 && h > 0 {
		return r
	}
	ext := max(w, h, 1)
	c := r.Center()
	return geometry.NewAABBRect(c.X-ext/2, c.Y-ext/2, c.X+ext/2, c.Y+ext/2)
}

// Build replaces the contents with objs. The root covers their envelope.
func (q *QuadTree) Build(objs []geometry.Shape) {
	q.store.reset()
	for _, obj := range objs {
		q.store.add(obj)
	}
	if q.store.len() == 0 {
		q.reset()
		return
	}
	q.root = &quadNode{rect: padded(q.store.envelope()), objs: q.store.objects()}
	q.settle(q.root, 0)

	quadRebuilds.Inc()
	q.debug("quadtree built", "objects", q.store.len(), "nodes", q.NodeCount())
	q.publishIndex(event.IndexRebuilt, q, "quadtree", q.store.len(), q.NodeCount(), q.root.rect)
}

// settle splits n, and then its children, while they are crowded.
func (q *QuadTree) settle(n *quadNode, depth int) {
	if !q.shouldSplit(n, depth) {
		return
	}
	q.subdivide(n)
	for _, child := range n.children {
		q.settle(child, depth+1)
	}
}

// quadrant returns the rect of quadrant i of r.
func quadrant(r geometry.AABBRect, i int) geometry.AABBRect {
	c := r.Center()
	switch i {
	case NorthWest:
		return geometry.NewAABBRect(r.Left(), r.Top(), c.X, c.Y)
	case NorthEast:
		return geometry.NewAABBRect(c.X, r.Top(), r.Right(), c.Y)
	case SouthWest:
		return geometry.NewAABBRect(r.Left(), c.Y, c.X, r.Bottom())
	default:
		return geometry.NewAABBRect(c.X, c.Y, r.Right(), r.Bottom())
	}
}

// subdivide splits a leaf into four quadrants and hands every object to
// each quadrant its bounding rect touches.
func (q *QuadTree) subdivide(n *quadNode) {
	for i := range n.children {
		n.children[i] = &quadNode{rect: quadrant(n.rect, i)}
	}
	for _, obj := range n.objs {
		r, _ := q.store.rect(obj)
		for _, child := range n.children {
			if child.rect.Intersects(r) {
				child.objs = append(child.objs, obj)
			}
		}
	}
	count := len(n.objs)
	n.objs = nil
	n.divided = true

	quadSplits.Inc()
	q.debug("quadtree node split", "objects", count, "width", n.rect.Width())
	q.publishIndex(event.NodeSplit, q, "quadtree", count, 4, n.rect)
}

// tryMerge collapses n into a leaf when all its children are leaves and
// together hold few enough distinct objects.
func (q *QuadTree) tryMerge(n *quadNode) {
	if !n.divided {
		return
	}
	for _, child := range n.children {
		if child.divided {
			return
		}
	}
	var objs []geometry.Shape
	seen := make(map[geometry.Shape]struct{})
	for _, child := range n.children {
		for _, obj := range child.objs {
			if _, dup := seen[obj]; !dup {
				seen[obj] = struct{}{}
				objs = append(objs, obj)
			}
		}
	}
	if !q.shouldMerge(len(objs), n.rect.Width()) {
		return
	}
	n.objs = objs
	n.children = [4]*quadNode{}
	n.divided = false

	quadMerges.Inc()
	q.debug("quadtree node merged", "objects", len(objs), "width", n.rect.Width())
	q.publishIndex(event.NodeMerged, q, "quadtree", len(objs), 1, n.rect)
}

func (q *QuadTree) insert(n *quadNode, obj geometry.Shape, r geometry.AABBRect, depth int) {
	if !n.rect.Intersects(r) {
		return
	}
	if !n.divided {
		n.objs = append(n.objs, obj)
		q.settle(n, depth)
		return
	}
	for _, child := range n.children {
		q.insert(child, obj, r, depth+1)
	}
}

// remove drops obj from every leaf under n and merges bottom-up.
func (q *QuadTree) remove(n *quadNode, obj geometry.Shape, r geometry.AABBRect) {
	if !n.rect.Intersects(r) {
		return
	}
	if !n.divided {
		n.objs = removeShape(n.objs, obj)
		return
	}
	for _, child := range n.children {
		q.remove(child, obj, r)
	}
	q.tryMerge(n)
}

// grow doubles the root towards r until it contains r. A leaf root is
// simply enlarged; an internal root becomes one quadrant of a new root.
func (q *QuadTree) grow(r geometry.AABBRect) {
	for !q.root.rect.ContainsRect(r) {
		old := q.root.rect
		w, h := old.Width(), old.Height()
		growLeft := old.Left()-r.Left() > r.Right()-old.Right()
		growUp := old.Top()-r.Top() > r.Bottom()-old.Bottom()

		x0, x1, midX := old.Left(), old.Right()+w, old.Right()
		if growLeft {
			x0, x1, midX = old.Left()-w, old.Right(), old.Left()
		}
		y0, y1, midY := old.Top(), old.Bottom()+h, old.Bottom()
		if growUp {
			y0, y1, midY = old.Top()-h, old.Bottom(), old.Top()
		}
		grown := geometry.NewAABBRect(x0, y0, x1, y1)

		quadGrows.Inc()
		q.debug("quadtree root grown", "left", grown.Left(), "top", grown.Top(), "width", grown.Width())

		if !q.root.divided {
			q.root.rect = grown
			continue
		}
		parent := &quadNode{rect: grown, divided: true}
		parent.children[NorthWest] = &quadNode{rect: geometry.NewAABBRect(x0, y0, midX, midY)}
		parent.children[NorthEast] = &quadNode{rect: geometry.NewAABBRect(midX, y0, x1, midY)}
		parent.children[SouthWest] = &quadNode{rect: geometry.NewAABBRect(x0, midY, midX, y1)}
		parent.children[SouthEast] = &quadNode{rect: geometry.NewAABBRect(midX, midY, x1, y1)}

		slot := SouthEast
		switch {
		case growLeft && !growUp:
			slot = NorthEast
		case !growLeft && growUp:
			slot = SouthWest
		case !growLeft && !growUp:
			slot = NorthWest
		}
		parent.children[slot] = q.root
		q.root = parent
	}
}

// Append adds obj, growing the root when obj lies outside it. Appending a
// shape the tree already holds updates it.
func (q *QuadTree) Append(obj geometry.Shape) {
	if obj == nil {
		return
	}
	if q.store.has(obj) {
		q.Update(obj)
		return
	}
	r, ok := q.store.add(obj)
	if !ok {
		return
	}
	q.place(obj, r)
}

func (q *QuadTree) place(obj geometry.Shape, r geometry.AABBRect) {
	q.grow(r)
	q.insert(q.root, obj, r, 0)
}

// Remove drops obj and reports whether the tree held it.
func (q *QuadTree) Remove(obj geometry.Shape) bool {
	r, ok := q.store.remove(obj)
	if !ok {
		return false
	}
	q.remove(q.root, obj, r)
	return true
}

// Update re-reads the bounding rect of obj after it was mutated. A shape
// whose bounds became non-finite is dropped.
func (q *QuadTree) Update(obj geometry.Shape) bool {
	old, cur, ok := q.store.refresh(obj)
	if !ok {
		return false
	}
	if !finiteRect(cur) {
		q.Remove(obj)
		return false
	}
	q.remove(q.root, obj, old)
	q.place(obj, cur)
	return true
}

func (q *QuadTree) Has(obj geometry.Shape) bool { return q.store.has(obj) }

func (q *QuadTree) Len() int { return q.store.len() }

// Clear drops every object and shrinks the root back to the placeholder.
func (q *QuadTree) Clear() {
	q.store.reset()
	q.reset()
}

func (q *QuadTree) Objects() []geometry.Shape { return q.store.objects() }

// Bounds returns the root rectangle.
func (q *QuadTree) Bounds() geometry.AABBRect { return q.root.rect }

func (n *quadNode) walk(depth int, fn func(n *quadNode, depth int)) {
	fn(n, depth)
	if n.divided {
		for _, child := range n.children {
			child.walk(depth+1, fn)
		}
	}
}

// Depth returns the number of levels; a lone root leaf has depth 1.
func (q *QuadTree) Depth() int {
	depth := 0
	q.root.walk(1, func(_ *quadNode, d int) { depth = max(depth, d) })
	return depth
}

// NodeCount returns the number of nodes, leaves included.
func (q *QuadTree) NodeCount() int {
	count := 0
	q.root.walk(1, func(*quadNode, int) { count++ })
	return count
}

// LeafCount returns the number of leaves.
func (q *QuadTree) LeafCount() int {
	count := 0
	q.root.walk(1, func(n *quadNode, _ int) {
		if !n.divided {
			count++
		}
	})
	return count
}

// SelectPoint appends every shape containing p, borders included.
func (q *QuadTree) SelectPoint(p geometry.Point, out []geometry.Shape) []geometry.Shape {
	quadSelectPoint.Inc()
	sel := newSelector()
	var visit func(n *quadNode)
	visit = func(n *quadNode) {
		if !n.rect.ContainsPoint(p, true) {
			return
		}
		if !n.divided {
			out = sel.selectPoint(p, n.objs, out)
			return
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(q.root)
	return out
}

// SelectRect appends every shape touching r or contained in it.
func (q *QuadTree) SelectRect(r geometry.AABBRect, out []geometry.Shape) []geometry.Shape {
	quadSelectRect.Inc()
	sel := newSelector()
	var visit func(n *quadNode)
	visit = func(n *quadNode) {
		if !n.rect.Intersects(r) {
			return
		}
		if !n.divided {
			out = sel.selectRect(&r, n.objs, out)
			return
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(q.root)
	return out
}

// FindCollisionObjects appends the shapes colliding with obj, which need
// not be in the tree. Without norepeat a shape is reported once per leaf
// it shares with obj.
func (q *QuadTree) FindCollisionObjects(obj geometry.Shape, out []geometry.Shape, norepeat bool) []geometry.Shape {
	quadFindObjects.Inc()
	if obj == nil {
		return out
	}
	r := obj.BoundingRect()
	scan := newObjectScan(obj, q.tester, norepeat)
	var visit func(n *quadNode)
	visit = func(n *quadNode) {
		if !n.rect.Intersects(r) {
			return
		}
		if !n.divided {
			out = scan.scanCell(n.objs, out)
			return
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(q.root)
	return out
}

// FindCollisionPairs appends every colliding pair. Without norepeat a
// pair is reported once per leaf both shapes share.
func (q *QuadTree) FindCollisionPairs(out []Pair, norepeat bool) []Pair {
	quadFindPairs.Inc()
	n := len(out)
	scan := newPairScan(&q.store, q.tester, norepeat)
	q.root.walk(1, func(node *quadNode, _ int) {
		if !node.divided {
			out = scan.scanCell(node.objs, out)
		}
	})
	quadPairs.Add(float64(len(out) - n))
	return out
}
