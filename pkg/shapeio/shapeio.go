// Package shapeio reads and writes shape sets as JSON or msgpack
// documents, so scenes can be stored, diffed and fed to the collide CLI.
package shapeio

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/validation"
)

// ErrUnknownKind is returned for shape kinds this package cannot encode
// or decode.
var ErrUnknownKind = errors.New("unknown shape kind")

// Document is an ordered shape set.
type Document struct {
	Shapes []ShapeDoc `json:"shapes" msgpack:"shapes"`
}

// ShapeDoc is the serialized form of one shape. Points holds the defining
// points of the kind: the two corners of an aabbrect, the four corners of
// a rectangle or square, the center of a circle, the vertices of a polygon
// and the control points of a bezier.
type ShapeDoc struct {
	Kind   string       `json:"kind" msgpack:"kind"`
	Label  string       `json:"label,omitempty" msgpack:"label,omitempty"`
	Points [][2]float64 `json:"points" msgpack:"points"`
	Radius float64      `json:"radius,omitempty" msgpack:"radius,omitempty"`
	Order  int          `json:"order,omitempty" msgpack:"order,omitempty"`
}

func toPoints(raw [][2]float64) []geometry.Point {
	pts := make([]geometry.Point, len(raw))
	for i, p := range raw {
		pts[i] = geometry.Point{X: p[0], Y: p[1]}
	}
	return pts
}

func fromPoints(pts []geometry.Point) [][2]float64 {
	raw := make([][2]float64, len(pts))
	for i, p := range pts {
		raw[i] = [2]float64{p.X, p.Y}
	}
	return raw
}

// ToShape validates sd and builds the shape it describes.
func (sd ShapeDoc) ToShape() (geometry.Shape, error) {
	kind, ok := geometry.ParseKind(sd.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, sd.Kind)
	}
	if _, err := validation.ValidateLabel(sd.Label); err != nil {
		return nil, err
	}
	if err := validation.ValidatePointCount(kind, len(sd.Points)); err != nil {
		return nil, err
	}
	pts := toPoints(sd.Points)
	if err := validation.ValidatePoints(pts); err != nil {
		return nil, err
	}

	switch kind {
	case geometry.KindPoint:
		p := pts[0]
		return &p, nil
	case geometry.KindLine:
		return geometry.NewLine(pts[0], pts[1]), nil
	case geometry.KindPolyline:
		return geometry.NewPolyline(pts...), nil
	case geometry.KindPolygon:
		return geometry.NewPolygon(pts...), nil
	case geometry.KindAABBRect:
		if err := validation.ValidateRect(pts[0], pts[1]); err != nil {
			return nil, err
		}
		r := geometry.NewAABBRect(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y)
		return &r, nil
	case geometry.KindRectangle:
		return geometry.RectangleFromCorners(pts[0], pts[1], pts[2], pts[3]), nil
	case geometry.KindSquare:
		return geometry.SquareFromCorners(pts[0], pts[1], pts[2], pts[3]), nil
	case geometry.KindCircle:
		if err := validation.ValidateRadius(sd.Radius); err != nil {
			return nil, err
		}
		return geometry.NewCircle(pts[0].X, pts[0].Y, sd.Radius), nil
	case geometry.KindTriangle:
		return geometry.NewTriangle(pts[0], pts[1], pts[2]), nil
	case geometry.KindBezier:
		if err := validation.ValidateBezierOrder(sd.Order); err != nil {
			return nil, err
		}
		return geometry.NewBezier(pts, sd.Order), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}

// FromShape serializes s under the given label.
func FromShape(s geometry.Shape, label string) (ShapeDoc, error) {
	sd := ShapeDoc{Label: label}
	switch v := s.(type) {
	case *geometry.Point:
		sd.Points = fromPoints([]geometry.Point{*v})
	case *geometry.Line:
		sd.Points = fromPoints([]geometry.Point{v.Front, v.Back})
	case *geometry.Polyline:
		sd.Points = fromPoints(v.Points())
	case *geometry.Polygon:
		verts := make([]geometry.Point, v.VertexCount())
		for i := range verts {
			verts[i] = v.Vertex(i)
		}
		sd.Points = fromPoints(verts)
	case *geometry.AABBRect:
		sd.Points = [][2]float64{{v.Left(), v.Top()}, {v.Right(), v.Bottom()}}
	case *geometry.Square:
		sd.Points = fromPoints([]geometry.Point{v.Vertex(0), v.Vertex(1), v.Vertex(2), v.Vertex(3)})
	case *geometry.Rectangle:
		sd.Points = fromPoints([]geometry.Point{v.Vertex(0), v.Vertex(1), v.Vertex(2), v.Vertex(3)})
	case *geometry.Circle:
		sd.Points = fromPoints([]geometry.Point{v.Center})
		sd.Radius = v.Radius
	case *geometry.Triangle:
		sd.Points = fromPoints(v.Points())
	case *geometry.Bezier:
		sd.Points = fromPoints(v.Controls())
		sd.Order = v.Order()
	default:
		return ShapeDoc{}, fmt.Errorf("%w: %T", ErrUnknownKind, s)
	}
	sd.Kind = s.Kind().String()
	return sd, nil
}

// NewDocument serializes shapes. labels may be shorter than shapes or nil.
func NewDocument(shapes []geometry.Shape, labels []string) (*Document, error) {
	doc := &Document{Shapes: make([]ShapeDoc, 0, len(shapes))}
	for i, s := range shapes {
		var label string
		if i < len(labels) {
			label = labels[i]
		}
		sd, err := FromShape(s, label)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		doc.Shapes = append(doc.Shapes, sd)
	}
	return doc, nil
}

// Build turns every entry into a shape and returns the shapes alongside
// their labels.
func (d *Document) Build() ([]geometry.Shape, []string, error) {
	if err := validation.ValidateShapeCount(len(d.Shapes)); err != nil {
		return nil, nil, err
	}
	shapes := make([]geometry.Shape, len(d.Shapes))
	labels := make([]string, len(d.Shapes))
	for i, sd := range d.Shapes {
		s, err := sd.ToShape()
		if err != nil {
			return nil, nil, fmt.Errorf("shape %d: %w", i, err)
		}
		shapes[i] = s
		labels[i] = sd.Label
	}
	return shapes, labels, nil
}
