// Package validation checks shape documents before they are turned into
// geometry, so malformed scene files fail with a clear error instead of
// producing NaN-poisoned indexes.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/opd-ai/go-collide/pkg/geometry"
)

// Document size and content limits
const (
	MaxDocumentSize = 32 * 1024 * 1024
	MaxShapes       = 1 << 20
	MaxPoints       = 1 << 16
	MaxLabelLen     = 64
	// MaxCoordinate bounds every coordinate so sums and squared lengths
	// stay finite.
	MaxCoordinate = 1e150
)

// ErrInvalidShape is wrapped by every error returned from this package.
var ErrInvalidShape = errors.New("invalid shape")

var validLabelChars = regexp.MustCompile(`^[a-zA-Z0-9\-_.:/#]+$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidShape, fmt.Sprintf(format, args...))
}

// ValidateDocumentSize rejects empty or oversized encoded documents.
func ValidateDocumentSize(data []byte) error {
	if len(data) == 0 {
		return invalid("document is empty")
	}
	if len(data) > MaxDocumentSize {
		return invalid("document too large: %d bytes (max %d)", len(data), MaxDocumentSize)
	}
	return nil
}

// ValidateShapeCount checks the number of shapes in a document
func ValidateShapeCount(n int) error {
	if n > MaxShapes {
		return invalid("too many shapes: %d (max %d)", n, MaxShapes)
	}
	return nil
}

// ValidateLabel checks an optional shape label. Empty labels are allowed.
func ValidateLabel(label string) (string, error) {
	if label == "" {
		return "", nil
	}
	if len(label) > MaxLabelLen {
		return "", invalid("label too long: %d characters (max %d)", len(label), MaxLabelLen)
	}
	if !utf8.ValidString(label) {
		return "", invalid("label contains invalid UTF-8 characters")
	}
	trimmed := strings.TrimSpace(label)
	if !validLabelChars.MatchString(trimmed) {
		return "", invalid("label %q contains invalid characters", label)
	}
	return trimmed, nil
}

// ValidateCoordinate checks that v is finite and inside MaxCoordinate.
func ValidateCoordinate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid("coordinate is not finite: %v", v)
	}
	if math.Abs(v) > MaxCoordinate {
		return invalid("coordinate out of range: %g", v)
	}
	return nil
}

// ValidatePoints checks every coordinate of pts.
func ValidatePoints(pts []geometry.Point) error {
	if len(pts) > MaxPoints {
		return invalid("too many points: %d (max %d)", len(pts), MaxPoints)
	}
	for i, p := range pts {
		if err := ValidateCoordinate(p.X); err != nil {
			return fmt.Errorf("point %d x: %w", i, err)
		}
		if err := ValidateCoordinate(p.Y); err != nil {
			return fmt.Errorf("point %d y: %w", i, err)
		}
	}
	return nil
}

// ValidatePointCount checks that n points can describe a shape of kind k.
// Polygons may repeat their first vertex as a closing point.
func ValidatePointCount(k geometry.Kind, n int) error {
	var ok bool
	switch k {
	case geometry.KindPoint, geometry.KindCircle:
		ok = n == 1
	case geometry.KindLine, geometry.KindAABBRect:
		ok = n == 2
	case geometry.KindTriangle:
		ok = n == 3
	case geometry.KindRectangle, geometry.KindSquare:
		ok = n == 4
	case geometry.KindPolyline, geometry.KindBezier:
		ok = n >= 2
	case geometry.KindPolygon:
		ok = n >= 3
	default:
		return invalid("unknown kind %v", k)
	}
	if !ok {
		return invalid("%v cannot have %d points", k, n)
	}
	return nil
}

// ValidateRadius checks a circle radius.
func ValidateRadius(r float64) error {
	if err := ValidateCoordinate(r); err != nil {
		return fmt.Errorf("radius: %w", err)
	}
	if r <= 0 {
		return invalid("radius must be positive: %v", r)
	}
	return nil
}

// ValidateBezierOrder checks a curve order.
func ValidateBezierOrder(order int) error {
	if order != 2 && order != 3 {
		return invalid("bezier order must be 2 or 3, got %d", order)
	}
	return nil
}

// ValidateRect checks that two corners span a box with area.
func ValidateRect(a, b geometry.Point) error {
	if a.X == b.X || a.Y == b.Y {
		return invalid("rect (%v, %v) has no area", a, b)
	}
	return nil
}
