package signature

import "math"

// Canvas geometry. The drawable region leaves room for the label at the bottom.
const (
	Width  = 300
	Height = 200

	padding    = 40
	minX       = padding
	maxX       = Width - padding
	minY       = padding + 15
	maxY       = Height - padding - 20
	drawWidth  = maxX - minX
	drawHeight = maxY - minY

	minNodes     = 4
	maxNodes     = 12
	defaultNodes = 5
)

// ShapeKind distinguishes the two decorative overlay outlines.
type ShapeKind string

const (
	ShapeCircle ShapeKind = "circle"
	ShapeSquare ShapeKind = "square"
)

// Node is a constellation point.
type Node struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Opacity float64 `json:"opacity"`
}

// Edge connects nodes From and To (From < To).
type Edge struct {
	From        int     `json:"from"`
	To          int     `json:"to"`
	Opacity     float64 `json:"opacity"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Shape is a faint overlay outline centered at (CX, CY) with side or diameter Size.
type Shape struct {
	Kind     ShapeKind `json:"kind"`
	CX       float64   `json:"cx"`
	CY       float64   `json:"cy"`
	Size     float64   `json:"size"`
	Opacity  float64   `json:"opacity"`
	Rotation float64   `json:"rotation,omitempty"` // degrees, squares only
}

// Constellation is the computed layout of a signature before serialization.
type Constellation struct {
	Hash        int32       `json:"hash"`
	SignatureID string      `json:"signature_id"`
	ClipID      string      `json:"clip_id"`
	Scheme      ColorScheme `json:"scheme"`
	Nodes       []Node      `json:"nodes"`
	Edges       []Edge      `json:"edges"`
	Shapes      []Shape     `json:"shapes"`
}

// NodeCount clamps skillsCount to [4, 12]. A zero count is treated as
// missing and yields 5.
func NodeCount(skillsCount int) int {
	n := skillsCount
	if n == 0 {
		n = defaultNodes
	}
	return min(max(n, minNodes), maxNodes)
}

// Layout computes the constellation for req. Edges are listed in the order
// they are drawn: by i, then j.
func Layout(req Request) Constellation {
	hash := Hash(HashString(req))
	rnd := NewSource(Seed(hash))

	c := Constellation{
		Hash:        hash,
		SignatureID: ID(hash),
		ClipID:      clipID(hash),
		Scheme:      SchemeFor(req.Model),
	}
	c.Nodes = placeNodes(rnd, NodeCount(req.SkillsCount))
	c.Edges = connect(rnd, c.Nodes)
	c.Shapes = overlay(rnd)
	return c
}

func placeNodes(rnd Source, n int) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{
			X:       minX + rnd.At(i*2)*drawWidth,
			Y:       minY + rnd.At(i*2+1)*drawHeight,
			Size:    2 + rnd.At(i*3)*3,
			Opacity: 0.4 + rnd.At(i*4)*0.4,
		}
	}
	return nodes
}

// connect links every pair closer than a per-pair threshold in [80, 120).
func connect(rnd Source, nodes []Node) []Edge {
	var edges []Edge
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			dx := nodes[j].X - nodes[i].X
			dy := nodes[j].Y - nodes[i].Y
			if math.Sqrt(dx*dx+dy*dy) >= 80+rnd.At(i*j)*40 {
				continue
			}
			edges = append(edges, Edge{
				From:        i,
				To:          j,
				Opacity:     0.15 + rnd.At(i+j)*0.25,
				StrokeWidth: 1 + rnd.At(i*2+j)*1.5,
			})
		}
	}
	return edges
}

func overlay(rnd Source) []Shape {
	n := int(math.Floor(rnd.At(100)*2)) + 1
	shapes := make([]Shape, n)
	for i := range shapes {
		s := Shape{
			Kind:    ShapeSquare,
			CX:      minX + rnd.At(i*10)*drawWidth,
			CY:      minY + rnd.At(i*11)*drawHeight,
			Size:    15 + rnd.At(i*12)*25,
			Opacity: 0.08 + rnd.At(i*13)*0.12,
		}
		if rnd.At(i*14) > 0.5 {
			s.Kind = ShapeCircle
		} else {
			s.Rotation = rnd.At(i*15) * 45
		}
		shapes[i] = s
	}
	return shapes
}
