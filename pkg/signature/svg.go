package signature

import (
	"bytes"
	"fmt"
)

const labelColor = "#718096"

// RenderSVG serializes c as a self-contained 300×200 SVG document. Edges are
// drawn before nodes so markers sit on top; overlay shapes come last.
func RenderSVG(c Constellation) string {
	var els bytes.Buffer
	for k, e := range c.Edges {
		if k > 0 {
			els.WriteByte('\n')
		}
		renderEdge(&els, c, e)
	}
	for k, n := range c.Nodes {
		if k > 0 || len(c.Edges) > 0 {
			els.WriteByte('\n')
		}
		renderNode(&els, c.Scheme, n)
	}
	for _, s := range c.Shapes {
		els.WriteByte('\n')
		renderShape(&els, c.Scheme, s)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" style="overflow: hidden;">`+"\n",
		Width, Height, Width, Height)
	fmt.Fprintf(&buf, `    <defs><clipPath id="clip-%s"><rect x="0" y="0" width="%d" height="%d" rx="12"/></clipPath></defs>`+"\n",
		c.ClipID, Width, Height)
	fmt.Fprintf(&buf, `    <rect width="%d" height="%d" fill="%s" rx="12"/>`+"\n", Width, Height, c.Scheme.Background)
	fmt.Fprintf(&buf, `    <g clip-path="url(#clip-%s)">%s</g>`+"\n", c.ClipID, els.Bytes())
	fmt.Fprintf(&buf, `    <text x="150" y="188" font-size="9" text-anchor="middle" fill="%s" font-family="monospace" letter-spacing="0.5">#%s</text>`+"\n",
		labelColor, c.SignatureID)
	buf.WriteString("  </svg>")
	return buf.String()
}

func renderEdge(buf *bytes.Buffer, c Constellation, e Edge) {
	a, b := c.Nodes[e.From], c.Nodes[e.To]
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" opacity="%s" stroke-linecap="round"/>`,
		fixed(a.X, 1), fixed(a.Y, 1), fixed(b.X, 1), fixed(b.Y, 1),
		c.Scheme.Primary, fixed(e.StrokeWidth, 1), fixed(e.Opacity, 2))
}

func renderNode(buf *bytes.Buffer, s ColorScheme, n Node) {
	fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="%s"/>`,
		fixed(n.X, 1), fixed(n.Y, 1), fixed(n.Size, 1), s.Secondary, fixed(n.Opacity, 2))
}

func renderShape(buf *bytes.Buffer, s ColorScheme, sh Shape) {
	if sh.Kind == ShapeCircle {
		fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="1.5" opacity="%s"/>`,
			fixed(sh.CX, 1), fixed(sh.CY, 1), fixed(sh.Size/2, 1), s.Primary, fixed(sh.Opacity, 2))
		return
	}
	cx, cy := fixed(sh.CX, 1), fixed(sh.CY, 1)
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="1.5" opacity="%s" transform="rotate(%s %s %s)"/>`,
		fixed(sh.CX-sh.Size/2, 1), fixed(sh.CY-sh.Size/2, 1), fixed(sh.Size, 1), fixed(sh.Size, 1),
		s.Primary, fixed(sh.Opacity, 2), fixed(sh.Rotation, 1), cx, cy)
}
