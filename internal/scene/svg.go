package scene

import (
	"fmt"
	"io"
	"strings"

	"pattern-tiler/pkg/colorutil"
	"pattern-tiler/pkg/geometry"
)

// WriteSVGElements serializes every visible, non-decoration object in
// z-order as SVG elements. Each object is wrapped in its composed
// transform matrix so the markup reproduces position, scale, rotation,
// flip and skew exactly.
func (c *Canvas) WriteSVGElements(w io.Writer) error {
	for _, o := range c.objects {
		if !o.Visible || o.Decoration {
			continue
		}
		if err := writeObjectSVG(w, o); err != nil {
			return err
		}
	}
	return nil
}

// ToSVG serializes the canvas into a standalone SVG document restricted
// to the given viewBox.
func (c *Canvas) ToSVG(viewBox geometry.Rect, size geometry.Size) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="%g %g %g %g">`+"\n",
		size.Width, size.Height, viewBox.X, viewBox.Y, viewBox.Width, viewBox.Height)
	if err := c.WriteSVGElements(&b); err != nil {
		return "", err
	}
	b.WriteString("</svg>\n")
	return b.String(), nil
}

func writeObjectSVG(w io.Writer, o *Object) error {
	m := o.Transform()
	// SVG matrix(a b c d e f) maps x' = a*x + c*y + e, y' = b*x + d*y + f.
	transform := fmt.Sprintf("matrix(%g %g %g %g %g %g)", m.A, m.C, m.B, m.D, m.TX, m.TY)
	fill := colorutil.Hex(o.Fill)

	var err error
	switch o.Kind {
	case KindRect:
		_, err = fmt.Fprintf(w,
			`  <rect width="%g" height="%g" fill="%s" fill-opacity="%g" transform="%s"/>`+"\n",
			o.Width, o.Height, fill, o.Opacity, transform)
	case KindEllipse:
		_, err = fmt.Fprintf(w,
			`  <ellipse cx="%g" cy="%g" rx="%g" ry="%g" fill="%s" fill-opacity="%g" transform="%s"/>`+"\n",
			o.Width/2, o.Height/2, o.Width/2, o.Height/2, fill, o.Opacity, transform)
	case KindPath:
		_, err = fmt.Fprintf(w,
			`  <path d="%s" fill="%s" fill-opacity="%g" transform="%s"/>`+"\n",
			o.PathD, fill, o.Opacity, transform)
	default:
		err = fmt.Errorf("unknown object kind %q", o.Kind)
	}
	return err
}
