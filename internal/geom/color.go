package geom

// Color is a linear RGB triple. Components are not clamped until the
// canvas is encoded.
type Color struct {
	R, G, B float64
}

var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// RGB is shorthand for Color{r, g, b}.
func RGB(r, g, b float64) Color { return Color{r, g, b} }

func (c Color) Add(o Color) Color { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }

func (c Color) Sub(o Color) Color { return Color{c.R - o.R, c.G - o.G, c.B - o.B} }

func (c Color) Mul(s float64) Color { return Color{c.R * s, c.G * s, c.B * s} }

// Blend is the Hadamard product, used to filter a surface color by a light.
func (c Color) Blend(o Color) Color { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }

func (c Color) Equal(o Color) bool {
	return Close(c.R, o.R) && Close(c.G, o.G) && Close(c.B, o.B)
}
