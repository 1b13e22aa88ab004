package tracer

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/rayforge/internal/canvas"
	"github.com/kingrea/rayforge/internal/geom"
)

// Camera maps a canvas one unit in front of the eye onto the world. The
// eye looks toward -z until a view transform is set.
type Camera struct {
	HSize       int
	VSize       int
	FieldOfView float64
	// Workers caps the rows rendered concurrently; zero means GOMAXPROCS.
	Workers int

	transform  geom.Matrix
	inverse    geom.Matrix
	pixelSize  float64
	halfWidth  float64
	halfHeight float64
}

// NewCamera returns a camera of hsize×vsize pixels with the given field of
// view in radians.
func NewCamera(hsize, vsize int, fieldOfView float64) *Camera {
	c := &Camera{
		HSize:       hsize,
		VSize:       vsize,
		FieldOfView: fieldOfView,
		transform:   geom.Identity(),
		inverse:     geom.Identity(),
	}
	halfView := math.Tan(fieldOfView / 2)
	aspect := float64(hsize) / float64(vsize)
	if aspect >= 1 {
		c.halfWidth = halfView
		c.halfHeight = halfView / aspect
	} else {
		c.halfWidth = halfView * aspect
		c.halfHeight = halfView
	}
	c.pixelSize = c.halfWidth * 2 / float64(hsize)
	return c
}

func (c *Camera) PixelSize() float64 { return c.pixelSize }

func (c *Camera) Transform() geom.Matrix { return c.transform }

// SetTransform panics if m is not invertible.
func (c *Camera) SetTransform(m geom.Matrix) {
	c.transform = m
	c.inverse = geom.MustInverse(m)
}

// RayForPixel returns the ray from the eye through the center of (px, py).
func (c *Camera) RayForPixel(px, py int) Ray {
	xoffset := (float64(px) + 0.5) * c.pixelSize
	yoffset := (float64(py) + 0.5) * c.pixelSize
	// +x is to the left when looking toward -z.
	worldX := c.halfWidth - xoffset
	worldY := c.halfHeight - yoffset

	pixel := c.inverse.MulTuple(geom.Point(worldX, worldY, -1))
	origin := c.inverse.MulTuple(geom.Origin)
	return NewRay(origin, pixel.Sub(origin).Normalize())
}

// Render traces every pixel of w. Rows are rendered in parallel; the
// first context error stops the remaining rows.
func (c *Camera) Render(ctx context.Context, w *World) (*canvas.Canvas, error) {
	image := canvas.New(c.HSize, c.VSize)
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < c.VSize; y++ {
		if gctx.Err() != nil {
			break
		}
		y := y
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for x := 0; x < c.HSize; x++ {
				image.WritePixel(x, y, w.ColorAt(c.RayForPixel(x, y), MaxDepth))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return image, nil
}
