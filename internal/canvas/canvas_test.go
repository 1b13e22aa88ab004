package canvas

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/kingrea/rayforge/internal/geom"
)

func TestNewCanvasIsBlack(t *testing.T) {
	c := New(10, 20)
	assert.Equal(t, 10, c.Width)
	assert.Equal(t, 20, c.Height)
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			require.Equal(t, geom.Black, c.PixelAt(x, y))
		}
	}
}

func TestWritePixel(t *testing.T) {
	c := New(10, 20)
	red := geom.RGB(1, 0, 0)
	c.WritePixel(2, 3, red)
	assert.Equal(t, red, c.PixelAt(2, 3))

	c.WritePixel(-1, 3, red)
	c.WritePixel(10, 0, red)
	assert.Equal(t, geom.Black, c.PixelAt(10, 0))
}

func TestPPMHeaderAndPixels(t *testing.T) {
	c := New(5, 3)
	c.WritePixel(0, 0, geom.RGB(1.5, 0, 0))
	c.WritePixel(2, 1, geom.RGB(0, 0.5, 0))
	c.WritePixel(4, 2, geom.RGB(-0.5, 0, 1))

	lines := strings.Split(c.PPM(), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, []string{
		"P3",
		"5 3",
		"255",
		"255 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
		"0 0 0 0 0 0 0 128 0 0 0 0 0 0 0",
		"0 0 0 0 0 0 0 0 0 0 0 0 0 0 255",
		"",
	}, lines)
}

func TestPPMWritesNaNAsZero(t *testing.T) {
	c := New(1, 1)
	c.WritePixel(0, 0, geom.RGB(math.NaN(), 1, math.NaN()))
	assert.Equal(t, "P3\n1 1\n255\n0 255 0\n", c.PPM())
}

func TestPPMWrapsLongLines(t *testing.T) {
	c := New(10, 2)
	c.Fill(geom.RGB(1, 0.8, 0.6))
	ppm := c.PPM()
	assert.True(t, strings.HasSuffix(ppm, "\n"))

	lines := strings.Split(strings.TrimSuffix(ppm, "\n"), "\n")[3:]
	assert.Equal(t, []string{
		"255 204 153 255 204 153 255 204 153 255 204 153 255 204 153 255 204",
		"153 255 204 153 255 204 153 255 204 153 255 204 153",
		"255 204 153 255 204 153 255 204 153 255 204 153 255 204 153 255 204",
		"153 255 204 153 255 204 153 255 204 153 255 204 153",
	}, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), MaxLineLength)
	}
}

func TestImageAdapterClampsComponents(t *testing.T) {
	c := New(2, 1)
	c.WritePixel(0, 0, geom.RGB(1.5, 0.5, -1))
	img := c.Image()
	assert.Equal(t, 2, img.Bounds().Dx())
	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(128*0x101), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestFormatFor(t *testing.T) {
	for path, want := range map[string]Format{
		"canvas.ppm":    FormatPPM,
		"out/scene.PNG": FormatPNG,
		"scene.bmp":     FormatBMP,
	} {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFor("scene.jpg")
	assert.Error(t, err)
}

func TestSaveRoundTripsThroughDecoders(t *testing.T) {
	dir := t.TempDir()
	c := New(3, 2)
	c.WritePixel(1, 1, geom.RGB(0, 1, 0))

	ppmPath := filepath.Join(dir, "canvas.ppm")
	require.NoError(t, c.Save(ppmPath))
	data, err := os.ReadFile(ppmPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("P3\n3 2\n255\n")))

	pngPath := filepath.Join(dir, "nested", "canvas.png")
	require.NoError(t, c.Save(pngPath))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	_, g, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), g)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, FormatBMP))
	decoded, err := bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Bounds().Dx())

	assert.Error(t, c.Save(filepath.Join(dir, "canvas.gif")))
}
