package canvas

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
)

// MaxLineLength bounds PPM body lines.
const MaxLineLength = 70

// WritePPM encodes the canvas as plain PPM (P3). Each pixel row starts on a
// new line and lines wrap before exceeding MaxLineLength characters.
func (c *Canvas) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", c.Width, c.Height)
	for y := 0; y < c.Height; y++ {
		line := 0
		for x := 0; x < c.Width; x++ {
			px := c.PixelAt(x, y)
			for _, v := range [3]float64{px.R, px.G, px.B} {
				tok := strconv.Itoa(component(v))
				if line > 0 && line+1+len(tok) > MaxLineLength {
					bw.WriteByte('\n')
					line = 0
				}
				if line > 0 {
					bw.WriteByte(' ')
					line++
				}
				bw.WriteString(tok)
				line += len(tok)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// PPM returns the encoded canvas as a string.
func (c *Canvas) PPM() string {
	var sb strings.Builder
	_ = c.WritePPM(&sb)
	return sb.String()
}

// Format is an output encoding.
type Format string

const (
	FormatPPM Format = "ppm"
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ppm":
		return FormatPPM, nil
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("canvas: unsupported image extension %q (want .ppm, .png or .bmp)", ext)
	}
}

// Encode writes the canvas in the given format.
func (c *Canvas) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatPPM:
		return c.WritePPM(w)
	case FormatPNG:
		return png.Encode(w, c.Image())
	case FormatBMP:
		return bmp.Encode(w, c.Image())
	default:
		return fmt.Errorf("canvas: unknown format %q", format)
	}
}

// Save writes the canvas to path, choosing the format from its extension.
func (c *Canvas) Save(path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("canvas: create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("canvas: create %s: %w", path, err)
	}
	if err := c.Encode(f, format); err != nil {
		f.Close()
		return fmt.Errorf("canvas: encode %s: %w", path, err)
	}
	return f.Close()
}
