// Package objfile reads the subset of Wavefront OBJ used for scene models:
// vertices, polygon faces and named groups.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kingrea/rayforge/internal/geom"
	"github.com/kingrea/rayforge/internal/tracer"
)

// DefaultGroup names the faces that appear before any "g" statement.
const DefaultGroup = ""

// Model is a parsed OBJ file.
type Model struct {
	// Vertices are 1-indexed in the file; Vertex(1) is Vertices[0].
	Vertices []geom.Tuple
	// Ignored counts lines that were not understood.
	Ignored int

	groups map[string]*tracer.Group
	order  []string
}

// Vertex returns the vertex with the given 1-based index.
func (m *Model) Vertex(i int) (geom.Tuple, bool) {
	if i < 1 || i > len(m.Vertices) {
		return geom.Tuple{}, false
	}
	return m.Vertices[i-1], true
}

// Group returns the named group; DefaultGroup holds ungrouped faces.
func (m *Model) Group(name string) (*tracer.Group, bool) {
	g, ok := m.groups[name]
	return g, ok
}

// GroupNames lists groups in the order they first appeared.
func (m *Model) GroupNames() []string {
	return append([]string(nil), m.order...)
}

// Triangles counts the triangles across all groups.
func (m *Model) Triangles() int {
	n := 0
	for _, g := range m.groups {
		n += g.Len()
	}
	return n
}

// ToGroup wraps every non-empty group in a single group.
func (m *Model) ToGroup() *tracer.Group {
	root := tracer.NewGroup()
	for _, name := range m.order {
		if g := m.groups[name]; g.Len() > 0 {
			root.AddChild(g)
		}
	}
	return root
}

func (m *Model) group(name string) *tracer.Group {
	if g, ok := m.groups[name]; ok {
		return g
	}
	g := tracer.NewGroup()
	m.groups[name] = g
	m.order = append(m.order, name)
	return g
}

// Parse reads an OBJ stream. Faces with more than three vertices are
// fan-triangulated. Unknown statements are counted in Ignored; malformed
// vertices and faces referencing missing vertices are errors.
func Parse(r io.Reader) (*Model, error) {
	m := &Model{groups: map[string]*tracer.Group{}}
	current := DefaultGroup
	var pending []*tracer.Triangle

	flush := func() {
		if len(pending) == 0 {
			return
		}
		g := m.group(current)
		for _, tri := range pending {
			g.AddChild(tri)
		}
		pending = pending[:0]
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("objfile: line %d: %w", lineNo, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			tris, err := m.parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("objfile: line %d: %w", lineNo, err)
			}
			pending = append(pending, tris...)
		case "g":
			flush()
			current = strings.Join(fields[1:], " ")
		default:
			m.Ignored++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("objfile: read: %w", err)
	}
	flush()
	return m, nil
}

// Load parses the OBJ file at path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objfile: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func parseVertex(fields []string) (geom.Tuple, error) {
	if len(fields) < 3 {
		return geom.Tuple{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geom.Tuple{}, fmt.Errorf("vertex coordinate %q: %w", fields[i], err)
		}
		xyz[i] = v
	}
	return geom.Point(xyz[0], xyz[1], xyz[2]), nil
}

// parseFace accepts "f 1 2 3" as well as the "1/2/3" and "1//3" forms;
// only the vertex index is used.
func (m *Model) parseFace(fields []string) ([]*tracer.Triangle, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(fields))
	}
	verts := make([]geom.Tuple, 0, len(fields))
	for _, field := range fields {
		idx, _, _ := strings.Cut(field, "/")
		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("face index %q: %w", field, err)
		}
		v, ok := m.Vertex(i)
		if !ok {
			return nil, fmt.Errorf("face references vertex %d, only %d defined", i, len(m.Vertices))
		}
		verts = append(verts, v)
	}
	return fanTriangulation(verts), nil
}

func fanTriangulation(verts []geom.Tuple) []*tracer.Triangle {
	tris := make([]*tracer.Triangle, 0, len(verts)-2)
	for i := 1; i < len(verts)-1; i++ {
		tris = append(tris, tracer.NewTriangle(verts[0], verts[i], verts[i+1]))
	}
	return tris
}
