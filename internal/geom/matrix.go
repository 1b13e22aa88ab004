package geom

import (
	"errors"
	"fmt"
)

// ErrSingular is returned when inverting a matrix whose determinant is zero.
var ErrSingular = errors.New("geom: matrix is not invertible")

// Matrix is a row-major 4x4 matrix.
type Matrix [4][4]float64

// Identity returns the 4x4 identity matrix.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m × o.
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][c] = m[r][0]*o[0][c] + m[r][1]*o[1][c] + m[r][2]*o[2][c] + m[r][3]*o[3][c]
		}
	}
	return out
}

// MulTuple returns m × t.
func (m Matrix) MulTuple(t Tuple) Tuple {
	row := func(r int) float64 {
		return m[r][0]*t.X + m[r][1]*t.Y + m[r][2]*t.Z + m[r][3]*t.W
	}
	return Tuple{row(0), row(1), row(2), row(3)}
}

func (m Matrix) Transpose() Matrix {
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c][r] = m[r][c]
		}
	}
	return out
}

func (m Matrix) Determinant() float64 {
	return determinant(m.rows())
}

// Cofactor is the signed minor of element (row, col).
func (m Matrix) Cofactor(row, col int) float64 {
	return cofactor(m.rows(), row, col)
}

func (m Matrix) Invertible() bool {
	return m.Determinant() != 0
}

// Inverse returns m⁻¹ or ErrSingular.
func (m Matrix) Inverse() (Matrix, error) {
	rows := m.rows()
	det := determinant(rows)
	if det == 0 {
		return Matrix{}, ErrSingular
	}
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c][r] = cofactor(rows, r, c) / det
		}
	}
	return out, nil
}

// MustInverse is Inverse for matrices built from known-good transforms.
// It panics when m is singular.
func MustInverse(m Matrix) Matrix {
	inv, err := m.Inverse()
	if err != nil {
		panic(fmt.Sprintf("%v: %v", err, m))
	}
	return inv
}

func (m Matrix) Equal(o Matrix) bool {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if !Close(m[r][c], o[r][c]) {
				return false
			}
		}
	}
	return true
}

func (m Matrix) rows() [][]float64 {
	rows := make([][]float64, 4)
	for r := range rows {
		rows[r] = m[r][:]
	}
	return rows
}

func determinant(rows [][]float64) float64 {
	if len(rows) == 2 {
		return rows[0][0]*rows[1][1] - rows[0][1]*rows[1][0]
	}
	var det float64
	for c := range rows[0] {
		det += rows[0][c] * cofactor(rows, 0, c)
	}
	return det
}

func cofactor(rows [][]float64, row, col int) float64 {
	minor := determinant(submatrix(rows, row, col))
	if (row+col)%2 == 1 {
		return -minor
	}
	return minor
}

func submatrix(rows [][]float64, row, col int) [][]float64 {
	out := make([][]float64, 0, len(rows)-1)
	for r, src := range rows {
		if r == row {
			continue
		}
		line := make([]float64, 0, len(src)-1)
		for c, v := range src {
			if c != col {
				line = append(line, v)
			}
		}
		out = append(out, line)
	}
	return out
}
