package npy

import (
	"fmt"
	"os"
	"strings"

	"github.com/sbinet/npyio"
)

// Matrix holds row-major float32 data loaded from a .npy file.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// Row returns the i-th row. The returned slice aliases the matrix data.
func (m Matrix) Row(i int) []float32 {
	start := i * m.Cols
	return m.Data[start : start+m.Cols]
}

// LoadMatrix reads a 1-D or 2-D little-endian float .npy file. A missing
// file propagates the underlying os error unchanged in the chain.
func LoadMatrix(path string) (Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return Matrix{}, fmt.Errorf("npy: %w", err)
	}
	defer file.Close()

	reader, err := npyio.NewReader(file)
	if err != nil {
		return Matrix{}, fmt.Errorf("npy: read header %s: %w", path, err)
	}

	descr := reader.Header.Descr
	if descr.Fortran {
		return Matrix{}, fmt.Errorf("npy: %s: fortran-order arrays are not supported", path)
	}

	total := 1
	for _, dim := range descr.Shape {
		total *= dim
	}

	var data []float32
	switch {
	case strings.HasSuffix(descr.Type, "f4"):
		data = make([]float32, total)
		if total > 0 {
			if err := reader.Read(&data); err != nil {
				return Matrix{}, fmt.Errorf("npy: read %s: %w", path, err)
			}
		}
	case strings.HasSuffix(descr.Type, "f8"):
		wide := make([]float64, total)
		if total > 0 {
			if err := reader.Read(&wide); err != nil {
				return Matrix{}, fmt.Errorf("npy: read %s: %w", path, err)
			}
		}
		data = make([]float32, total)
		for i, v := range wide {
			data[i] = float32(v)
		}
	default:
		return Matrix{}, fmt.Errorf("npy: %s: unsupported dtype %q", path, descr.Type)
	}

	rows, cols := shapeDims(descr.Shape, total)
	return Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

// shapeDims flattens trailing dimensions into the column count. A 1-D array
// of length n is treated as n rows of one value.
func shapeDims(shape []int, total int) (rows, cols int) {
	switch len(shape) {
	case 0:
		if total > 0 {
			return 1, total
		}
		return 0, 0
	case 1:
		if shape[0] > 0 {
			return shape[0], 1
		}
		return 0, 0
	default:
		rows = shape[0]
		if rows > 0 {
			return rows, total / rows
		}
		cols = 1
		for _, dim := range shape[1:] {
			cols *= dim
		}
		return 0, cols
	}
}
