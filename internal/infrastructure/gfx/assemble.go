package gfx

import "fmt"

// Assembly is a primitive stream broken into independent elements.
type Assembly struct {
	Triangles [][3]int
	Lines     [][2]int
	Points    []int
}

// Assemble expands an index list into elements for mode.
func Assemble(mode Primitive, idx []int) (Assembly, error) {
	var a Assembly
	switch mode {
	case PrimTriangles:
		for i := 0; i+2 < len(idx); i += 3 {
			a.Triangles = append(a.Triangles, [3]int{idx[i], idx[i+1], idx[i+2]})
		}
	case PrimTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				a.Triangles = append(a.Triangles, [3]int{idx[i], idx[i+1], idx[i+2]})
			} else {
				a.Triangles = append(a.Triangles, [3]int{idx[i+1], idx[i], idx[i+2]})
			}
		}
	case PrimTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			a.Triangles = append(a.Triangles, [3]int{idx[0], idx[i], idx[i+1]})
		}
	case PrimLines:
		for i := 0; i+1 < len(idx); i += 2 {
			a.Lines = append(a.Lines, [2]int{idx[i], idx[i+1]})
		}
	case PrimLineStrip:
		for i := 0; i+1 < len(idx); i++ {
			a.Lines = append(a.Lines, [2]int{idx[i], idx[i+1]})
		}
	case PrimPoints:
		a.Points = append(a.Points, idx...)
	default:
		return a, fmt.Errorf("primitive %d: %w", mode, ErrUnsupportedOp)
	}
	return a, nil
}

// Sequential returns first, first+1, ... first+count-1.
func Sequential(first, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = first + i
	}
	return out
}

// Widen converts uint16 indices and checks them against the vertex count.
func Widen(indices []uint16, vertexCount int) ([]int, error) {
	out := make([]int, len(indices))
	for i, v := range indices {
		if int(v) >= vertexCount {
			return nil, fmt.Errorf("index %d of %d vertices: %w", v, vertexCount, ErrIndexRange)
		}
		out[i] = int(v)
	}
	return out, nil
}
