package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/scenecore/internal/domain/object"
)

var ErrMalformed = errors.New("malformed mesh file")

type objCorner struct {
	v, vt, vn int
}

// DecodeOBJ reads the geometry subset of Wavefront OBJ: v, vt, vn and f
// records. Polygons are fan-triangulated. Other records are ignored.
func DecodeOBJ(r io.Reader) (MeshData, error) {
	var (
		positions []mgl32.Vec3
		texcoords []mgl32.Vec2
		normals   []mgl32.Vec3
		out       MeshData
		seen      = make(map[objCorner]uint16)
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return MeshData{}, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{f[0], f[1], f[2]})
		case "vt":
			f, err := parseFloats(fields[1:], 2)
			if err != nil {
				return MeshData{}, fmt.Errorf("line %d: %w", line, err)
			}
			texcoords = append(texcoords, mgl32.Vec2{f[0], f[1]})
		case "vn":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return MeshData{}, fmt.Errorf("line %d: %w", line, err)
			}
			normals = append(normals, mgl32.Vec3{f[0], f[1], f[2]})
		case "f":
			if len(fields) < 4 {
				return MeshData{}, fmt.Errorf("line %d: face needs 3 vertices: %w", line, ErrMalformed)
			}
			idx := make([]uint16, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(texcoords), len(normals))
				if err != nil {
					return MeshData{}, fmt.Errorf("line %d: %w", line, err)
				}
				i, ok := seen[c]
				if !ok {
					if out.Vertices.Len() > math.MaxUint16 {
						return MeshData{}, fmt.Errorf("line %d: too many vertices: %w", line, ErrMalformed)
					}
					i = uint16(out.Vertices.Len())
					seen[c] = i
					out.Vertices.Positions = append(out.Vertices.Positions, positions[c.v])
					if c.vt >= 0 {
						out.Vertices.TexCoords = append(out.Vertices.TexCoords, texcoords[c.vt])
					}
					if c.vn >= 0 {
						out.Vertices.Normals = append(out.Vertices.Normals, normals[c.vn])
					}
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				out.Indices = append(out.Indices, idx[0], idx[k], idx[k+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return MeshData{}, err
	}
	if len(out.Indices) == 0 {
		return MeshData{}, fmt.Errorf("no faces: %w", ErrMalformed)
	}
	// Attribute arrays are only kept when every vertex has one.
	if len(out.Vertices.TexCoords) != out.Vertices.Len() {
		out.Vertices.TexCoords = nil
	}
	if len(out.Vertices.Normals) != out.Vertices.Len() {
		out.Vertices.Normals = nil
	}
	out.Arrangement = object.Triangles
	return out, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d: %w", n, len(fields), ErrMalformed)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", fields[i], ErrMalformed)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner parses v, v/vt, v//vn or v/vt/vn. Indices are 1-based and
// negative values count back from the end.
func parseCorner(tok string, nv, nvt, nvn int) (objCorner, error) {
	c := objCorner{v: -1, vt: -1, vn: -1}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return c, fmt.Errorf("face corner %q: %w", tok, ErrMalformed)
	}
	dst := []*int{&c.v, &c.vt, &c.vn}
	counts := []int{nv, nvt, nvn}
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return c, fmt.Errorf("face corner %q: %w", tok, ErrMalformed)
			}
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n == 0 {
			return c, fmt.Errorf("face corner %q: %w", tok, ErrMalformed)
		}
		if n < 0 {
			n = counts[i] + n
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return c, fmt.Errorf("face corner %q out of range: %w", tok, ErrMalformed)
		}
		*dst[i] = n
	}
	return c, nil
}
