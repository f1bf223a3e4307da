// Package object defines the resource kinds that live in the scene graph.
package object

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/younwookim/scenecore/internal/domain/graph"
	"github.com/younwookim/scenecore/internal/domain/handle"
)

// Arrangement is the primitive topology of a mesh.
type Arrangement int

const (
	Triangles Arrangement = iota
	TriangleFan
	TriangleStrip
	Points
	Lines
	LineStrip
)

// String returns the string representation of the arrangement
func (a Arrangement) String() string {
	switch a {
	case Triangles:
		return "Triangles"
	case TriangleFan:
		return "TriangleFan"
	case TriangleStrip:
		return "TriangleStrip"
	case Points:
		return "Points"
	case Lines:
		return "Lines"
	case LineStrip:
		return "LineStrip"
	default:
		return "Unknown"
	}
}

// VertexData holds per-vertex attributes. Only Positions is required.
type VertexData struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Colors    []mgl32.Vec4
}

// Len returns the vertex count.
func (v *VertexData) Len() int { return len(v.Positions) }

// Bounds returns the axis-aligned bounding box of the positions.
func (v *VertexData) Bounds() (min, max mgl32.Vec3) {
	if len(v.Positions) == 0 {
		return
	}
	min, max = v.Positions[0], v.Positions[0]
	for _, p := range v.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// Mesh is drawable geometry bound to a material.
type Mesh struct {
	graph.Node

	Vertices    VertexData
	Indices     []uint16
	Arrangement Arrangement
	Material    handle.Handle
	Pickable    bool
	Visible     bool

	// SharesParentVertices makes the mesh draw its indices against the
	// parent mesh's vertex data.
	SharesParentVertices bool
}

// NewMesh creates an empty visible, pickable triangle mesh.
func NewMesh(h handle.Handle) *Mesh {
	return &Mesh{
		Node:     graph.NewNode(h),
		Pickable: true,
		Visible:  true,
	}
}

// SetVertices replaces the vertex data and indices.
func (m *Mesh) SetVertices(v VertexData, indices []uint16, arr Arrangement) {
	m.Vertices = v
	m.Indices = indices
	m.Arrangement = arr
}

// NewCube fills m with an axis-aligned cube of the given edge size centered at
// the origin.
func (m *Mesh) NewCube(size float32) {
	s := size / 2
	corners := [8]mgl32.Vec3{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
	faces := [6][4]int{
		{4, 5, 6, 7}, // front  +Z
		{1, 0, 3, 2}, // back   -Z
		{0, 4, 7, 3}, // left   -X
		{5, 1, 2, 6}, // right  +X
		{7, 6, 2, 3}, // top    +Y
		{0, 1, 5, 4}, // bottom -Y
	}
	normals := [6]mgl32.Vec3{{0, 0, 1}, {0, 0, -1}, {-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var v VertexData
	var idx []uint16
	for f, face := range faces {
		base := uint16(len(v.Positions))
		for i, c := range face {
			v.Positions = append(v.Positions, corners[c])
			v.Normals = append(v.Normals, normals[f])
			v.TexCoords = append(v.TexCoords, uvs[i])
		}
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	m.SetVertices(v, idx, Triangles)
}

// NewRectangle fills m with a w×h quad in the XY plane facing +Z.
func (m *Mesh) NewRectangle(w, h float32) {
	x, y := w/2, h/2
	v := VertexData{
		Positions: []mgl32.Vec3{{-x, -y, 0}, {x, -y, 0}, {x, y, 0}, {-x, y, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		TexCoords: []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
	m.SetVertices(v, []uint16{0, 1, 2, 0, 2, 3}, Triangles)
}
