package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/scenecore/internal/domain/graph"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/material"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/domain/resource"
)

func TestNew_RootAndDefaultMaterial(t *testing.T) {
	s := New()

	root, err := s.Node(s.Root())
	require.NoError(t, err)
	assert.Equal(t, handle.KindScene, s.Root().Kind)
	assert.False(t, root.HasParent())
	assert.True(t, s.HasMaterial(s.DefaultMaterial()))
	assert.Equal(t, 1, s.Stats().Materials)
}

func TestHandleLifecycle(t *testing.T) {
	s := New()

	h := s.NewMesh()
	assert.True(t, s.HasMesh(h))
	require.NoError(t, s.DeleteMesh(h))
	assert.False(t, s.HasMesh(h))

	err := s.DeleteMesh(h)
	assert.ErrorIs(t, err, resource.ErrUnknownHandle)

	_, err = s.Mesh(h)
	assert.ErrorIs(t, err, resource.ErrUnknownHandle)

	seen := map[uint64]bool{h.ID: true}
	for i := 0; i < 50; i++ {
		n := s.NewMesh()
		assert.False(t, seen[n.ID], "handle %s reissued", n)
		seen[n.ID] = true
	}
}

func TestIndependentScenesHaveIndependentCounters(t *testing.T) {
	a, b := New(), New()
	assert.Equal(t, a.NewMesh(), b.NewMesh())

	shared := handle.NewAllocator()
	c, d := New(WithAllocator(shared)), New(WithAllocator(shared))
	assert.NotEqual(t, c.NewMesh(), d.NewMesh())
}

func TestSpatialKindsAttachToRoot(t *testing.T) {
	s := New()
	spatial := []handle.Handle{
		s.NewMesh(),
		s.NewCamera(),
		s.NewLight(object.Point),
		s.NewText("hi", handle.None),
	}
	root, _ := s.Node(s.Root())
	for _, h := range spatial {
		assert.True(t, root.HasChild(h), "%s not under root", h)
	}

	detached := []handle.Handle{
		s.NewOverlay(0),
		s.NewMaterial(),
		s.NewProgram("p", "", ""),
		s.NewTexture(nil),
		s.NewFont(nil, 0),
	}
	for _, h := range detached {
		n, err := s.Node(h)
		require.NoError(t, err)
		assert.False(t, n.HasParent(), "%s should be parentless", h)
	}
}

func TestNewMesh_GetsDefaultMaterial(t *testing.T) {
	s := New()
	m, err := s.Mesh(s.NewMesh())
	require.NoError(t, err)
	assert.Equal(t, s.DefaultMaterial(), m.Material)
}

func TestSetParent_Properties(t *testing.T) {
	s := New()
	a, b, c := s.NewMesh(), s.NewMesh(), s.NewMesh()

	require.NoError(t, s.SetParent(b, a))
	na, _ := s.Node(a)
	nb, _ := s.Node(b)
	assert.Equal(t, 1, na.ChildCount())
	p, err := nb.ParentHandle()
	require.NoError(t, err)
	assert.Equal(t, a, p)

	// Reparent is a move.
	require.NoError(t, s.SetParent(b, c))
	nc, _ := s.Node(c)
	assert.Equal(t, 0, na.ChildCount())
	assert.Equal(t, []handle.Handle{b}, nc.Children())

	// Detach.
	require.NoError(t, s.SetParent(b, handle.None))
	assert.Equal(t, 0, nc.ChildCount())
	_, err = nb.ParentHandle()
	assert.ErrorIs(t, err, graph.ErrNoParent)

	assert.ErrorIs(t, s.SetParent(s.Root(), a), ErrRootNode)
	require.NoError(t, s.SetParent(c, a))
	assert.ErrorIs(t, s.SetParent(a, c), graph.ErrCycle)
}

func TestDestroyChildren_TwoLevels(t *testing.T) {
	s := New()
	top := s.NewMesh()
	mid1, mid2 := s.NewMesh(), s.NewLight(object.Point)
	leaf1, leaf2 := s.NewMesh(), s.NewText("x", handle.None)
	require.NoError(t, s.SetParent(mid1, top))
	require.NoError(t, s.SetParent(mid2, top))
	require.NoError(t, s.SetParent(leaf1, mid1))
	require.NoError(t, s.SetParent(leaf2, mid2))

	require.NoError(t, s.DestroyChildren(top))

	assert.True(t, s.HasMesh(top))
	for _, h := range []handle.Handle{mid1, mid2, leaf1, leaf2} {
		assert.False(t, s.Contains(h), "%s still live", h)
	}
	n, _ := s.Node(top)
	assert.Zero(t, n.ChildCount())
}

func TestDeleteOverlay_CascadesToNestedMeshes(t *testing.T) {
	s := New()
	ov := s.NewOverlay(1)
	outer, inner := s.NewMesh(), s.NewMesh()
	require.NoError(t, s.SetParent(outer, ov))
	require.NoError(t, s.SetParent(inner, outer))

	require.NoError(t, s.DeleteOverlay(ov))

	assert.False(t, s.HasOverlay(ov))
	assert.False(t, s.HasMesh(outer))
	assert.False(t, s.HasMesh(inner))
}

func TestDelete_DetachesFromParent(t *testing.T) {
	s := New()
	h := s.NewMesh()
	require.NoError(t, s.Delete(h))

	root, _ := s.Node(s.Root())
	assert.False(t, root.HasChild(h))
	assert.ErrorIs(t, s.Delete(s.Root()), ErrRootNode)
	assert.ErrorIs(t, s.Delete(handle.None), resource.ErrUnknownHandle)
}

func TestDelete_ClearsActiveCamera(t *testing.T) {
	s := New()
	_, err := s.ActiveCamera()
	assert.ErrorIs(t, err, ErrNoCamera)

	c1 := s.NewCamera()
	c2 := s.NewCamera()
	cam, err := s.ActiveCamera()
	require.NoError(t, err)
	assert.Equal(t, c1, cam.Handle())

	require.NoError(t, s.SetActiveCamera(c2))
	require.NoError(t, s.DeleteCamera(c2))
	_, err = s.ActiveCamera()
	assert.ErrorIs(t, err, ErrNoCamera)
	assert.ErrorIs(t, s.SetActiveCamera(c2), resource.ErrUnknownHandle)
}

func TestPartitionerSync(t *testing.T) {
	p := newMockPartitioner()
	s := New(WithPartitioner(p))

	m := s.NewMesh()
	l := s.NewLight(object.Point)
	s.NewCamera()
	assert.Len(t, p.boxes, 2)

	child := s.NewMesh()
	require.NoError(t, s.SetParent(child, m))
	require.NoError(t, s.DeleteMesh(m))
	assert.Len(t, p.boxes, 1)
	assert.Contains(t, p.boxes, l)

	require.NoError(t, s.DeleteLight(l))
	assert.Empty(t, p.boxes)
	assert.Equal(t, 3, p.removed)
}

func TestWorldBounds(t *testing.T) {
	p := newMockPartitioner()
	s := New(WithPartitioner(p))

	h := s.NewMesh()
	m, _ := s.Mesh(h)
	m.NewCube(2)
	m.SetPosition(mgl32.Vec3{10, 0, 0})
	require.NoError(t, s.Reindex(h))

	b := p.boxes[h]
	assert.InDelta(t, 9, b.Min.X(), 1e-5)
	assert.InDelta(t, 11, b.Max.X(), 1e-5)
	assert.InDelta(t, -1, b.Min.Y(), 1e-5)

	l := s.NewLight(object.Point)
	light, _ := s.Light(l)
	light.Range = 3
	require.NoError(t, s.Reindex(l))
	assert.InDelta(t, 3, p.boxes[l].Max.Z(), 1e-5)

	assert.ErrorIs(t, s.Reindex(handle.Handle{ID: 999, Kind: handle.KindMesh}), resource.ErrUnknownHandle)
	_, err := s.WorldBounds(s.NewCamera())
	assert.ErrorIs(t, err, ErrNotTraversable)
}

func TestShareParentVertices(t *testing.T) {
	s := New()
	parent, child := s.NewMesh(), s.NewMesh()
	pm, _ := s.Mesh(parent)
	pm.NewCube(1)

	assert.ErrorIs(t, s.ShareParentVertices(child), ErrNotChildMesh)

	ov := s.NewOverlay(0)
	require.NoError(t, s.SetParent(child, ov))
	assert.ErrorIs(t, s.ShareParentVertices(child), ErrNotChildMesh)

	require.NoError(t, s.SetParent(child, parent))
	require.NoError(t, s.ShareParentVertices(child))
	v, err := s.MeshVertices(child)
	require.NoError(t, err)
	assert.Equal(t, 24, v.Len())

	// Moving a sharing mesh off its mesh parent makes the data unreachable.
	require.NoError(t, s.SetParent(child, handle.None))
	_, err = s.MeshVertices(child)
	assert.ErrorIs(t, err, ErrNotChildMesh)
}

func TestCloneMaterial(t *testing.T) {
	s := New()
	base := s.NewMaterial()
	mat, _ := s.Material(base)
	tex := s.NewTexture(nil)
	mat.DefaultTechnique().NewPass(handle.None)
	p0, _ := mat.DefaultTechnique().Pass(0)
	p0.SetTextureUnit(0, material.NewTextureUnit(tex))

	clone, err := s.CloneMaterial(base)
	require.NoError(t, err)
	assert.NotEqual(t, base, clone)

	cm, _ := s.Material(clone)
	assert.Equal(t, 2, cm.DefaultTechnique().PassCount())
	cp0, _ := cm.DefaultTechnique().Pass(0)
	cp0.SetTextureUnit(0, material.NewTextureUnit(handle.None))
	assert.Equal(t, tex, p0.TextureUnits[0].Current())

	_, err = s.CloneMaterial(handle.Handle{ID: 999, Kind: handle.KindMaterial})
	assert.ErrorIs(t, err, resource.ErrUnknownHandle)
}

func TestMeshHandleOf(t *testing.T) {
	s := New()
	h := s.NewMesh()
	m, _ := s.Mesh(h)

	got, err := s.MeshHandleOf(m)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = s.MeshHandleOf(object.NewMesh(h))
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestTraverse(t *testing.T) {
	s := New()
	m1 := s.NewMesh()
	cam := s.NewCamera()
	m2 := s.NewMesh()
	mat := s.NewMaterial()
	require.NoError(t, s.SetParent(m2, m1))
	require.NoError(t, s.SetParent(mat, m1))
	m3 := s.NewMesh()
	require.NoError(t, s.SetParent(m3, mat))

	var order []handle.Handle
	err := s.Traverse(s.Root(), object.Visitor{
		Mesh:   func(m *object.Mesh) error { order = append(order, m.Handle()); return nil },
		Camera: func(c *object.Camera) error { order = append(order, c.Handle()); return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, []handle.Handle{m1, m2, m3, cam}, order)

	stop := errors.New("stop")
	count := 0
	err = s.Traverse(s.Root(), object.Visitor{
		Mesh: func(*object.Mesh) error { count++; return stop },
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, count)

	_, err = s.Variant(mat)
	assert.ErrorIs(t, err, ErrNotTraversable)
}

func TestOverlaysOrder(t *testing.T) {
	s := New()
	top := s.NewOverlay(5)
	bottom := s.NewOverlay(-1)
	mid := s.NewOverlay(5)

	assert.Equal(t, []handle.Handle{bottom, top, mid}, s.Overlays())
}

func TestUpdate(t *testing.T) {
	ui := &mockUI{}
	s := New(WithUI(ui))
	h := s.NewMaterial()
	m, _ := s.Material(h)
	p, _ := m.DefaultTechnique().Pass(0)
	f1, f2 := s.NewTexture(nil), s.NewTexture(nil)
	p.SetTextureUnit(0, material.NewAnimatedTextureUnit([]handle.Handle{f1, f2}, 0.5))

	require.NoError(t, s.Update(0.6))
	assert.Equal(t, f2, p.TextureUnits[0].Current())
	assert.InDelta(t, 0.6, ui.dt, 1e-9)

	ui.err = errors.New("layout")
	assert.ErrorContains(t, s.Update(0.1), "ui update")
}

func TestStats(t *testing.T) {
	s := New()
	s.NewMesh()
	s.NewMesh()
	s.NewLight(object.Spot)
	require.NoError(t, s.AddPass(&plainRenderer{}, viewportFull()))

	st := s.Stats()
	assert.Equal(t, 2, st.Meshes)
	assert.Equal(t, 1, st.Lights)
	assert.Equal(t, 1, st.Passes)
	// root + default material + 3 resources
	assert.Equal(t, uint64(5), st.HandlesIssued)
}

func TestNode_UnknownKinds(t *testing.T) {
	s := New()
	_, err := s.Node(handle.None)
	assert.ErrorIs(t, err, resource.ErrUnknownHandle)

	_, err = s.Node(handle.Handle{ID: 77, Kind: handle.KindScene})
	assert.ErrorIs(t, err, resource.ErrUnknownHandle)

	bogus := handle.Handle{ID: 1, Kind: handle.Kind(200)}
	_, err = s.Node(bogus)
	assert.ErrorIs(t, err, resource.ErrUnknownHandle)
	assert.False(t, s.Contains(bogus))
	_, err = s.Variant(bogus)
	assert.ErrorIs(t, err, ErrNotTraversable)
	assert.ErrorIs(t, s.Delete(bogus), resource.ErrUnknownHandle)
	assert.ErrorIs(t, s.Reindex(bogus), resource.ErrUnknownHandle)
}
