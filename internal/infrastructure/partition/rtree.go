// Package partition indexes scene objects by world-space bounds.
package partition

import (
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/scenecore/internal/domain/handle"
)

const (
	minChildren = 4
	maxChildren = 16

	// pad gives points and flat meshes a non-degenerate box.
	pad = 1e-3
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl32.Vec3
}

// BoxAround returns a cube of half-extent r centered on p.
func BoxAround(p mgl32.Vec3, r float32) Box {
	d := mgl32.Vec3{r, r, r}
	return Box{Min: p.Sub(d), Max: p.Add(d)}
}

func (b Box) rect() rtreego.Rect {
	lo := make(rtreego.Point, 3)
	hi := make(rtreego.Point, 3)
	for i := 0; i < 3; i++ {
		lo[i] = float64(min(b.Min[i], b.Max[i])) - pad
		hi[i] = float64(max(b.Min[i], b.Max[i])) + pad
	}
	r, _ := rtreego.NewRectFromPoints(lo, hi)
	return r
}

type item struct {
	h    handle.Handle
	rect rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect { return it.rect }

// RTree is an R-tree backed partitioner.
type RTree struct {
	tree  *rtreego.Rtree
	items map[handle.Handle]*item
}

// NewRTree creates an empty partitioner.
func NewRTree() *RTree {
	return &RTree{
		tree:  rtreego.NewTree(3, minChildren, maxChildren),
		items: make(map[handle.Handle]*item),
	}
}

// Add indexes h under b, replacing any previous entry for h.
func (p *RTree) Add(h handle.Handle, b Box) {
	p.Remove(h)
	it := &item{h: h, rect: b.rect()}
	p.items[h] = it
	p.tree.Insert(it)
}

// Remove drops h and reports whether it was indexed.
func (p *RTree) Remove(h handle.Handle) bool {
	it, ok := p.items[h]
	if !ok {
		return false
	}
	delete(p.items, h)
	return p.tree.Delete(it)
}

// Contains reports whether h is indexed.
func (p *RTree) Contains(h handle.Handle) bool {
	_, ok := p.items[h]
	return ok
}

// Query returns the handles whose boxes intersect b, sorted by ID.
func (p *RTree) Query(b Box) []handle.Handle {
	found := p.tree.SearchIntersect(b.rect())
	out := make([]handle.Handle, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*item).h)
	}
	slices.SortFunc(out, func(a, b handle.Handle) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of indexed handles.
func (p *RTree) Len() int { return len(p.items) }
