// Package graph implements the parent/child ownership tree shared by every
// resource kind.
//
// Nodes never own each other: storage belongs to the resource managers and the
// tree only keeps handles. A Resolver turns those handles back into nodes.
package graph

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/younwookim/scenecore/internal/domain/handle"
)

var (
	// ErrNoParent is returned when asking a root or detached node for its parent.
	ErrNoParent = errors.New("parent lookup on non-child node")
	// ErrChildIndex is returned for an out of range child index.
	ErrChildIndex = errors.New("child index out of range")
	// ErrCycle is returned when a node would become its own ancestor.
	ErrCycle = errors.New("node cannot be parented under its own subtree")
)

// Resolver maps handles to the nodes stored in resource managers.
type Resolver interface {
	Node(h handle.Handle) (*Node, error)
}

// Node is the scene graph part of every resource.
type Node struct {
	Name string

	self     handle.Handle
	parent   handle.Handle
	children []handle.Handle

	position mgl32.Vec3
	rotation mgl32.Quat
}

// NewNode creates a detached node with an identity transform.
func NewNode(self handle.Handle) Node {
	return Node{
		self:     self,
		rotation: mgl32.QuatIdent(),
	}
}

// Handle returns the node's own handle.
func (n *Node) Handle() handle.Handle { return n.self }

// HasParent reports whether the node is attached to a parent.
func (n *Node) HasParent() bool { return !n.parent.IsNone() }

// ParentHandle returns the parent handle.
func (n *Node) ParentHandle() (handle.Handle, error) {
	if n.parent.IsNone() {
		return handle.None, fmt.Errorf("%s: %w", n.self, ErrNoParent)
	}
	return n.parent, nil
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child handle.
func (n *Node) Child(i int) (handle.Handle, error) {
	if i < 0 || i >= len(n.children) {
		return handle.None, fmt.Errorf("%s child %d of %d: %w", n.self, i, len(n.children), ErrChildIndex)
	}
	return n.children[i], nil
}

// Children returns a copy of the child handles in attachment order.
func (n *Node) Children() []handle.Handle {
	out := make([]handle.Handle, len(n.children))
	copy(out, n.children)
	return out
}

// HasChild reports whether h is a direct child.
func (n *Node) HasChild(h handle.Handle) bool {
	return n.indexOf(h) >= 0
}

func (n *Node) indexOf(h handle.Handle) int {
	for i, c := range n.children {
		if c == h {
			return i
		}
	}
	return -1
}

func (n *Node) removeChild(h handle.Handle) {
	if i := n.indexOf(h); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
}

// SetParent moves child under parent. Passing handle.None only detaches.
// The child is always detached from its old parent first.
func SetParent(r Resolver, child, parent handle.Handle) error {
	c, err := r.Node(child)
	if err != nil {
		return err
	}

	var p *Node
	if !parent.IsNone() {
		if p, err = r.Node(parent); err != nil {
			return err
		}
		if err := checkCycle(r, child, parent); err != nil {
			return err
		}
	}

	if c.HasParent() {
		old, err := r.Node(c.parent)
		if err != nil {
			return err
		}
		old.removeChild(child)
		c.parent = handle.None
	}

	if p != nil {
		p.children = append(p.children, child)
		c.parent = parent
	}
	return nil
}

func checkCycle(r Resolver, child, parent handle.Handle) error {
	for cur := parent; !cur.IsNone(); {
		if cur == child {
			return fmt.Errorf("%s under %s: %w", child, parent, ErrCycle)
		}
		n, err := r.Node(cur)
		if err != nil {
			return err
		}
		cur = n.parent
	}
	return nil
}

// Walk visits root and its descendants depth-first, parents before children.
// Returning false from fn skips that node's subtree.
func Walk(r Resolver, root handle.Handle, fn func(n *Node) bool) error {
	n, err := r.Node(root)
	if err != nil {
		return err
	}
	if !fn(n) {
		return nil
	}
	for _, c := range n.Children() {
		if err := Walk(r, c, fn); err != nil {
			return err
		}
	}
	return nil
}
