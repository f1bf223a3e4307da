package graph

import "github.com/go-gl/mathgl/mgl32"

// Position returns the local position.
func (n *Node) Position() mgl32.Vec3 { return n.position }

// Rotation returns the local rotation.
func (n *Node) Rotation() mgl32.Quat { return n.rotation }

// SetPosition sets the local position.
func (n *Node) SetPosition(p mgl32.Vec3) { n.position = p }

// SetRotation sets the local rotation.
func (n *Node) SetRotation(q mgl32.Quat) { n.rotation = q.Normalize() }

// Move translates the node in its parent's space.
func (n *Node) Move(delta mgl32.Vec3) { n.position = n.position.Add(delta) }

// Rotate applies an additional rotation of angle radians about axis.
func (n *Node) Rotate(angle float32, axis mgl32.Vec3) {
	n.rotation = n.rotation.Mul(mgl32.QuatRotate(angle, axis.Normalize())).Normalize()
}

// LookAt orients the node so its -Z axis faces target (in parent space).
func (n *Node) LookAt(target, up mgl32.Vec3) {
	n.rotation = mgl32.QuatLookAtV(n.position, target, up)
}

// LocalTransform returns translation * rotation.
func (n *Node) LocalTransform() mgl32.Mat4 {
	t := mgl32.Translate3D(n.position.X(), n.position.Y(), n.position.Z())
	return t.Mul4(n.rotation.Mat4())
}

// WorldTransform composes the local transforms from the root down to n.
func (n *Node) WorldTransform(r Resolver) (mgl32.Mat4, error) {
	m := n.LocalTransform()
	for cur := n.parent; !cur.IsNone(); {
		p, err := r.Node(cur)
		if err != nil {
			return mgl32.Ident4(), err
		}
		m = p.LocalTransform().Mul4(m)
		cur = p.parent
	}
	return m, nil
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition(r Resolver) (mgl32.Vec3, error) {
	m, err := n.WorldTransform(r)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return m.Col(3).Vec3(), nil
}
