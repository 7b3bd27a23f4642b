package math

/**
 * @brief Position, rotation and scale of an object with an optional parent.
 * The local matrix is cached and rebuilt on the first read after a change, so
 * mutate it only through its methods.
 */
type Transform struct {
	position Vec3
	rotation Quaternion
	scale    Vec3

	local Mat4
	dirty bool

	Parent *Transform
}

func NewTransform(position Vec3) Transform {
	return NewTransformTRS(position, NewQuatIdentity(), NewVec3One())
}

func NewTransformTRS(position Vec3, rotation Quaternion, scale Vec3) Transform {
	return Transform{position: position, rotation: rotation, scale: scale, dirty: true}
}

func (t *Transform) Position() Vec3       { return t.position }
func (t *Transform) Rotation() Quaternion { return t.rotation }
func (t *Transform) Scale() Vec3          { return t.scale }

func (t *Transform) SetPosition(position Vec3) {
	t.position = position
	t.dirty = true
}

func (t *Transform) Translate(delta Vec3) {
	t.SetPosition(t.position.Add(delta))
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.rotation = rotation
	t.dirty = true
}

func (t *Transform) Rotate(delta Quaternion) {
	t.SetRotation(t.rotation.Mul(delta))
}

func (t *Transform) SetScale(scale Vec3) {
	t.scale = scale
	t.dirty = true
}

// GetLocal returns scale, then rotation, then translation.
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.dirty {
		t.local = NewMat4Scale(t.scale).Mul(t.rotation.ToMat4()).Mul(NewMat4Translation(t.position))
		t.dirty = false
	}
	return t.local
}

// GetWorld composes the local matrix with every ancestor's.
func (t *Transform) GetWorld() Mat4 {
	world := t.GetLocal()
	for p := t.Parent; p != nil; p = p.Parent {
		world = world.Mul(p.GetLocal())
	}
	return world
}
