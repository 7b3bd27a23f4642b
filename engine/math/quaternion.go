package math

import stdmath "math"

func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1}
}

func NewQuatFromAxisAngle(axis Vec3, angle float32, normalize bool) Quaternion {
	s, c := stdmath.Sincos(float64(angle) * 0.5)
	q := Quaternion{float32(s) * axis.X, float32(s) * axis.Y, float32(s) * axis.Z, float32(c)}
	if normalize {
		q = q.Normalize()
	}
	return q
}

func (q Quaternion) Normal() float32 {
	return float32(stdmath.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
}

func (q Quaternion) Normalize() Quaternion {
	n := q.Normal()
	if n == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.X*other.W + q.Y*other.Z - q.Z*other.Y + q.W*other.X,
		Y: -q.X*other.Z + q.Y*other.W + q.Z*other.X + q.W*other.Y,
		Z: q.X*other.Y - q.Y*other.X + q.Z*other.W + q.W*other.Z,
		W: -q.X*other.X - q.Y*other.Y - q.Z*other.Z + q.W*other.W,
	}
}

// ToMat4 returns the rotation matrix of the normalized quaternion.
func (q Quaternion) ToMat4() Mat4 {
	n := q.Normalize()
	m := NewMat4Identity()

	m.Data[0] = 1 - 2*n.Y*n.Y - 2*n.Z*n.Z
	m.Data[1] = 2*n.X*n.Y - 2*n.Z*n.W
	m.Data[2] = 2*n.X*n.Z + 2*n.Y*n.W

	m.Data[4] = 2*n.X*n.Y + 2*n.Z*n.W
	m.Data[5] = 1 - 2*n.X*n.X - 2*n.Z*n.Z
	m.Data[6] = 2*n.Y*n.Z - 2*n.X*n.W

	m.Data[8] = 2*n.X*n.Z - 2*n.Y*n.W
	m.Data[9] = 2*n.Y*n.Z + 2*n.X*n.W
	m.Data[10] = 1 - 2*n.X*n.X - 2*n.Y*n.Y
	return m
}
