package math

import stdmath "math"

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{1, 1, 1}
}

func NewVec3Up() Vec3 {
	return Vec3{0, 1, 0}
}

func NewVec3Down() Vec3 {
	return Vec3{0, -1, 0}
}

func NewVec3Forward() Vec3 {
	return Vec3{0, 0, -1}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func NewVec4One() Vec4 {
	return Vec4{1, 1, 1, 1}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) Length() float32 {
	return float32(stdmath.Sqrt(float64(v.Dot(v))))
}

// Normalized returns a unit-length copy. The zero vector is returned as is.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return abs(v.X-other.X) <= tolerance &&
		abs(v.Y-other.Y) <= tolerance &&
		abs(v.Z-other.Z) <= tolerance
}

// Transform multiplies the point by m (w = 1).
func (v Vec3) Transform(m Mat4) Vec3 {
	d := m.Data
	return Vec3{
		v.X*d[0] + v.Y*d[4] + v.Z*d[8] + d[12],
		v.X*d[1] + v.Y*d[5] + v.Z*d[9] + d[13],
		v.X*d[2] + v.Y*d[6] + v.Z*d[10] + d[14],
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
