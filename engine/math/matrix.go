package math

import stdmath "math"

func NewMat4Identity() Mat4 {
	m := Mat4{}
	m.Data[0] = 1
	m.Data[5] = 1
	m.Data[10] = 1
	m.Data[15] = 1
	return m
}

// Mul returns mt * other. With row vectors this applies mt first.
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out.Data[row*4+col] = sum
		}
	}
	return out
}

func NewMat4Translation(position Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[12] = position.X
	m.Data[13] = position.Y
	m.Data[14] = position.Z
	return m
}

func NewMat4Scale(scale Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = scale.X
	m.Data[5] = scale.Y
	m.Data[10] = scale.Z
	return m
}

func NewMat4Orthographic(left, right, bottom, top, nearClip, farClip float32) Mat4 {
	m := NewMat4Identity()
	lr := 1 / (left - right)
	bt := 1 / (bottom - top)
	nf := 1 / (nearClip - farClip)

	m.Data[0] = -2 * lr
	m.Data[5] = -2 * bt
	m.Data[10] = 2 * nf
	m.Data[12] = (left + right) * lr
	m.Data[13] = (top + bottom) * bt
	m.Data[14] = (farClip + nearClip) * nf
	return m
}

func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	halfTanFOV := float32(stdmath.Tan(float64(fovRadians) * 0.5))
	m := Mat4{}
	m.Data[0] = 1 / (aspectRatio * halfTanFOV)
	m.Data[5] = 1 / halfTanFOV
	m.Data[10] = -((farClip + nearClip) / (farClip - nearClip))
	m.Data[11] = -1
	m.Data[14] = -((2 * farClip * nearClip) / (farClip - nearClip))
	return m
}

// NewMat4LookAt builds a view matrix looking at target from position.
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	z := target.Sub(position).Normalized()
	x := up.Cross(z).Normalized()
	y := z.Cross(x)

	m := Mat4{}
	m.Data[0] = x.X
	m.Data[1] = y.X
	m.Data[2] = -z.X
	m.Data[4] = x.Y
	m.Data[5] = y.Y
	m.Data[6] = -z.Y
	m.Data[8] = x.Z
	m.Data[9] = y.Z
	m.Data[10] = -z.Z
	m.Data[12] = -x.Dot(position)
	m.Data[13] = -y.Dot(position)
	m.Data[14] = z.Dot(position)
	m.Data[15] = 1
	return m
}

func NewMat4EulerX(angleRadians float32) Mat4 {
	m := NewMat4Identity()
	c, s := cosSin(angleRadians)
	m.Data[5] = c
	m.Data[6] = s
	m.Data[9] = -s
	m.Data[10] = c
	return m
}

func NewMat4EulerY(angleRadians float32) Mat4 {
	m := NewMat4Identity()
	c, s := cosSin(angleRadians)
	m.Data[0] = c
	m.Data[2] = -s
	m.Data[8] = s
	m.Data[10] = c
	return m
}

func NewMat4EulerZ(angleRadians float32) Mat4 {
	m := NewMat4Identity()
	c, s := cosSin(angleRadians)
	m.Data[0] = c
	m.Data[1] = s
	m.Data[4] = -s
	m.Data[5] = c
	return m
}

func NewMat4EulerXYZ(x, y, z float32) Mat4 {
	return NewMat4EulerX(x).Mul(NewMat4EulerY(y)).Mul(NewMat4EulerZ(z))
}

// Inverse returns the inverse of mt using Gauss-Jordan elimination with
// partial pivoting. A singular matrix yields the identity.
func (mt Mat4) Inverse() Mat4 {
	var a [4][8]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			a[r][c] = float64(mt.Data[r*4+c])
		}
		a[r][4+r] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if stdmath.Abs(a[r][col]) > stdmath.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if stdmath.Abs(a[pivot][col]) < 1e-12 {
			return NewMat4Identity()
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1 / a[col][col]
		for c := 0; c < 8; c++ {
			a[col][c] *= inv
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			for c := 0; c < 8; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	out := Mat4{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[r*4+c] = float32(a[r][4+c])
		}
	}
	return out
}

func (mt Mat4) Position() Vec3 {
	return Vec3{mt.Data[12], mt.Data[13], mt.Data[14]}
}

func (mt Mat4) Forward() Vec3 {
	return Vec3{-mt.Data[2], -mt.Data[6], -mt.Data[10]}.Normalized()
}

func (mt Mat4) Backward() Vec3 {
	return mt.Forward().MulScalar(-1)
}

func (mt Mat4) Left() Vec3 {
	return Vec3{-mt.Data[0], -mt.Data[4], -mt.Data[8]}.Normalized()
}

func (mt Mat4) Right() Vec3 {
	return mt.Left().MulScalar(-1)
}

func cosSin(angle float32) (float32, float32) {
	s, c := stdmath.Sincos(float64(angle))
	return float32(c), float32(s)
}
