package math

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertMat4InDelta(t *testing.T, expected, actual Mat4) {
	t.Helper()
	for i := range expected.Data {
		assert.InDelta(t, expected.Data[i], actual.Data[i], 1e-4, "element %d", i)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := NewMat4Scale(NewVec3(2, 3, 4)).
		Mul(NewQuatFromAxisAngle(NewVec3Up(), 0.7, true).ToMat4()).
		Mul(NewMat4Translation(NewVec3(1, -2, 5)))

	assertMat4InDelta(t, NewMat4Identity(), m.Mul(m.Inverse()))
}

func TestMat4InverseSingularFallsBackToIdentity(t *testing.T) {
	assertMat4InDelta(t, NewMat4Identity(), Mat4{}.Inverse())
}

func TestTransformWorldAppliesParent(t *testing.T) {
	parent := NewTransform(NewVec3(10, 0, 0))
	child := NewTransform(NewVec3(0, 5, 0))
	child.Parent = &parent

	p := NewVec3Zero().Transform(child.GetWorld())
	assert.True(t, p.Compare(NewVec3(10, 5, 0), 1e-5), "got %+v", p)

	parent.Translate(NewVec3(1, 0, 0))
	p = NewVec3Zero().Transform(child.GetWorld())
	assert.True(t, p.Compare(NewVec3(11, 5, 0), 1e-5), "got %+v", p)
}

func TestQuaternionRotatesAroundUp(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), float32(stdmath.Pi/2), true)
	p := NewVec3(1, 0, 0).Transform(q.ToMat4())
	assert.InDelta(t, 0, p.X, 1e-5)
	assert.InDelta(t, 1, stdmath.Abs(float64(p.Z)), 1e-5)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, float32(-1), Clamp(float32(-3), -1, 1))
	assert.InDelta(t, stdmath.Pi, float64(DegToRad(180)), 1e-6)
}

func TestCalculateExtents(t *testing.T) {
	ext := CalculateExtents([]Vertex3D{
		{Position: NewVec3(-1, 2, 0)},
		{Position: NewVec3(3, -4, 1)},
	})
	assert.Equal(t, NewVec3(-1, -4, 0), ext.Min)
	assert.Equal(t, NewVec3(3, 2, 1), ext.Max)
}
