package math

type Vec2 struct {
	X, Y float32
}

type Vec3 struct {
	X, Y, Z float32
}

type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief Rotational orientation stored as (X, Y, Z, W). */
type Quaternion Vec4

/**
 * @brief Row-major 4x4 matrix. Points are row vectors, so A.Mul(B) applies A
 * first. Translation lives in Data[12..14].
 */
type Mat4 struct {
	Data [16]float32
}

/** @brief A mesh vertex as consumed by the world pass. */
type Vertex3D struct {
	Position Vec3
	Normal   Vec3
	Texcoord Vec2
	Colour   Vec4
}

/** @brief Axis-aligned bounds of a mesh. */
type Extents3D struct {
	Min Vec3
	Max Vec3
}
