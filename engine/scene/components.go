package scene

import (
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
)

/** @brief Position, rotation and scale of an entity. Parent must not point into a scene store. */
type Transform = math.Transform

func NewTransform(position math.Vec3) Transform {
	return math.NewTransform(position)
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

/**
 * @brief A camera attached to an entity. Its view is the inverse of the
 * entity's world transform; both matrices are rebuilt by the camera system
 * every tick.
 */
type Camera struct {
	Name string
	/** @brief Vertical field of view in radians. */
	FOV  float32
	Near float32
	Far  float32
	/** @brief Orthographic cameras use OrthoHeight world units of view height instead of FOV. */
	Orthographic bool
	OrthoHeight  float32
	/** @brief The camera that renders to the main target. */
	Primary bool
	/** @brief Fly cameras are driven by keyboard and mouse input. */
	Fly bool
	/** @brief Fly speed in units per second. */
	Speed float32
	/** @brief Euler rotation (pitch, yaw, roll) in radians, used by fly cameras. */
	EulerRotation math.Vec3

	View       math.Mat4
	Projection math.Mat4
}

func NewCamera() Camera {
	return Camera{
		Name:       DEFAULT_CAMERA_NAME,
		FOV:        math.DegToRad(45),
		Near:       0.1,
		Far:        1000,
		Speed:      10,
		Primary:    true,
		View:       math.NewMat4Identity(),
		Projection: math.NewMat4Identity(),
	}
}

func (c *Camera) Forward() math.Vec3 {
	return c.View.Forward()
}

func (c *Camera) Right() math.Vec3 {
	return c.View.Right()
}

/** @brief ViewProjection is the combined world to clip matrix. */
func (c *Camera) ViewProjection() math.Mat4 {
	return c.View.Mul(c.Projection)
}

/** @brief A directional light. The primary light casts shadows. */
type Light struct {
	Direction math.Vec3
	Colour    math.Vec4
	Primary   bool
	/** @brief Half size of the orthographic shadow volume. */
	ShadowExtent float32
}

func NewDirectionalLight(direction math.Vec3) Light {
	return Light{
		Direction:    direction.Normalized(),
		Colour:       math.NewVec4One(),
		Primary:      true,
		ShadowExtent: 20,
	}
}

/** @brief Draws a model asset with a material asset. */
type MeshRenderer struct {
	Model    core.ResourceID
	Material core.ResourceID
	/** @brief Excluded from the shadow pass when false. */
	CastShadows bool
}

/**
 * @brief A quad showing one frame of a sprite sheet asset. When Animation is
 * set the sprite system advances Elapsed and picks the frame from it.
 */
type Sprite struct {
	Sheet     core.ResourceID
	Frame     string
	Animation string
	Elapsed   float64
	/** @brief Lower layers are drawn first. */
	Layer int
	Tint  math.Vec4
	Size  math.Vec2
}

/** @brief Selects the skybox asset drawn behind the scene. */
type SkyboxComponent struct {
	Skybox core.ResourceID
}
