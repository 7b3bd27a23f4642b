package systems

import (
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/scene"
)

/** @brief Radians of rotation per pixel of mouse movement for fly cameras. */
const CameraMouseSensitivity float32 = 0.005

/**
 * @brief Rebuilds the view and projection of every camera in the scene from
 * its entity transform and the aspect of the render target. Fly cameras are
 * moved with WASD/QE and rotated while the right mouse button is held.
 * Register it before any pass that reads camera matrices.
 */
type CameraSystem struct {
	Base
	target metadata.RenderTarget
	input  *core.Input
}

func NewCameraSystem(target metadata.RenderTarget, input *core.Input) *CameraSystem {
	return &CameraSystem{
		Base:   NewBase("camera"),
		target: target,
		input:  input,
	}
}

func (cs *CameraSystem) OnTick(deltaTime float64) error {
	sc := cs.Scene()
	if sc == nil {
		return nil
	}
	aspect := float32(1)
	if w, h := cs.target.Size(); h > 0 {
		aspect = float32(w) / float32(h)
	}

	scene.View2(sc, func(_ scene.Entity, tr *scene.Transform, cam *scene.Camera) {
		if cam.Fly && cs.input != nil {
			cs.fly(tr, cam, float32(deltaTime))
		}
		cam.View = tr.GetWorld().Inverse()
		if cam.Orthographic {
			halfH := cam.OrthoHeight * 0.5
			halfW := halfH * aspect
			cam.Projection = math.NewMat4Orthographic(-halfW, halfW, -halfH, halfH, cam.Near, cam.Far)
		} else {
			cam.Projection = math.NewMat4Perspective(cam.FOV, aspect, cam.Near, cam.Far)
		}
	})
	return nil
}

func (cs *CameraSystem) fly(tr *scene.Transform, cam *scene.Camera, dt float32) {
	if cs.input.IsButtonDown(core.BUTTON_RIGHT) && cs.input.WasButtonDown(core.BUTTON_RIGHT) {
		x, y := cs.input.MousePosition()
		px, py := cs.input.PreviousMousePosition()
		cam.EulerRotation.Y -= float32(x-px) * CameraMouseSensitivity
		cam.EulerRotation.X -= float32(y-py) * CameraMouseSensitivity
		limit := math.DegToRad(89)
		cam.EulerRotation.X = math.Clamp(cam.EulerRotation.X, -limit, limit)
	}
	yaw := math.NewQuatFromAxisAngle(math.NewVec3Up(), cam.EulerRotation.Y, false)
	pitch := math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), cam.EulerRotation.X, false)
	tr.SetRotation(pitch.Mul(yaw))

	view := tr.GetWorld().Inverse()
	forward, right := view.Forward(), view.Right()

	move := math.NewVec3Zero()
	if cs.input.IsKeyDown(core.KEY_W) {
		move = move.Add(forward)
	}
	if cs.input.IsKeyDown(core.KEY_S) {
		move = move.Sub(forward)
	}
	if cs.input.IsKeyDown(core.KEY_D) {
		move = move.Add(right)
	}
	if cs.input.IsKeyDown(core.KEY_A) {
		move = move.Sub(right)
	}
	if cs.input.IsKeyDown(core.KEY_E) {
		move = move.Add(math.NewVec3Up())
	}
	if cs.input.IsKeyDown(core.KEY_Q) {
		move = move.Sub(math.NewVec3Up())
	}
	if move.Length() > 0 {
		tr.Translate(move.Normalized().MulScalar(cam.Speed * dt))
	}
}
