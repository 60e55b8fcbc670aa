package frustum

import (
	gomath "math"

	"github.com/Faultbox/frustumvox/pkg/math"
)

// Pose is a camera looking from Eye towards Center.
type Pose struct {
	Eye    math.Vec3
	Center math.Vec3
	Up     math.Vec3
}

// CameraPose returns the orbit pose for height eyeZ and orbit angle theta
// (radians). The camera sits at (-sin θ, cos θ, eyeZ), looks at the origin
// and keeps +z as up.
func CameraPose(eyeZ, theta float64) Pose {
	return Pose{
		Eye:    math.Vec3{X: -gomath.Sin(theta), Y: gomath.Cos(theta), Z: eyeZ},
		Center: math.Vec3{},
		Up:     math.Vec3{X: 0, Y: 0, Z: 1},
	}
}

// Distance returns the distance from the eye to the look-at target.
func (p Pose) Distance() float64 {
	return p.Eye.Distance(p.Center)
}

// ViewTransform returns the world-to-camera transform for the pose.
func (p Pose) ViewTransform() (math.Mat4, error) {
	return math.LookAt(p.Eye, p.Center, p.Up)
}
