//////////////////////////////////////////////////////////////////////////////
//
// Calibration data: per-stream intrinsics and pairwise extrinsics
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package camkit

// Intrinsics are the projection parameters of one imager configuration.
// Modes refer to intrinsics records by index into the session's cached
// calibration.
type Intrinsics struct {
	Width          int
	Height         int
	FocalLength    [2]float32
	PrincipalPoint [2]float32
	Distortion     [5]float32
}

// Extrinsics relate one stream's 3D coordinate frame to another's.
// Rotation is a column-major 3x3 matrix.
type Extrinsics struct {
	Rotation    [9]float32
	Translation [3]float32
}

type float3 [3]float32

// float3x3 is a column-major 3x3 matrix.
type float3x3 [3]float3

func (m float3x3) transpose() float3x3 {
	return float3x3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

func (m float3x3) mulVec(v float3) float3 {
	var r float3
	for i := 0; i < 3; i++ {
		r[i] = m[0][i]*v[0] + m[1][i]*v[1] + m[2][i]*v[2]
	}
	return r
}

func (m float3x3) mul(n float3x3) float3x3 {
	return float3x3{m.mulVec(n[0]), m.mulVec(n[1]), m.mulVec(n[2])}
}

// Pose places a stream's coordinate frame in the device frame.
type Pose struct {
	Orientation float3x3
	Position    float3
}

// IdentityPose is the device frame itself.
func IdentityPose() Pose {
	return Pose{
		Orientation: float3x3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
}

// inverse exploits the orientation being a rotation, so its transpose is
// its inverse.
func (p Pose) inverse() Pose {
	inv := p.Orientation.transpose()
	pos := inv.mulVec(p.Position)
	return Pose{inv, float3{-pos[0], -pos[1], -pos[2]}}
}

// mul composes two poses: (p * q) maps q's frame through p's.
func (p Pose) mul(q Pose) Pose {
	return Pose{
		Orientation: p.Orientation.mul(q.Orientation),
		Position:    add(p.Orientation.mulVec(q.Position), p.Position),
	}
}

func add(a, b float3) float3 {
	return float3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// CalibrationData is fetched from device firmware at most once per session
// and cached; it stays empty until the first subdevice has been opened.
type CalibrationData struct {
	Intrinsics  []Intrinsics
	StreamPoses [streamCount]Pose
}

// CalibrationSource retrieves calibration from the device. Implementations
// may be called more than once but the session caches the first result.
type CalibrationSource interface {
	RetrieveCalibration() (CalibrationData, error)
}
