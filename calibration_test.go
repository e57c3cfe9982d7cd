package camkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoseInverseRoundTrip(t *testing.T) {
	// Rotate 90 degrees about Z and translate.
	p := Pose{
		Orientation: float3x3{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}},
		Position:    float3{1, 2, 3},
	}

	round := p.inverse().mul(p)
	assert.Equal(t, IdentityPose(), round)
}

func TestPoseComposeTranslations(t *testing.T) {
	a := IdentityPose()
	a.Position = float3{1, 0, 0}
	b := IdentityPose()
	b.Position = float3{0, 2, 0}

	assert.Equal(t, float3{1, 2, 0}, a.mul(b).Position)
}

func TestPoseComposeRotates(t *testing.T) {
	// A point at (0,2,0) in b's frame, with b rotated 90 degrees about Z
	// relative to a: composing maps the translation through the rotation.
	rot := Pose{
		Orientation: float3x3{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}},
	}
	b := IdentityPose()
	b.Position = float3{0, 2, 0}

	assert.Equal(t, float3{-2, 0, 0}, rot.mul(b).Position)
}

func TestTransposeIsInverseForRotations(t *testing.T) {
	m := float3x3{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}}
	identity := float3x3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	assert.Equal(t, identity, m.mul(m.transpose()))
	assert.Equal(t, identity, m.transpose().mul(m))
}
