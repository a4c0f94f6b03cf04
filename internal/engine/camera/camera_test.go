package camera

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPosition(t *testing.T) {
	c := NewOrbitCamera()
	c.Distance = 2
	c.RotationX = 0
	c.RotationY = 0

	pos := c.Position()
	want := mgl32.Vec3{0, 0, 2}
	if !pos.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Position() = %v, want %v", pos, want)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()

	c.HandleDrag(0, 10000)
	if c.RotationX != c.MaxPitch {
		t.Errorf("RotationX = %v, want clamped to %v", c.RotationX, c.MaxPitch)
	}

	c.HandleDrag(0, -20000)
	if c.RotationX != c.MinPitch {
		t.Errorf("RotationX = %v, want clamped to %v", c.RotationX, c.MinPitch)
	}
}

func TestHandleZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()

	for i := 0; i < 1000; i++ {
		c.HandleZoom(10)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v, want clamped to %v", c.Distance, c.MinDistance)
	}

	for i := 0; i < 1000; i++ {
		c.HandleZoom(-10)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("Distance = %v, want clamped to %v", c.Distance, c.MaxDistance)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

	if !c.Center.ApproxEqualThreshold(mgl32.Vec3{0, 0, 0}, 1e-6) {
		t.Errorf("Center = %v, want origin", c.Center)
	}

	wantDist := float32(gomath.Sqrt(12)) * 1.5
	if gomath.Abs(float64(c.Distance-wantDist)) > 1e-4 {
		t.Errorf("Distance = %v, want %v", c.Distance, wantDist)
	}
}

func TestFitToBoundsDegenerate(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{5, 5, 5})

	if c.Distance != 1.5 {
		t.Errorf("Distance = %v, want fallback 1.5", c.Distance)
	}
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = mgl32.Vec3{1, 2, 3}
	c.Distance = 4

	view := c.ViewMatrix()
	eye := view.Mul4x1(c.Center.Vec4(1))

	// Center transforms onto the -Z axis at the orbit distance.
	if gomath.Abs(float64(eye.X())) > 1e-4 || gomath.Abs(float64(eye.Y())) > 1e-4 {
		t.Errorf("center not on view axis: %v", eye)
	}
	if gomath.Abs(float64(eye.Z()+4)) > 1e-4 {
		t.Errorf("center depth = %v, want -4", eye.Z())
	}
}
