package omath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func TestYawQuatFacesDirection(t *testing.T) {
	tests := []mgl64.Vec3{
		{0, 0, -1},
		{1, 0, 0},
		{-1, 0, 0},
		{0, 0, 1},
		mgl64.Vec3{1, 0, 1}.Normalize(),
	}
	for _, dir := range tests {
		facing := YawQuat(dir).Rotate(Forward)
		if !facing.ApproxEqualThreshold(dir, 1e-9) {
			t.Fatalf("YawQuat(%v) faces %v", dir, facing)
		}
	}
}

func TestSlerpTakesShortestArc(t *testing.T) {
	from := mgl64.QuatIdent()
	to := YawQuat(mgl64.Vec3{1, 0, 0}).Scale(-1)

	half := Slerp(from, to, 0.5)
	facing := half.Rotate(Forward)
	want := mgl64.Vec3{1, 0, -1}.Normalize()
	if !facing.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("expected halfway facing %v, got %v", want, facing)
	}
}

func TestExpSmoothingIsFrameRateIndependent(t *testing.T) {
	one := ExpSmoothing(10, 0.1)
	half := ExpSmoothing(10, 0.05)
	combined := 1 - (1-half)*(1-half)
	if math.Abs(one-combined) > 1e-12 {
		t.Fatalf("expected two half steps (%v) to equal one full step (%v)", combined, one)
	}
	if ExpSmoothing(10, 0) != 0 || ExpSmoothing(0, 1) != 0 {
		t.Fatalf("expected zero factor for zero rate or dt")
	}
}

func TestQuat32RoundTripRenormalises(t *testing.T) {
	q := YawQuat(mgl64.Vec3{0.3, 0, -0.7}.Normalize())
	back := Quat32To64(Quat64To32(q))
	if math.Abs(back.Len()-1) > 1e-12 {
		t.Fatalf("expected unit quaternion, got length %v", back.Len())
	}
	if !back.ApproxEqualThreshold(q, 1e-6) {
		t.Fatalf("expected %v, got %v", q, back)
	}
	if got := Quat32To64(mgl32.Quat{}); got != mgl64.QuatIdent() {
		t.Fatalf("expected identity for zero quaternion, got %v", got)
	}
}

func TestFiniteVec3(t *testing.T) {
	if !FiniteVec3(mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("expected finite vector")
	}
	if FiniteVec3(mgl64.Vec3{1, math.NaN(), 3}) || FiniteVec3(mgl64.Vec3{math.Inf(1), 0, 0}) {
		t.Fatalf("expected non-finite vectors to be rejected")
	}
}

func TestStandardDeviation(t *testing.T) {
	if sd := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9}); sd != 2 {
		t.Fatalf("expected standard deviation of 2, got %v", sd)
	}
	if Mean(nil) != 0 {
		t.Fatalf("expected zero mean for empty slice")
	}
}
