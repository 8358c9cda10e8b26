package steering

import (
	"math"

	"github.com/pkg/errors"
)

// velocityEpsilon absorbs floating point error when comparing a candidate
// peak velocity against the axis's velocity limit.
const velocityEpsilon = 1e-9

// timeEpsilon is the tolerance used when deciding whether an axis's own
// min-time schedule already matches the multi-axis maximum, versus needing
// a fixed_time resync.
const timeEpsilon = 1e-9

// errInfeasible reports that a min_time or fixed_time solve produced a
// negative discriminant or a negative segment duration: no bang-bang (or
// bang-cruise-bang) trajectory connects the two boundary states under the
// given bounds.
var errInfeasible = errors.New("steering: infeasible trajectory (negative discriminant or segment duration)")

// minTime computes the time-optimal bang-bang (or bang-cruise-bang) schedule
// for a single axis moving from (p1, v1) to (p2, v2) under acceleration
// bound aMax and velocity bound vMax.
func minTime(p1, p2, v1, v2, aMax, vMax float64) (sched AxisSchedule, err error) {
	dpAcc := 0.5 * (v1 + v2) * math.Abs(v2-v1) / aMax
	sigma := sign(p2 - p1 - dpAcc)
	if sigma == 0 {
		sigma = 1
	}
	a1 := sigma * aMax
	a2 := -a1
	vLim := sigma * vMax

	// Two-segment candidate: a1*t1^2 + 2*v1*t1 + ((v2^2-v1^2)/(2*a2) - (p2-p1)) = 0.
	A := a1
	B := 2 * v1
	C := (v2*v2-v1*v1)/(2*a2) - (p2 - p1)
	disc := B*B - 4*A*C
	if disc >= 0 {
		sq := math.Sqrt(disc)
		t1a := (-B + sq) / (2 * A)
		t1b := (-B - sq) / (2 * A)
		t1 := math.Max(t1a, t1b)
		minT1 := math.Max(0, (v1-v2)/a2)
		if t1 >= minT1 {
			peak := v1 + a1*t1
			if withinBound(peak, vLim, velocityEpsilon) {
				t2 := (v2-v1)/a2 + t1
				return AxisSchedule{
					Sign: sigma, A1: a1, A2: a2,
					T1: t1, TV: 0, T2: t2,
					P1: p1, V1: v1, P2: p2, V2: v2,
				}, nil
			}
		}
	}

	// Three-segment: accelerate to vLim, cruise, decelerate.
	t1 := (vLim - v1) / a1
	tv := (v1*v1+v2*v2-2*vLim*vLim)/(2*vLim*a1) + (p2-p1)/vLim
	t2 := (v2 - vLim) / a2
	if t1 < 0 || tv < 0 || t2 < 0 {
		return AxisSchedule{}, errInfeasible
	}
	return AxisSchedule{
		Sign: sigma, A1: a1, A2: a2,
		T1: t1, TV: tv, T2: t2,
		P1: p1, V1: v1, P2: p2, V2: v2,
	}, nil
}

// fixedTime solves for the acceleration magnitude that connects (p1, v1) to
// (p2, v2) in exactly duration T, for a single axis under bounds aMax, vMax.
// It is used to slow the axes whose own min_time schedule is shorter than
// the multi-axis maximum.
func fixedTime(t, p1, p2, v1, v2, aMax, vMax float64) (sched AxisSchedule, err error) {
	delta := 4*t*t*(v1+v2)*(v1+v2) + 4*t*t*(v2-v1)*(v2-v1) - 16*t*(v1+v2)*(p2-p1) + 16*(p2-p1)*(p2-p1)
	if delta < 0 {
		return AxisSchedule{}, errInfeasible
	}
	sq := math.Sqrt(delta)
	b := 2*t*(v1+v2) - 4*(p2-p1)
	denom := 2 * t * t

	root1 := (-b + sq) / denom
	root2 := (-b - sq) / denom
	a1 := root1
	if math.Abs(root2) > math.Abs(root1) {
		a1 = root2
	}
	a2 := -a1
	t1 := 0.5 * ((v2-v1)/a1 + t)

	vLim := math.Copysign(vMax, a1)
	peak := v1 + a1*t1
	if withinBound(peak, vLim, velocityEpsilon) {
		return AxisSchedule{
			Sign: sign(a1), A1: a1, A2: a2,
			T1: t1, TV: 0, T2: t - t1,
			P1: p1, V1: v1, P2: p2, V2: v2,
		}, nil
	}

	a1 = ((vLim-v1)*(vLim-v1) + (vLim-v2)*(vLim-v2)) / (2 * (vLim*t - (p2 - p1)))
	a2 = -a1
	t1 = (vLim - v1) / a1
	tv := (v1*v1+v2*v2-2*vLim*vLim)/(2*vLim*a1) + (p2-p1)/vLim
	t2 := (v2 - vLim) / a2
	if t1 < 0 || tv < 0 || t2 < 0 {
		return AxisSchedule{}, errInfeasible
	}
	return AxisSchedule{
		Sign: sign(a1), A1: a1, A2: a2,
		T1: t1, TV: tv, T2: t2,
		P1: p1, V1: v1, P2: p2, V2: v2,
	}, nil
}
