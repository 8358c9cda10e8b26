// Package steering implements kinodynamic steering between two
// configurations under per-axis velocity and acceleration bounds: it
// computes a minimum-time bang-bang (or bang-cruise-bang) trajectory per
// controlled axis, resyncs the shorter axes to the slowest one via a
// fixed-time solve, and returns the result as an opaque path.Path the
// roadmap can store on an edge.
package steering

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/Hankfirst/hpp-core/configuration"
	"github.com/Hankfirst/hpp-core/logging"
	"github.com/Hankfirst/hpp-core/path"
)

// Bounds are the per-axis kinematic limits kinodynamic steering respects.
type Bounds struct {
	VMax float64
	AMax float64
}

// KinodynamicSteering computes minimum-time trajectories between
// configurations that encode, per controlled axis, a position coordinate
// followed by a velocity coordinate (the extra-DOF convention): axis i's
// position is at configuration index 2*i and its velocity at 2*i+1.
type KinodynamicSteering struct {
	device configuration.Device
	bounds []Bounds
	logger logging.Logger
}

// New constructs a KinodynamicSteering for the given axis bounds. It
// validates that device exposes at least 2*len(bounds) extra DOFs -- one
// position and one velocity coordinate per controlled axis -- and rejects
// construction with an error otherwise, since the position/velocity
// interleaving downstream math assumes that layout is a hard requirement,
// not a warning.
func New(device configuration.Device, bounds []Bounds) (*KinodynamicSteering, error) {
	needed := 2 * len(bounds)
	if device.ExtraDOFs() < needed {
		return nil, errors.Errorf(
			"steering: device exposes %d extra DOFs, need at least %d for %d controlled axes",
			device.ExtraDOFs(), needed, len(bounds))
	}
	for i, b := range bounds {
		if b.AMax <= 0 || b.VMax <= 0 {
			return nil, errors.Errorf("steering: axis %d has non-positive bound (a_max=%v, v_max=%v)", i, b.AMax, b.VMax)
		}
	}
	return &KinodynamicSteering{device: device, bounds: bounds, logger: logging.NewBlankLogger("steering")}, nil
}

// SetLogger installs a logger used for diagnostic output (fixed-time resync
// notices). Correctness never depends on this being called.
func (s *KinodynamicSteering) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.NewBlankLogger("steering")
	}
	s.logger = logger
}

// Compute returns the minimum-time trajectory from q1 to q2 across all
// controlled axes. Every axis first solves its own min_time schedule; the
// slowest axis sets the overall duration T, and every other axis is
// resynced to T via a fixed_time solve. A negative discriminant on any axis
// is a steering-infeasibility error; if multiple axes fail, their causes are
// combined.
func (s *KinodynamicSteering) Compute(q1, q2 configuration.Configuration) (*KinodynamicPath, error) {
	n := len(s.bounds)
	type raw struct{ p1, v1, p2, v2 float64 }
	raws := make([]raw, n)
	schedules := make([]AxisSchedule, n)
	tMax := 0.0

	var errs error
	for i, b := range s.bounds {
		r := raw{p1: q1[2*i], v1: q1[2*i+1], p2: q2[2*i], v2: q2[2*i+1]}
		raws[i] = r
		sched, err := minTime(r.p1, r.p2, r.v1, r.v2, b.AMax, b.VMax)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "axis %d", i))
			continue
		}
		schedules[i] = sched
		if d := sched.duration(); d > tMax {
			tMax = d
		}
	}
	if errs != nil {
		return nil, errs
	}

	for i, b := range s.bounds {
		if math.Abs(schedules[i].duration()-tMax) <= timeEpsilon {
			continue
		}
		r := raws[i]
		sched, err := fixedTime(tMax, r.p1, r.p2, r.v1, r.v2, b.AMax, b.VMax)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "axis %d fixed-time resync", i))
			continue
		}
		s.logger.Debugw("resynced axis to slowest axis via fixed-time solve", "axis", i, "duration", tMax)
		schedules[i] = sched
	}
	if errs != nil {
		return nil, errs
	}

	return &KinodynamicPath{axes: schedules, duration: tMax}, nil
}

// KinodynamicPath is the trajectory handle steering produces: one
// AxisSchedule per controlled axis, evaluable at any t in [0, Duration()].
// It implements path.Path so it can be stored directly on a roadmap edge.
type KinodynamicPath struct {
	axes     []AxisSchedule
	duration float64
}

// Duration returns the trajectory's total time.
func (p *KinodynamicPath) Duration() float64 {
	return p.duration
}

// Evaluate returns the position and velocity of every controlled axis at
// time t, clamped into [0, Duration()].
func (p *KinodynamicPath) Evaluate(t float64) (pos, vel []float64) {
	pos = make([]float64, len(p.axes))
	vel = make([]float64, len(p.axes))
	for i, ax := range p.axes {
		pos[i], vel[i] = ax.evaluate(t)
	}
	return pos, vel
}

// Reverse returns the path describing the same trajectory traversed
// backward in time, satisfying the path.Path contract that add_edges
// depends on for its return edge.
func (p *KinodynamicPath) Reverse() path.Path {
	rev := make([]AxisSchedule, len(p.axes))
	for i, ax := range p.axes {
		rev[i] = ax.reverse()
	}
	return &KinodynamicPath{axes: rev, duration: p.duration}
}

var _ path.Path = (*KinodynamicPath)(nil)
