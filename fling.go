package smarttable

import (
	"math"
	"time"
)

// spline deceleration model, the same curve Android's OverScroller uses
const (
	inflexion      = 0.35
	startTension   = 0.5
	endTension     = 1.0
	splineP1       = startTension * inflexion
	splineP2       = 1 - endTension*(1-inflexion)
	splineSamples  = 100
	gravityEarth   = 9.80665 // m/s^2
	inchesPerMeter = 39.37
)

var decelerationRate = math.Log(0.78) / math.Log(0.9)

// splinePosition[i] is the distance fraction covered at time fraction i/100.
var splinePosition = buildSpline()

func buildSpline() [splineSamples + 1]float64 {
	var out [splineSamples + 1]float64
	xMin := 0.0
	for i := 0; i < splineSamples; i++ {
		alpha := float64(i) / splineSamples
		xMax := 1.0
		var x, coef float64
		for {
			x = xMin + (xMax-xMin)/2
			coef = 3 * x * (1 - x)
			tx := coef*((1-x)*splineP1+x*splineP2) + x*x*x
			if math.Abs(tx-alpha) < 1e-5 {
				break
			}
			if tx > alpha {
				xMax = x
			} else {
				xMin = x
			}
		}
		out[i] = coef*((1-x)*startTension+x) + x*x*x
	}
	out[splineSamples] = 1
	return out
}

// FlingState is the state of a fling animation.
type FlingState uint8

const (
	FlingIdle FlingState = iota
	FlingRunning
	FlingFinished
	FlingCancelled
)

func (s FlingState) String() string {
	switch s {
	case FlingRunning:
		return "running"
	case FlingFinished:
		return "finished"
	case FlingCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Fling decelerates a translation along the spline. It does not own a timer:
// the host calls Step once per frame and Cancel when a gesture interrupts.
type Fling struct {
	state    FlingState
	friction float64
	physical float64

	startX, startY   float64
	targetX, targetY float64 // end of the curve, may lie out of bounds
	finalX, finalY   float64 // target clamped to bounds
	curX, curY       float64
	bounds           Rect // allowed translation range
	began            time.Time
	duration         time.Duration
}

// NewFling returns an idle fling for a display density (1 = 160 dpi).
func NewFling(density, friction float64) *Fling {
	if density <= 0 {
		density = 1
	}
	if friction <= 0 {
		friction = defaultScrollFriction
	}
	return &Fling{
		friction: friction,
		physical: gravityEarth * inchesPerMeter * (160 * density) * 0.84,
	}
}

// State reports the current state.
func (f *Fling) State() FlingState { return f.state }

// Running reports whether Step still moves the translation.
func (f *Fling) Running() bool { return f.state == FlingRunning }

// Position is the last computed translation.
func (f *Fling) Position() (x, y float64) { return f.curX, f.curY }

// Final is the clamped resting translation.
func (f *Fling) Final() (x, y float64) { return f.finalX, f.finalY }

// Duration is the planned length of the animation.
func (f *Fling) Duration() time.Duration { return f.duration }

func (f *Fling) splineDeceleration(v float64) float64 {
	return math.Log(inflexion * math.Abs(v) / (f.friction * f.physical))
}

// Start begins a fling from translation (x, y) with velocity (vx, vy) in
// pixels per second. Positive velocity moves content right or down, which
// lowers the translation. bounds limits the translation on every frame.
func (f *Fling) Start(x, y, vx, vy float64, bounds Rect, now time.Time) {
	f.startX, f.startY = x, y
	f.curX, f.curY = x, y
	f.bounds = bounds
	f.began = now

	v := math.Hypot(vx, vy)
	if v == 0 {
		f.targetX, f.targetY = x, y
		f.finalX, f.finalY = f.clamp(x, y)
		f.duration = 0
		f.state = FlingFinished
		return
	}
	l := f.splineDeceleration(v)
	f.duration = time.Duration(1000*math.Exp(l/(decelerationRate-1))) * time.Millisecond
	distance := f.friction * f.physical * math.Exp(decelerationRate/(decelerationRate-1)*l)

	f.targetX, f.targetY = x-distance*vx/v, y-distance*vy/v
	f.finalX, f.finalY = f.clamp(f.targetX, f.targetY)
	f.state = FlingRunning
}

// Step advances to now and returns the clamped translation. running is false
// once the duration has elapsed or both axes are within a pixel of the end.
func (f *Fling) Step(now time.Time) (x, y float64, running bool) {
	if f.state != FlingRunning {
		return f.curX, f.curY, false
	}
	elapsed := now.Sub(f.began)
	if elapsed >= f.duration {
		f.curX, f.curY = f.finalX, f.finalY
		f.state = FlingFinished
		return f.curX, f.curY, false
	}

	t := float64(elapsed) / float64(f.duration)
	index := int(splineSamples * t)
	coef := 1.0
	if index < splineSamples {
		tInf := float64(index) / splineSamples
		tSup := float64(index+1) / splineSamples
		dInf, dSup := splinePosition[index], splinePosition[index+1]
		coef = dInf + (t-tInf)/(tSup-tInf)*(dSup-dInf)
	}

	f.curX, f.curY = f.clamp(
		f.startX+coef*(f.targetX-f.startX),
		f.startY+coef*(f.targetY-f.startY),
	)
	if math.Abs(f.curX-f.finalX) < 1 && math.Abs(f.curY-f.finalY) < 1 {
		f.curX, f.curY = f.finalX, f.finalY
		f.state = FlingFinished
		return f.curX, f.curY, false
	}
	return f.curX, f.curY, true
}

// Cancel stops the fling where it is.
func (f *Fling) Cancel() {
	if f.state == FlingRunning {
		f.state = FlingCancelled
	}
}

func (f *Fling) clamp(x, y float64) (float64, float64) {
	b := f.bounds
	return clampf(x, b.Left, b.Right), clampf(y, b.Top, b.Bottom)
}

func clampf(v, lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, v))
}
