package wheel

import (
	"math"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/rs/zerolog"
)

// State is the reconciler's animation phase
type State int

const (
	// StateIdle means no spin has run yet in this session
	StateIdle State = iota
	// StateSpinning means a trajectory is in progress
	StateSpinning
	// StateSettled means the wheel is at rest, centered on the last
	// drawn prize
	StateSettled
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpinning:
		return "spinning"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Reconciler drives the wheel track toward a server-drawn prize.
//
// The track renders the prize sequence repeated several times side by
// side and scrolls in one direction, position decreasing, so a prize at
// ordinal i sits under the pointer whenever
//
//	(position + i*itemWidth) mod (n*itemWidth) == centerOffset mod lap
//
// Begin computes an absolute target satisfying that congruence at least
// one full lap ahead of the current position; Advance interpolates
// toward it once per host frame and snaps exactly onto it at the end.
// The reconciler is host-agnostic: it never schedules frames itself.
type Reconciler struct {
	cfg    config.WheelConfig
	logger zerolog.Logger

	state    State
	position float64

	start   float64
	target  float64
	elapsed time.Duration
	lap     float64

	lastOutcomeID string
}

// NewReconciler creates a reconciler at rest in Idle with position zero
func NewReconciler(cfg config.WheelConfig, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		cfg:    cfg,
		logger: logger.With().Str("component", "wheel_reconciler").Logger(),
	}
}

// State returns the current animation phase
func (r *Reconciler) State() State {
	return r.state
}

// Position returns the current continuous track offset
func (r *Reconciler) Position() float64 {
	return r.position
}

// Begin starts a trajectory toward the prize drawn for the given spin
// outcome. order is the rendered prize-id sequence and must match the
// order the draw ran against.
//
// A repeated delivery of an already-handled outcome id is a no-op: the
// venue display polls for results and will see the same outcome more
// than once. A genuinely new outcome while still Spinning is rejected.
func (r *Reconciler) Begin(outcomeID, prizeID string, order []string) error {
	if outcomeID != "" && outcomeID == r.lastOutcomeID {
		return nil
	}
	if r.state == StateSpinning {
		return errors.New(errors.ErrSpinInProgress, "a spin is already animating")
	}
	if len(order) == 0 {
		return errors.New(errors.ErrEmptyDistribution, "wheel has no prizes to land on")
	}

	idx := indexOf(order, prizeID)
	if idx < 0 {
		// The backend is authoritative on prize identity; a lookup miss
		// means draw-time and render-time orderings diverged. Land on
		// slot 0 rather than freeze mid-spin.
		r.logger.Warn().
			Str("prize_id", prizeID).
			Int("order_len", len(order)).
			Msg("winning prize not found in render order, falling back to index 0")
		idx = 0
	}

	r.lap = float64(len(order)) * r.cfg.ItemWidth
	r.start = r.position
	r.target = r.computeTarget(idx)
	r.elapsed = 0
	r.state = StateSpinning
	r.lastOutcomeID = outcomeID

	return nil
}

// computeTarget finds the nearest absolute position at least MinLaps
// full laps ahead (position decreasing) that centers the prize at
// ordinal idx under the pointer.
func (r *Reconciler) computeTarget(idx int) float64 {
	// base is congruent to the desired resting class modulo one lap.
	base := r.cfg.CenterOffset - float64(idx)*r.cfg.ItemWidth

	minTravel := float64(r.cfg.MinLaps) * r.lap
	// Smallest integer k with base - k*lap <= start - minTravel.
	k := math.Ceil((base - r.start + minTravel) / r.lap)

	target := base - k*r.lap

	// The track only exists for Copies repeated sequences; a target
	// beyond the rendered content would scroll into blank space. The
	// normalization pass on settle keeps positions small enough that
	// this should not trigger.
	limit := -float64(r.cfg.Copies-1) * r.lap
	for target < limit {
		target += r.lap
	}

	return target
}

// Advance moves the animation forward by dt and returns the new
// position plus whether the wheel is settled. Outside Spinning it is a
// no-op. Frame timing jitter stretches the real duration but never
// changes where the wheel stops: the final frame snaps exactly onto the
// precomputed target rather than keeping the last interpolated value.
func (r *Reconciler) Advance(dt time.Duration) (float64, bool) {
	if r.state != StateSpinning {
		return r.position, r.state == StateSettled
	}

	r.elapsed += dt
	progress := float64(r.elapsed) / float64(r.cfg.Duration)
	if progress >= 1 {
		r.position = r.target
		r.state = StateSettled
		r.normalize()
		return r.position, true
	}

	r.position = r.start + (r.target-r.start)*easeOutCubic(progress)
	return r.position, false
}

// normalize shifts the settled position back toward zero by whole
// lap-widths once it drifts past the configured threshold. Shifting by
// an integer number of laps leaves the centered prize unchanged.
func (r *Reconciler) normalize() {
	threshold := float64(r.cfg.NormalizeLaps) * r.lap
	for r.position <= -threshold {
		r.position += r.lap
	}
}

// easeOutCubic is the deceleration curve: fast off the line, easing to
// a stop.
func easeOutCubic(t float64) float64 {
	inv := 1 - t
	return 1 - inv*inv*inv
}

func indexOf(order []string, prizeID string) int {
	for i, id := range order {
		if id == prizeID {
			return i
		}
	}
	return -1
}
