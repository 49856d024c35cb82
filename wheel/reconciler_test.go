package wheel

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/errors"
	"github.com/rs/zerolog"
)

func testConfig() config.WheelConfig {
	return config.WheelConfig{
		ItemWidth:     284,
		Copies:        8,
		MinLaps:       1,
		NormalizeLaps: 3,
		Duration:      4 * time.Second,
		CenterOffset:  0,
	}
}

func newTestReconciler() *Reconciler {
	return NewReconciler(testConfig(), zerolog.Nop())
}

// positiveMod maps x into [0, m) regardless of sign
func positiveMod(x, m float64) float64 {
	v := math.Mod(x, m)
	if v < 0 {
		v += m
	}
	return v
}

// settle runs the animation to completion with a fixed frame step
func settle(t *testing.T, r *Reconciler) float64 {
	t.Helper()
	for i := 0; i < 1000; i++ {
		pos, done := r.Advance(16 * time.Millisecond)
		if done {
			return pos
		}
	}
	t.Fatal("animation never settled")
	return 0
}

func prizeOrder(n int) []string {
	order := make([]string, n)
	for i := range order {
		order[i] = fmt.Sprintf("prize-%d", i)
	}
	return order
}

func TestTargetCentersWinningPrize(t *testing.T) {
	cfg := testConfig()

	for _, n := range []int{1, 2, 3, 5, 25} {
		order := prizeOrder(n)
		lap := float64(n) * cfg.ItemWidth

		for winIdx := 0; winIdx < n; winIdx++ {
			for _, start := range []float64{0, -100.5, -lap, -2.5 * lap, 42, -10000} {
				r := newTestReconciler()
				r.position = start
				r.state = StateSettled

				outcomeID := fmt.Sprintf("spin-%d-%d-%v", n, winIdx, start)
				if err := r.Begin(outcomeID, order[winIdx], order); err != nil {
					t.Fatalf("n=%d win=%d start=%v: begin failed: %v", n, winIdx, start, err)
				}
				target := settle(t, r)

				got := positiveMod(target+float64(winIdx)*cfg.ItemWidth, lap)
				want := positiveMod(cfg.CenterOffset, lap)
				if math.Abs(got-want) > 1e-6 {
					t.Errorf("n=%d win=%d start=%v: prize off-center by %v units",
						n, winIdx, start, got-want)
				}
			}
		}
	}
}

func TestMinimumTravelOneFullLap(t *testing.T) {
	cfg := testConfig()
	order := prizeOrder(3)
	lap := 3 * cfg.ItemWidth

	for winIdx := 0; winIdx < 3; winIdx++ {
		for _, start := range []float64{0, -1, -lap + 0.5, -700} {
			r := newTestReconciler()
			r.position = start
			r.state = StateSettled

			if err := r.Begin(fmt.Sprintf("s-%d-%v", winIdx, start), order[winIdx], order); err != nil {
				t.Fatalf("begin failed: %v", err)
			}
			target := settle(t, r)

			// Recover the raw target before lap normalization shifted
			// the settled position back toward zero.
			rawTarget := r.target
			if travel := start - rawTarget; travel < lap-1e-6 {
				t.Errorf("win=%d start=%v: travel %v is under one lap (%v)", winIdx, start, travel, lap)
			}
			_ = target
		}
	}
}

func TestTargetStaysWithinRenderedCopies(t *testing.T) {
	cfg := testConfig()
	order := prizeOrder(3)
	lap := 3 * cfg.ItemWidth
	limit := -float64(cfg.Copies-1) * lap

	for winIdx := 0; winIdx < 3; winIdx++ {
		r := newTestReconciler()
		r.position = -2 * lap
		r.state = StateSettled

		if err := r.Begin(fmt.Sprintf("c-%d", winIdx), order[winIdx], order); err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		if r.target < limit {
			t.Errorf("win=%d: target %v scrolls past rendered content (limit %v)", winIdx, r.target, limit)
		}
	}
}

func TestExactSnapUnderFrameJitter(t *testing.T) {
	order := prizeOrder(5)
	r := newTestReconciler()

	if err := r.Begin("spin-1", order[2], order); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	want := r.target

	// Irregular frame steps, final one overshooting the duration.
	steps := []time.Duration{
		900 * time.Millisecond,
		13 * time.Millisecond,
		1700 * time.Millisecond,
		5 * time.Millisecond,
		2 * time.Second,
	}
	var pos float64
	var done bool
	for _, dt := range steps {
		pos, done = r.Advance(dt)
	}
	if !done {
		t.Fatal("animation should have completed")
	}
	if pos != want {
		t.Errorf("settled position %v is not the exact precomputed target %v", pos, want)
	}
	if r.State() != StateSettled {
		t.Errorf("state = %v, want settled", r.State())
	}
}

func TestPositionDecreasesMonotonically(t *testing.T) {
	order := prizeOrder(4)
	r := newTestReconciler()

	if err := r.Begin("spin-1", order[1], order); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	prev := r.Position()
	for {
		pos, done := r.Advance(16 * time.Millisecond)
		if pos > prev+1e-9 {
			t.Fatalf("position moved backwards: %v -> %v", prev, pos)
		}
		prev = pos
		if done {
			break
		}
	}
}

func TestConsecutiveSpinsAreContinuous(t *testing.T) {
	order := prizeOrder(3)
	r := newTestReconciler()

	if err := r.Begin("spin-1", order[0], order); err != nil {
		t.Fatalf("first begin failed: %v", err)
	}
	settled := settle(t, r)

	if err := r.Begin("spin-2", order[2], order); err != nil {
		t.Fatalf("second begin failed: %v", err)
	}
	if r.start != settled {
		t.Errorf("second spin starts at %v, want previous settled position %v", r.start, settled)
	}
	if r.State() != StateSpinning {
		t.Errorf("state = %v, want spinning", r.State())
	}
}

func TestRepeatedOutcomeDeliveryIsNoOp(t *testing.T) {
	order := prizeOrder(3)
	r := newTestReconciler()

	if err := r.Begin("spin-1", order[1], order); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	pos := settle(t, r)

	// The venue display polls and re-delivers the same outcome.
	if err := r.Begin("spin-1", order[1], order); err != nil {
		t.Fatalf("repeated delivery must be a no-op, got %v", err)
	}
	if r.State() != StateSettled {
		t.Errorf("repeated delivery changed state to %v", r.State())
	}
	if r.Position() != pos {
		t.Errorf("repeated delivery moved the wheel from %v to %v", pos, r.Position())
	}
}

func TestNewOutcomeWhileSpinningRejected(t *testing.T) {
	order := prizeOrder(3)
	r := newTestReconciler()

	if err := r.Begin("spin-1", order[0], order); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	r.Advance(100 * time.Millisecond)

	err := r.Begin("spin-2", order[1], order)
	if err == nil {
		t.Fatal("a new outcome mid-spin should be rejected")
	}
	if !errors.HasCode(err, errors.ErrSpinInProgress) {
		t.Errorf("expected ErrSpinInProgress, got %v", err)
	}
}

func TestUnknownPrizeFallsBackToFirstSlot(t *testing.T) {
	cfg := testConfig()
	order := prizeOrder(3)
	lap := 3 * cfg.ItemWidth

	r := newTestReconciler()
	if err := r.Begin("spin-1", "prize-missing", order); err != nil {
		t.Fatalf("lookup miss must not be fatal: %v", err)
	}
	target := settle(t, r)

	got := positiveMod(target, lap)
	want := positiveMod(cfg.CenterOffset, lap)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("fallback should center slot 0: off by %v", got-want)
	}
}

func TestEmptyOrderRejected(t *testing.T) {
	r := newTestReconciler()
	if err := r.Begin("spin-1", "prize-0", nil); err == nil {
		t.Fatal("empty render order should be rejected")
	}
}

func TestPositionStaysBoundedOverManySpins(t *testing.T) {
	cfg := testConfig()
	order := prizeOrder(3)
	lap := 3 * cfg.ItemWidth
	bound := float64(cfg.NormalizeLaps) * lap

	r := newTestReconciler()
	for i := 0; i < 50; i++ {
		if err := r.Begin(fmt.Sprintf("spin-%d", i), order[i%3], order); err != nil {
			t.Fatalf("spin %d begin failed: %v", i, err)
		}
		pos := settle(t, r)
		if pos <= -bound || pos > lap {
			t.Fatalf("spin %d: settled position %v escaped normalization bound %v", i, pos, bound)
		}
	}
}
