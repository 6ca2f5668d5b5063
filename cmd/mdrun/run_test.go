package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdlab-go/mdrun/internal/config"
	"github.com/mdlab-go/mdrun/internal/storage"
	"github.com/mdlab-go/mdrun/internal/traj"
)

func TestBackgroundStopWaitsForCompletion(t *testing.T) {
	cleanedUp := false
	bg := startBackground(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		cleanedUp = true
		return ctx.Err()
	})

	if err := bg.stop(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// stop returning is the synchronization point: fn has finished
	if !cleanedUp {
		t.Error("stop returned before the work function did")
	}
}

func TestBackgroundStopAfterNaturalCompletion(t *testing.T) {
	boom := errors.New("structure file missing")
	bg := startBackground(context.Background(), func(ctx context.Context) error {
		return boom
	})

	if err := bg.stop(); !errors.Is(err, boom) {
		t.Fatalf("expected the work error, got %v", err)
	}
	if err := bg.stop(); !errors.Is(err, boom) {
		t.Errorf("second stop should repeat the result, got %v", err)
	}
}

const triatomicXYZ = `3
test fragment
O    0.000000   0.000000   0.000000
H    0.760000   0.590000   0.000000
H   -0.760000   0.590000   0.000000
`

// Quitting the live view mid-run cancels the driver; the trajectory
// must still be terminated properly and the run saved post-mortem.
func TestCancelledRunClosesTrajectoryAndSaves(t *testing.T) {
	dir := t.TempDir()
	xyz := filepath.Join(dir, "frame.xyz")
	if err := os.WriteFile(xyz, []byte(triatomicXYZ), 0644); err != nil {
		t.Fatal(err)
	}

	prevData := dataDir
	dataDir = filepath.Join(dir, "data")
	defer func() { dataDir = prevData }()

	cfg := config.Default()
	cfg.Structure = xyz
	cfg.Potential = "harmonic"
	cfg.Integrator = "verlet"
	cfg.Trajectory = filepath.Join(dir, "run.traj")
	cfg.TotalSteps = 50_000_000
	cfg.DiagnosticsInterval = 1_000_000
	cfg.TrajectoryInterval = 1
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	bg := startBackground(context.Background(), func(ctx context.Context) error {
		_, err := executeRun(ctx, cfg, io.Discard, nil)
		return err
	})
	time.Sleep(20 * time.Millisecond)
	if err := bg.stop(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to surface, got %v", err)
	}

	// the writer was closed on the way out, so the stream reads back
	r, err := traj.NewReader(cfg.Trajectory)
	if err != nil {
		t.Fatalf("trajectory unreadable after cancellation: %v", err)
	}
	defer r.Close()
	if _, err := r.ReadAll(); err != nil {
		t.Fatalf("trajectory truncated after cancellation: %v", err)
	}

	runs, err := storage.New(dataDir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("cancelled run not saved, found %d runs", len(runs))
	}
	if runs[0].State != "failed" {
		t.Errorf("cancelled run stored with state %q", runs[0].State)
	}
}
