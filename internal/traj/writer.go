// Package traj implements the trajectory store: an append-only,
// zstd-compressed, line-oriented snapshot log. The layout follows
// goChem's stf convention (a key=value header closed by a "**" line
// carrying the atom count, one line per atom per frame, and a "*"
// frame terminator), extended with a "> step" frame lead-in and
// velocity columns so a record is a full restart point.
package traj

import (
	"bufio"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/mdlab-go/mdrun/internal/core"
)

const formatVersion = 1

// Writer appends snapshots to a trajectory file. It owns the file
// handle from construction until Close.
type Writer struct {
	f        *os.File
	enc      *zstd.Encoder
	buf      *bufio.Writer
	natoms   int
	lastStep int
	closed   bool
}

// NewWriter creates (or truncates) the store at path and writes the
// header for a system of natoms particles.
func NewWriter(path string, natoms int) (*Writer, error) {
	if natoms <= 0 {
		return nil, core.ErrEmptySystem
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("traj: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("traj: %w", err)
	}
	w := &Writer{
		f:        f,
		enc:      enc,
		buf:      bufio.NewWriter(enc),
		natoms:   natoms,
		lastStep: -1,
	}
	fmt.Fprintf(w.buf, "format=mdrun-traj\nversion=%d\n", formatVersion)
	fmt.Fprintf(w.buf, "** %d\n", natoms)
	return w, nil
}

// Append writes the snapshot of s at the given step as the next
// record. Steps must be strictly increasing.
func (w *Writer) Append(s *core.System, step int) error {
	if w.closed {
		return fmt.Errorf("traj: %w", os.ErrClosed)
	}
	if s.Len() != w.natoms {
		return fmt.Errorf("traj: %w: %d atoms given, %d expected", core.ErrInvalidConfig, s.Len(), w.natoms)
	}
	if step <= w.lastStep {
		return fmt.Errorf("%w: step %d after %d", core.ErrStepOrder, step, w.lastStep)
	}
	fmt.Fprintf(w.buf, "> %d\n", step)
	for i := 0; i < w.natoms; i++ {
		p, v := s.Pos[i], s.Vel[i]
		fmt.Fprintf(w.buf, "%.8g %.8g %.8g %.8g %.8g %.8g\n",
			p[0], p[1], p[2], v[0], v[1], v[2])
	}
	if _, err := w.buf.WriteString("*\n"); err != nil {
		return fmt.Errorf("traj: %w", err)
	}
	w.lastStep = step
	return nil
}

// LastStep returns the step index of the last appended record, or -1.
func (w *Writer) LastStep() int { return w.lastStep }

// Close flushes and releases the underlying file. Safe to call more
// than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.enc.Close()
		w.f.Close()
		return fmt.Errorf("traj: %w", err)
	}
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("traj: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("traj: %w", err)
	}
	return nil
}
