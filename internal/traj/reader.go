package traj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/mdlab-go/mdrun/internal/core"
)

// Reader iterates the records of a trajectory file in write order.
type Reader struct {
	f      *os.File
	dec    *zstd.Decoder
	sc     *bufio.Scanner
	natoms int
}

func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("traj: %w", err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("traj: %w", err)
	}
	r := &Reader{f: f, dec: dec, sc: bufio.NewScanner(dec)}
	if err := r.readHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	for r.sc.Scan() {
		line := r.sc.Text()
		if strings.HasPrefix(line, "** ") {
			n, err := strconv.Atoi(strings.TrimSpace(line[3:]))
			if err != nil || n <= 0 {
				return fmt.Errorf("traj: bad atom count %q", line)
			}
			r.natoms = n
			return nil
		}
		if !strings.Contains(line, "=") {
			return fmt.Errorf("traj: bad header line %q", line)
		}
	}
	if err := r.sc.Err(); err != nil {
		return fmt.Errorf("traj: %w", err)
	}
	return fmt.Errorf("traj: missing header terminator")
}

// Len returns the number of atoms per record.
func (r *Reader) Len() int { return r.natoms }

// Next returns the next snapshot, or io.EOF after the last record.
func (r *Reader) Next() (core.Snapshot, error) {
	var snap core.Snapshot
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return snap, fmt.Errorf("traj: %w", err)
		}
		return snap, io.EOF
	}
	lead := r.sc.Text()
	if !strings.HasPrefix(lead, "> ") {
		return snap, fmt.Errorf("traj: bad record lead-in %q", lead)
	}
	step, err := strconv.Atoi(strings.TrimSpace(lead[2:]))
	if err != nil {
		return snap, fmt.Errorf("traj: bad step in %q", lead)
	}
	snap.Step = step
	snap.Pos = make([]core.Vec3, r.natoms)
	snap.Vel = make([]core.Vec3, r.natoms)
	for i := 0; i < r.natoms; i++ {
		if !r.sc.Scan() {
			return snap, fmt.Errorf("traj: truncated record at step %d", step)
		}
		fields := strings.Fields(r.sc.Text())
		if len(fields) != 6 {
			return snap, fmt.Errorf("traj: atom line with %d fields at step %d", len(fields), step)
		}
		for c := 0; c < 6; c++ {
			val, err := strconv.ParseFloat(fields[c], 64)
			if err != nil {
				return snap, fmt.Errorf("traj: %w at step %d", err, step)
			}
			if c < 3 {
				snap.Pos[i][c] = val
			} else {
				snap.Vel[i][c-3] = val
			}
		}
	}
	if !r.sc.Scan() || r.sc.Text() != "*" {
		return snap, fmt.Errorf("traj: missing terminator at step %d", step)
	}
	return snap, nil
}

// ReadAll drains the remaining records.
func (r *Reader) ReadAll() ([]core.Snapshot, error) {
	var snaps []core.Snapshot
	for {
		snap, err := r.Next()
		if err == io.EOF {
			return snaps, nil
		}
		if err != nil {
			return snaps, err
		}
		snaps = append(snaps, snap)
	}
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
