package system

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdlab-go/mdrun/internal/core"
)

const carbonateXYZ = `5
calcite fragment
Ca   0.000000   0.000000   0.000000
C    2.400000   0.000000   0.000000
O    3.690000   0.000000   0.000000
O    1.755000   1.117000   0.000000
O    1.755000  -1.117000   0.000000
`

func writeXYZ(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.xyz")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadXYZ(t *testing.T) {
	s, err := Load(writeXYZ(t, carbonateXYZ))
	if err != nil {
		t.Fatal(err)
	}

	if s.Len() != 5 {
		t.Fatalf("loaded %d atoms, want 5", s.Len())
	}
	wantSymbols := []string{"Ca", "C", "O", "O", "O"}
	for i, sym := range wantSymbols {
		if s.Symbols[i] != sym {
			t.Errorf("atom %d: symbol %q, want %q", i, s.Symbols[i], sym)
		}
		if s.Masses[i] <= 0 {
			t.Errorf("atom %d: mass %g not assigned from the topology", i, s.Masses[i])
		}
	}
	// calcium is the heavy one
	if s.Masses[0] < s.Masses[1] || s.Masses[0] < s.Masses[2] {
		t.Errorf("mass ordering wrong: %v", s.Masses)
	}

	if math.Abs(s.Pos[1][0]-2.4) > 1e-9 || math.Abs(s.Pos[3][1]-1.117) > 1e-9 {
		t.Errorf("coordinates mangled: %v", s.Pos)
	}
	for i := range s.Vel {
		if s.Vel[i] != (core.Vec3{}) {
			t.Errorf("atom %d: fresh system should start at rest, got %v", i, s.Vel[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.xyz")); err == nil {
		t.Error("expected an error for a missing structure file")
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := Load(writeXYZ(t, "not an xyz file\n")); err == nil {
		t.Error("expected an error for a malformed structure file")
	}
}
