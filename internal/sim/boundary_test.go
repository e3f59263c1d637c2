package sim

import (
	"errors"
	"testing"

	"github.com/san-kum/lbmsim/internal/config"
)

func TestPeriodic_FillsHalo(t *testing.T) {
	// halo 2, interior [10 11 12 13]
	f := [][]float64{{0, 0, 10, 11, 12, 13, 0, 0}}
	periodic(f, 2, 4)
	want := []float64{12, 13, 10, 11, 12, 13, 10, 11}
	for i, v := range want {
		if f[0][i] != v {
			t.Fatalf("f = %v, want %v", f[0], want)
		}
	}
}

func TestBoundary_Apply(t *testing.T) {
	// distribution 0 moves right, 1 moves left; halo 1, interior cells 1..2
	f := func() [][]float64 {
		return [][]float64{
			{0, 1, 2, 0},
			{0, 3, 4, 0},
		}
	}
	right := link{dist: 0, opp: 1, cell: 2, ghost: 3}

	tests := []struct {
		method string
		want   float64
	}{
		{config.MethodBounceBack, 2},
		{config.MethodAntiBounceBack, -2},
		{config.MethodNeumann, 4},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			b := &boundary{method: tt.method, links: []link{right}, wall: []float64{1}}
			got := f()
			if err := b.apply(got, 0); err != nil {
				t.Fatal(err)
			}
			if got[1][3] != tt.want {
				t.Errorf("ghost = %v, want %v", got[1][3], tt.want)
			}
		})
	}
}

func TestBuildBoundaries_Links(t *testing.T) {
	cfg := config.GetPreset("source_tx")
	s := newSim(t, cfg)

	if len(s.boundaries) != 2 {
		t.Fatalf("got %d boundaries, want 2", len(s.boundaries))
	}
	start, end := s.Domain().Interior()
	for _, b := range s.boundaries {
		if len(b.links) != 1 {
			t.Fatalf("label %d: %d links, want 1", b.label, len(b.links))
		}
		l := b.links[0]
		switch b.label {
		case 1:
			if l.cell != start || l.ghost != start-1 || b.wall[0] != cfg.Box.X[0] {
				t.Errorf("left link = %+v wall %v", l, b.wall[0])
			}
		case 2:
			if l.cell != end-1 || l.ghost != end || b.wall[0] != cfg.Box.X[1] {
				t.Errorf("right link = %+v wall %v", l, b.wall[0])
			}
		}
	}
}

func TestBuildBoundaries_MissingOpposite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Box.Label = config.Labels{0}
	cfg.BoundaryConditions = map[int]config.BoundaryConfig{0: {Method: config.MethodBounceBack}}
	cfg.Schemes[0].Velocities = []int{0, 1}

	if _, err := New(cfg); !errors.Is(err, ErrBoundary) {
		t.Errorf("New error = %v, want ErrBoundary", err)
	}
}
