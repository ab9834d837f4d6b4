package particles

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/flowlab/internal/config"
	"github.com/san-kum/flowlab/internal/field"
)

var stillFluid = func(x, y float64) field.Vec2 { return field.Vec2{} }

func testParams() config.Params {
	p := config.DefaultParams()
	p.Particles.Momentum = 1.0
	p.Particles.FluidForce = 0.5
	return p
}

func TestSpawnProperties(t *testing.T) {
	g := NewWithT(t)
	s := NewSystem(1)

	s.Spawn(field.Vec2{X: 100, Y: 200}, 50, 10)
	g.Expect(s.Len()).To(Equal(50))

	for _, pt := range s.parts {
		g.Expect(pt.Pos.X).To(BeNumerically("~", 100, 10.0001))
		g.Expect(pt.Pos.Y).To(BeNumerically("~", 200, 10.0001))
		g.Expect(pt.Life).To(And(BeNumerically(">=", 0.3), BeNumerically("<=", 1.0)))
		g.Expect(pt.Mass).To(And(BeNumerically(">=", 0.1), BeNumerically("<=", 1.0)))
		g.Expect(pt.Vel).To(Equal(field.Vec2{}))
		g.Expect(pt.Age).To(BeZero())
		// White scaled by the spawn alpha, alpha mirrored into Life.
		g.Expect(pt.Color).To(Equal([4]float64{pt.Life, pt.Life, pt.Life, pt.Life}))
	}
}

func TestSpawnZeroAndNegativeCount(t *testing.T) {
	s := NewSystem(1)
	s.Spawn(field.Vec2{}, 0, 5)
	s.Spawn(field.Vec2{}, -3, 5)
	if s.Len() != 0 {
		t.Errorf("expected empty pool, got %d", s.Len())
	}
}

func TestEvictionOldestFirstPreservesOrder(t *testing.T) {
	s := NewSystem(1)
	s.SetCapacity(3)

	for i := 1; i <= 5; i++ {
		s.Spawn(field.Vec2{X: float64(i)}, 1, 0)
	}

	if s.Len() != 3 {
		t.Fatalf("pool size %d, want 3", s.Len())
	}
	// Exactly the two oldest were evicted; survivors keep order.
	for i, want := range []float64{3, 4, 5} {
		if got := s.parts[i].Pos.X; got != want {
			t.Errorf("slot %d: x=%v, want %v", i, got, want)
		}
	}
}

func TestShrinkCapacityEvicts(t *testing.T) {
	s := NewSystem(1)
	for i := 0; i < 10; i++ {
		s.Spawn(field.Vec2{X: float64(i)}, 1, 0)
	}
	s.SetCapacity(4)
	if s.Len() != 4 || s.parts[0].Pos.X != 6 {
		t.Errorf("shrink evicted wrong entries: len=%d first=%v", s.Len(), s.parts[0].Pos.X)
	}
}

func TestLifeDecaySequence(t *testing.T) {
	s := NewSystem(1)
	s.Spawn(field.Vec2{X: 640, Y: 360}, 1, 0)
	s.parts[0].Life = 1.0

	p := testParams()
	viewport := field.Vec2{X: 1280, Y: 720}

	// life = 0.999^n; the particle is removed on the first tick this
	// drops below 0.01.
	removalTick := int(math.Ceil(math.Log(0.01) / math.Log(0.999)))

	for n := 1; ; n++ {
		s.Update(p, stillFluid, viewport)
		if n < removalTick {
			if s.Len() != 1 {
				t.Fatalf("removed early at tick %d (expected %d)", n, removalTick)
			}
			want := math.Pow(0.999, float64(n))
			if got := s.parts[0].Life; math.Abs(got-want) > 1e-9 {
				t.Fatalf("tick %d: life=%v, want %v", n, got, want)
			}
		} else {
			if s.Len() != 0 {
				t.Fatalf("not removed at tick %d", n)
			}
			break
		}
	}
}

func TestViewportCullForcesExpiry(t *testing.T) {
	s := NewSystem(1)
	viewport := field.Vec2{X: 1280, Y: 720}
	p := testParams()

	s.Spawn(field.Vec2{X: 640, Y: 360}, 1, 0)
	s.parts[0].Life = 1.0
	s.parts[0].Pos = field.Vec2{X: 1280 + Margin + 1, Y: 360}

	s.Update(p, stillFluid, viewport)
	if s.Len() != 0 {
		t.Error("out-of-viewport particle survived the update")
	}

	// Just inside the margin survives.
	s.Spawn(field.Vec2{X: 640, Y: 360}, 1, 0)
	s.parts[0].Life = 1.0
	s.parts[0].Pos = field.Vec2{X: 1280 + Margin - 1, Y: 360}
	s.Update(p, stillFluid, viewport)
	if s.Len() != 1 {
		t.Error("in-margin particle was culled")
	}
}

func TestMomentumCarriesVelocity(t *testing.T) {
	g := NewWithT(t)
	s := NewSystem(1)
	s.Spawn(field.Vec2{X: 640, Y: 360}, 1, 0)
	s.parts[0].Life = 1.0
	s.parts[0].Vel = field.Vec2{X: 2, Y: 0}

	p := testParams() // momentum 1.0, still fluid: velocity carries fully
	s.Update(p, stillFluid, field.Vec2{X: 1280, Y: 720})

	g.Expect(s.parts[0].Vel.X).To(Equal(2.0))
	g.Expect(s.parts[0].Pos.X).To(Equal(642.0))
}

func TestFluidPullReplacesVelocity(t *testing.T) {
	g := NewWithT(t)
	s := NewSystem(1)
	s.Spawn(field.Vec2{X: 640, Y: 360}, 1, 0)
	s.parts[0].Life = 1.0
	s.parts[0].Mass = 1.0
	s.parts[0].Vel = field.Vec2{X: 9, Y: 9}

	p := testParams()
	p.Particles.Momentum = 0 // age 0: no carry-over at all
	p.Particles.FluidForce = 1.0

	flow := func(x, y float64) field.Vec2 { return field.Vec2{X: 3, Y: 0} }
	s.Update(p, flow, field.Vec2{X: 1280, Y: 720})

	// Blend replaces velocity: fluid pull only, scaled by the
	// viewport factor (1280/1280 = 1) and ageDecay (age 0 => 1).
	g.Expect(s.parts[0].Vel.X).To(Equal(3.0))
	g.Expect(s.parts[0].Vel.Y).To(BeZero())
}

func TestLinkToViscosityOverridesForce(t *testing.T) {
	g := NewWithT(t)
	s := NewSystem(1)
	s.Spawn(field.Vec2{X: 640, Y: 360}, 1, 0)
	s.parts[0].Life = 1.0
	s.parts[0].Mass = 1.0

	p := testParams()
	p.Viscosity = 0.01
	p.Particles.Momentum = 0
	p.Particles.FluidForce = 0 // ignored when linked
	p.Particles.LinkToViscosity = true

	flow := func(x, y float64) field.Vec2 { return field.Vec2{X: 1, Y: 0} }
	s.Update(p, flow, field.Vec2{X: 1280, Y: 720})

	// linked force = 0.1 + (0.01/0.01)*0.9 = 1.0
	g.Expect(s.parts[0].Vel.X).To(Equal(1.0))
}

func TestVerticesStream(t *testing.T) {
	s := NewSystem(1)
	s.Spawn(field.Vec2{X: 100, Y: 100}, 3, 0)
	for i := range s.parts {
		s.parts[i].Life = 0.5
		s.parts[i].Vel = field.Vec2{X: 4, Y: 0}
	}

	verts := s.Vertices(2.0)
	if len(verts) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(verts))
	}
	// Trailing endpoint sits at pos - vel*scale; alpha mirrors life.
	if verts[0].X != float32(100-4*2.0) || verts[1].X != 100 {
		t.Errorf("segment endpoints wrong: %v -> %v", verts[0].X, verts[1].X)
	}
	for _, v := range verts {
		if v.Alpha != 0.5 {
			t.Errorf("alpha = %v, want 0.5", v.Alpha)
		}
	}
}

func TestGridSamplerScalesPerAxis(t *testing.T) {
	g := NewWithT(t)

	// 100x50 grid stretched over a 200x200 viewport: x scales by 2,
	// y by 4. A uniform (1, 1) cells/tick flow must come back
	// anisotropic in pixels.
	var gotX, gotY float64
	grid := func(x, y float64) field.Vec2 {
		gotX, gotY = x, y
		return field.Vec2{X: 1, Y: 1}
	}
	sampler := GridSampler(grid, 100, 50, field.Vec2{X: 200, Y: 200})

	v := sampler(50, 100)
	g.Expect(gotX).To(Equal(25.0))
	g.Expect(gotY).To(Equal(25.0))
	g.Expect(v.X).To(Equal(2.0))
	g.Expect(v.Y).To(Equal(4.0))
}
