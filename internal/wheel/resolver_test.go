package wheel

import "testing"

// rotatingSource returns the same final angle with a different rotation
// count on every draw.
type rotatingSource struct {
	final float64
	turns int
}

func (s *rotatingSource) NextStopAngle() (float64, float64) {
	s.turns++
	return float64(s.turns)*360 + s.final, s.final
}

func TestSettlementDelta(t *testing.T) {
	cases := []struct {
		prize PrizeLabel
		want  int64
	}{
		{Empty(), 0},
		{Numeric(0), 0},
		{Numeric(10), 10},
		{Numeric(1000), 1000},
	}

	for _, tc := range cases {
		o := SpinOutcome{Prize: tc.prize}
		if got := SettlementDelta(o); got != tc.want {
			t.Errorf("SettlementDelta(%+v) = %d; want %d", tc.prize, got, tc.want)
		}
	}
}

func TestResolveWrapsSector(t *testing.T) {
	m := DefaultSectorMap()

	o := Resolve(m, 50)
	if o.Sector.Index != 6 {
		t.Fatalf("sector index = %d; want 6", o.Sector.Index)
	}
	if o.Prize != o.Sector.Prize {
		t.Fatalf("outcome prize %+v != sector prize %+v", o.Prize, o.Sector.Prize)
	}
	if o.StopAngle != 50 {
		t.Fatalf("stop angle = %v; want 50", o.StopAngle)
	}
}

func TestRotationCountDoesNotAffectPrize(t *testing.T) {
	m := DefaultSectorMap()
	src := &rotatingSource{final: 50}

	first := ResolveDraw(m, src)
	for i := 0; i < 10; i++ {
		got := ResolveDraw(m, src)
		if got.Sector.Index != first.Sector.Index {
			t.Fatalf("draw %d landed on sector %d; want %d (rotations must not matter)",
				i, got.Sector.Index, first.Sector.Index)
		}
		if got.TotalRotation == first.TotalRotation {
			t.Fatal("test source should vary total rotation")
		}
	}
}

func TestResolveDrawKeepsRotationForDisplay(t *testing.T) {
	m := DefaultSectorMap()
	src := &FixedAngleSource{Angles: []float64{90}}

	o := ResolveDraw(m, src)
	if o.TotalRotation != MinFullRotations*360+90 {
		t.Fatalf("total rotation = %v; want %v", o.TotalRotation, MinFullRotations*360+90)
	}
	if o.StopAngle != 90 {
		t.Fatalf("stop angle = %v; want 90", o.StopAngle)
	}
}

func TestExpectedReturn(t *testing.T) {
	m := DefaultSectorMap()

	// (10 + 100 + 1000) / 8
	if got := ExpectedReturn(m); got != 138.75 {
		t.Fatalf("ExpectedReturn = %v; want 138.75", got)
	}
}
