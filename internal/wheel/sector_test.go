package wheel

import "testing"

func testSpecs() []SectorSpec {
	return []SectorSpec{
		{Prize: Numeric(100), Label: "100"},
		{Prize: Empty(), Label: "💀"},
		{Prize: Numeric(10), Label: "10"},
		{Prize: Empty(), Label: "💀"},
		{Prize: Numeric(0), Label: "0"},
		{Prize: Empty(), Label: "💀"},
		{Prize: Numeric(1000), Label: "1000"},
		{Prize: Empty(), Label: "💀"},
	}
}

func TestResolveKnownAngles(t *testing.T) {
	m, err := NewSectorMap(testSpecs())
	if err != nil {
		t.Fatalf("NewSectorMap: %v", err)
	}

	cases := []struct {
		angle     float64
		wantIndex int
		wantPrize PrizeLabel
	}{
		// floor((360-0)/45) mod 8 = 0
		{0, 0, Numeric(100)},
		// floor((360-50)/45) = floor(310/45) = 6
		{50, 6, Numeric(1000)},
		{100, 5, Empty()},
		{359.9, 0, Numeric(100)},
		// boundary angles belong to the sector starting there
		{315, 1, Empty()},
		{45, 7, Empty()},
	}

	for _, tc := range cases {
		got := m.Resolve(tc.angle)
		if got.Index != tc.wantIndex {
			t.Errorf("Resolve(%v) index = %d; want %d", tc.angle, got.Index, tc.wantIndex)
		}
		if got.Prize != tc.wantPrize {
			t.Errorf("Resolve(%v) prize = %+v; want %+v", tc.angle, got.Prize, tc.wantPrize)
		}
	}
}

func TestResolveIsTotal(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 12} {
		specs := make([]SectorSpec, n)
		for i := range specs {
			specs[i] = SectorSpec{Prize: Numeric(int64(i))}
		}
		m, err := NewSectorMap(specs)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		for a := 0.0; a < 360; a += 0.25 {
			s := m.Resolve(a)
			if s.Index < 0 || s.Index >= n {
				t.Fatalf("n=%d angle=%v: index %d out of range", n, a, s.Index)
			}
		}
	}
}

func TestResolveRotationInvariant(t *testing.T) {
	m := DefaultSectorMap()

	for _, a := range []float64{0, 13.7, 45, 90.01, 222.2, 359.99} {
		base := m.Resolve(a)
		for k := 1; k <= 7; k++ {
			got := m.Resolve(a + float64(k)*360)
			if got.Index != base.Index {
				t.Errorf("Resolve(%v + %d*360) index = %d; want %d", a, k, got.Index, base.Index)
			}
		}
		if neg := m.Resolve(a - 720); neg.Index != base.Index {
			t.Errorf("Resolve(%v - 720) index = %d; want %d", a, neg.Index, base.Index)
		}
	}
}

func TestConstructionDeterministic(t *testing.T) {
	a, err := NewSectorMap(testSpecs())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSectorMap(testSpecs())
	if err != nil {
		t.Fatal(err)
	}

	sa, sb := a.Sectors(), b.Sectors()
	if len(sa) != len(sb) {
		t.Fatalf("sector counts differ: %d vs %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Errorf("sector %d differs: %+v vs %+v", i, sa[i], sb[i])
		}
	}
}

func TestSectorsSpanCircle(t *testing.T) {
	m := DefaultSectorMap()

	sectors := m.Sectors()
	if len(sectors) != 8 {
		t.Fatalf("expected 8 sectors, got %d", len(sectors))
	}
	if m.Width() != 45 {
		t.Fatalf("expected 45 degree sectors, got %v", m.Width())
	}

	prev := 0.0
	for i, s := range sectors {
		if s.StartAngle != prev {
			t.Errorf("sector %d starts at %v; want %v (contiguous)", i, s.StartAngle, prev)
		}
		if s.EndAngle <= s.StartAngle {
			t.Errorf("sector %d has non-positive width", i)
		}
		prev = s.EndAngle
	}
	if prev != 360 {
		t.Errorf("sectors end at %v; want 360", prev)
	}
}

func TestEmptySectorListRejected(t *testing.T) {
	if _, err := NewSectorMap(nil); err != ErrNoSectors {
		t.Fatalf("expected ErrNoSectors, got %v", err)
	}
}

func TestSectorsReturnsCopy(t *testing.T) {
	m := DefaultSectorMap()
	s := m.Sectors()
	s[0].Prize = Numeric(999999)

	if m.Resolve(0).Prize == Numeric(999999) {
		t.Fatal("mutating the returned slice must not affect the map")
	}
}
