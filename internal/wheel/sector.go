package wheel

import (
	"errors"
	"math"
)

// PrizeKind distinguishes a numeric payout from a "no win" sector.
// The frontend wheel uses both a "00" label and a skull symbol for losing
// sectors; both map to KindEmpty so payout logic never compares strings.
type PrizeKind string

const (
	KindEmpty   PrizeKind = "empty"
	KindNumeric PrizeKind = "numeric"
)

// PrizeLabel is the tagged prize value of one sector.
type PrizeLabel struct {
	Kind   PrizeKind `json:"kind"`
	Amount int64     `json:"amount,omitempty"`
}

// Numeric returns a prize paying the given non-negative amount.
func Numeric(amount int64) PrizeLabel {
	if amount < 0 {
		amount = 0
	}
	return PrizeLabel{Kind: KindNumeric, Amount: amount}
}

// Empty returns a "no win" prize.
func Empty() PrizeLabel {
	return PrizeLabel{Kind: KindEmpty}
}

// Sector is one labeled arc of the wheel.
type Sector struct {
	Index      int        `json:"index"`
	Prize      PrizeLabel `json:"prize"`
	Label      string     `json:"label"`
	Color      string     `json:"color"`
	StartAngle float64    `json:"start_angle"`
	EndAngle   float64    `json:"end_angle"`
}

// SectorSpec describes one sector at construction time.
type SectorSpec struct {
	Prize PrizeLabel `json:"prize"`
	Label string     `json:"label"`
	Color string     `json:"color"`
}

// SectorMap is a fixed, ordered partition of the circle into equal sectors.
// It is immutable after construction.
type SectorMap struct {
	sectors []Sector
	width   float64
}

var ErrNoSectors = errors.New("sector map needs at least one sector")

// NewSectorMap builds N equal sectors of 360/N degrees each, laid out
// clockwise starting at angle 0 (the pointer position).
func NewSectorMap(specs []SectorSpec) (*SectorMap, error) {
	if len(specs) == 0 {
		return nil, ErrNoSectors
	}

	width := 360.0 / float64(len(specs))
	sectors := make([]Sector, len(specs))
	for i, s := range specs {
		sectors[i] = Sector{
			Index:      i,
			Prize:      s.Prize,
			Label:      s.Label,
			Color:      s.Color,
			StartAngle: float64(i) * width,
			EndAngle:   float64(i+1) * width,
		}
	}

	return &SectorMap{sectors: sectors, width: width}, nil
}

// DefaultSectorSpecs returns the production wheel layout: eight sectors,
// alternating losing sectors with 10/100/1000 PKR prizes.
func DefaultSectorSpecs() []SectorSpec {
	return []SectorSpec{
		{Prize: Empty(), Label: "00", Color: "#4a4a4a"},
		{Prize: Empty(), Label: "💀", Color: "#2c2c2c"},
		{Prize: Numeric(10), Label: "10", Color: "#e74c3c"},
		{Prize: Empty(), Label: "💀", Color: "#2c2c2c"},
		{Prize: Numeric(100), Label: "100", Color: "#f39c12"},
		{Prize: Empty(), Label: "💀", Color: "#2c2c2c"},
		{Prize: Numeric(1000), Label: "1000", Color: "#f1c40f"},
		{Prize: Empty(), Label: "💀", Color: "#2c2c2c"},
	}
}

// DefaultSectorMap builds the production wheel.
func DefaultSectorMap() *SectorMap {
	m, err := NewSectorMap(DefaultSectorSpecs())
	if err != nil {
		panic(err) // unreachable: DefaultSectorSpecs is non-empty
	}
	return m
}

// Resolve maps a stop angle to the sector under the pointer.
//
// The wheel graphic rotates clockwise under a fixed top pointer, so the
// sector under the pointer moves counter to the nominal rotation angle:
// the indicator-relative angle is (360 - a) mod 360, and the landed index
// is floor(rel / width) mod N. Boundary angles belong to the sector
// beginning at that boundary (half-open [start, end)). This convention is
// a fixed contract shared with the frontend renderer; changing it desyncs
// the visual result from the paid prize.
func (m *SectorMap) Resolve(stopAngle float64) Sector {
	a := normalizeAngle(stopAngle)
	rel := math.Mod(360-a, 360)
	idx := int(rel/m.width) % len(m.sectors)
	return m.sectors[idx]
}

// Sectors returns a copy of the sector layout for display.
func (m *SectorMap) Sectors() []Sector {
	out := make([]Sector, len(m.sectors))
	copy(out, m.sectors)
	return out
}

// Size returns the number of sectors.
func (m *SectorMap) Size() int { return len(m.sectors) }

// Width returns the angular width of each sector in degrees.
func (m *SectorMap) Width() float64 { return m.width }

// normalizeAngle reduces any angle to [0, 360).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
