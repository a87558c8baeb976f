package wheel

// SpinOutcome is the immutable result of one resolved spin. TotalRotation
// is carried for the frontend animation only.
type SpinOutcome struct {
	Sector        Sector     `json:"sector"`
	Prize         PrizeLabel `json:"prize"`
	StopAngle     float64    `json:"stop_angle"`
	TotalRotation float64    `json:"total_rotation"`
}

// Resolve turns one stop angle into an outcome. Pure: no randomness, no
// I/O, no errors.
func Resolve(m *SectorMap, stopAngle float64) SpinOutcome {
	sector := m.Resolve(stopAngle)
	return SpinOutcome{
		Sector:    sector,
		Prize:     sector.Prize,
		StopAngle: normalizeAngle(stopAngle),
	}
}

// ResolveDraw resolves a full draw from an AngleSource, keeping the total
// rotation for display. Only the final angle determines the prize.
func ResolveDraw(m *SectorMap, src AngleSource) SpinOutcome {
	total, final := src.NextStopAngle()
	out := Resolve(m, final)
	out.TotalRotation = total
	return out
}

// SettlementDelta returns the net balance change of one outcome: 0 for an
// empty sector, otherwise the numeric prize amount.
func SettlementDelta(o SpinOutcome) int64 {
	if o.Prize.Kind != KindNumeric {
		return 0
	}
	return o.Prize.Amount
}

// ExpectedReturn is the average payout of a single uniform spin.
func ExpectedReturn(m *SectorMap) float64 {
	var total int64
	for _, s := range m.sectors {
		if s.Prize.Kind == KindNumeric {
			total += s.Prize.Amount
		}
	}
	return float64(total) / float64(len(m.sectors))
}
