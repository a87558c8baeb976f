package wheel

import (
	"crypto/rand"
	"math/big"
)

// MinFullRotations is the floor for visual spin duration. Full rotations
// affect animation only; the resolved prize depends solely on the final
// angle.
const MinFullRotations = 5

// AngleSource supplies the randomness driving each spin's final stop angle.
// Implementations must return a total rotation of full*360 + final where
// final is uniform over [0, 360).
type AngleSource interface {
	NextStopAngle() (totalRotation, finalAngle float64)
}

// CryptoAngleSource draws angles from crypto/rand.
type CryptoAngleSource struct {
	minRotations   int
	extraRotations int
}

// NewCryptoAngleSource builds the production angle source. minRotations is
// clamped to at least 3; up to extraRotations additional full turns are
// added at random for animation variety.
func NewCryptoAngleSource(minRotations, extraRotations int) *CryptoAngleSource {
	if minRotations < 3 {
		minRotations = 3
	}
	if extraRotations < 0 {
		extraRotations = 0
	}
	return &CryptoAngleSource{minRotations: minRotations, extraRotations: extraRotations}
}

func (s *CryptoAngleSource) NextStopAngle() (float64, float64) {
	// 0.0001 degree precision
	n, err := rand.Int(rand.Reader, big.NewInt(3600000))
	if err != nil {
		n = big.NewInt(1800000)
	}
	final := float64(n.Int64()) / 10000.0

	rotations := s.minRotations
	if s.extraRotations > 0 {
		e, err := rand.Int(rand.Reader, big.NewInt(int64(s.extraRotations)+1))
		if err == nil {
			rotations += int(e.Int64())
		}
	}

	return float64(rotations)*360 + final, final
}

// FixedAngleSource replays a fixed sequence of final angles, cycling when
// exhausted. Used to make spin outcomes deterministic in tests.
type FixedAngleSource struct {
	Angles []float64
	next   int
}

func (s *FixedAngleSource) NextStopAngle() (float64, float64) {
	if len(s.Angles) == 0 {
		return MinFullRotations * 360, 0
	}
	final := normalizeAngle(s.Angles[s.next%len(s.Angles)])
	s.next++
	return MinFullRotations*360 + final, final
}
