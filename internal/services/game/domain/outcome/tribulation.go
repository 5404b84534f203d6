package outcome

import "github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"

// Tribulation rate terms.
const (
	BaseTribulationRate = 0.3
	DaoHeartRateFactor  = 0.005
	MaxTribulationRate  = 0.95
)

// NativeTribulationRate is the unmodified chance to survive a tribulation.
func NativeTribulationRate(daoHeart float64) float64 {
	return BaseTribulationRate + daoHeart*DaoHeartRateFactor
}

// TribulationRate resolves the effective chance against mods and caps it.
func TribulationRate(daoHeart float64, mods []modifier.Modifier) float64 {
	rate := modifier.ResolveFor(NativeTribulationRate(daoHeart), mods, modifier.For(modifier.TargetTribulationSuccessRate))
	return Clamp(rate, 0, MaxTribulationRate)
}

// Tribulation is a resolved tribulation roll.
type Tribulation struct {
	Passed bool
	Rate   float64
}

// RollTribulation draws a tribulation at rate.
func RollTribulation(r Roller, rate float64) Tribulation {
	return Tribulation{Passed: r.Float64() < rate, Rate: rate}
}
