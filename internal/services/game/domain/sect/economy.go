package sect

import (
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/building"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/pill"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/talent"
)

// siteIncome is what a settled site pays each turn.
func siteIncome(site catalog.Site, reputation int) int {
	if site.Kind != catalog.SiteVillage && site.Kind != catalog.SiteFaction {
		return 0
	}
	bonus := 0
	switch {
	case reputation > 100:
		bonus = reputation / 20
	case reputation > 50:
		bonus = reputation / 50
	}
	return site.Prosperity/10 + bonus
}

// Income is the turn's income after sect-wide income modifiers.
func (s *Sect) Income() int {
	base := 0
	for _, site := range s.sites {
		base += siteIncome(site, s.reputation)
	}
	income := modifier.ResolveFor(float64(base), condition.Unconditional(s.pool), modifier.For(modifier.TargetIncome))
	return max(0, int(income))
}

func (s *Sect) collectIncome(r *recorder) {
	income := s.Income()
	s.resources += income
	r.add(Event{Type: EventIncome, Amount: float64(income)})
}

// RecruitChance is the per-turn recruitment chance at reputation.
func RecruitChance(reputation int) float64 {
	switch {
	case reputation > 100:
		return 0.15
	case reputation > 50:
		return 0.10
	case reputation > 0:
		return 0.05
	default:
		return 0.02
	}
}

func (s *Sect) tryRecruit(r *recorder) {
	if s.rng.Float64() >= RecruitChance(s.reputation) {
		return
	}
	d, err := s.recruit()
	if err != nil {
		s.log.WithError(err).Warn("recruitment failed")
		return
	}
	r.add(Event{Type: EventRecruited, DiscipleID: d.ID, Detail: string(d.Kind)})
}

// recruit generates a random disciple with one to three distinct talents.
func (s *Sect) recruit() (*disciple.Disciple, error) {
	pool := append([]talent.Type(nil), talent.Recruitable...)
	count := 1 + s.rng.Intn(3)
	talents := make([]talent.Talent, 0, count)
	for range count {
		i := s.rng.Intn(len(pool))
		talents = append(talents, talent.Talent{Type: pool[i], Level: 1 + s.rng.Intn(7)})
		pool = append(pool[:i], pool[i+1:]...)
	}

	kind := disciple.KindOuter
	switch roll := s.rng.Float64(); {
	case roll >= 0.9:
		kind = disciple.KindPersonal
	case roll >= 0.6:
		kind = disciple.KindInner
	}

	id := s.newDiscipleID()
	name := id
	if names := s.catalog.Names; len(names) > 0 {
		name = names[s.rng.Intn(len(names))]
	}
	view, err := s.AddDisciple(disciple.Params{ID: id, Name: name, Kind: kind, Talents: talents})
	if err != nil {
		return nil, err
	}
	s.tally.recruited++
	return s.disciples[view.ID], nil
}

func (s *Sect) recoverIdle(r *recorder) {
	for _, id := range s.discipleIDs() {
		d := s.disciples[id]
		if d.Busy() {
			continue
		}
		d.AdjustEnergy(s.cfg.IdleEnergyRecovery)
		d.AdjustConstitution(s.cfg.IdleConstitutionRecovery)
		r.add(Event{Type: EventRecovered, DiscipleID: id})
	}
}

// BuildResult reports a raised building.
type BuildResult struct {
	BuildingID string
	Cost       int
	Grants     []condition.Modifier
}

// Build raises a building, paying its cost and adding its grants to the
// sect's conditional pool.
func (s *Sect) Build(buildingID string) (BuildResult, error) {
	if err := s.mutable(); err != nil {
		return BuildResult{}, err
	}
	grants, cost, err := s.tree.Build(buildingID, s.resources)
	if err != nil {
		meta := map[string]string{"building_id": buildingID}
		switch {
		case errors.Is(err, building.ErrNotFound):
			return BuildResult{}, notFound(ErrBuildingNotFound, "building_id", buildingID)
		case errors.Is(err, building.ErrAlreadyBuilt):
			return BuildResult{}, failed(ErrAlreadyBuilt, meta, err)
		case errors.Is(err, building.ErrPrerequisite):
			return BuildResult{}, failed(ErrPrerequisite, meta, err)
		case errors.Is(err, building.ErrInsufficientResources):
			return BuildResult{}, failed(ErrInsufficient, meta, err)
		case errors.Is(err, building.ErrCostOverflow):
			return BuildResult{}, failed(ErrCostOverflow, meta, err)
		default:
			return BuildResult{}, err
		}
	}
	s.resources -= cost
	res := BuildResult{BuildingID: buildingID, Cost: cost}
	for _, g := range grants {
		res.Grants = append(res.Grants, s.AddConditional(g))
	}
	s.log.WithFields(logrus.Fields{"building_id": buildingID, "cost": cost, "resources": s.resources}).Info("building raised")
	return res, nil
}

// BuildingCost returns the current cost of a building.
func (s *Sect) BuildingCost(buildingID string) (int, error) {
	cost, err := s.tree.Cost(buildingID)
	if errors.Is(err, building.ErrNotFound) {
		return 0, notFound(ErrBuildingNotFound, "building_id", buildingID)
	}
	if err != nil {
		return 0, failed(ErrCostOverflow, map[string]string{"building_id": buildingID}, err)
	}
	return cost, nil
}

// UsePill feeds one pill to a disciple.
func (s *Sect) UsePill(discipleID string, kind pill.Kind) (disciple.View, error) {
	if err := s.mutable(); err != nil {
		return disciple.View{}, err
	}
	if _, err := pill.Lookup(kind); err != nil {
		return disciple.View{}, failed(ErrUnknownPill, map[string]string{"pill": string(kind)}, err)
	}
	d, err := s.disciple(discipleID)
	if err != nil {
		return disciple.View{}, err
	}
	effect, err := s.pills.Take(kind)
	if err != nil {
		return disciple.View{}, failed(ErrOutOfStock, map[string]string{"pill": string(kind)}, err)
	}
	effect.Apply(d)
	return d.View(), nil
}

// CraftPill spends resources to add quantity pills of kind to the inventory.
func (s *Sect) CraftPill(kind pill.Kind, quantity int) (int, error) {
	if err := s.mutable(); err != nil {
		return 0, err
	}
	profile, err := pill.Lookup(kind)
	if err != nil {
		return 0, failed(ErrUnknownPill, map[string]string{"pill": string(kind)}, err)
	}
	if quantity <= 0 {
		return 0, failed(ErrInvalidArgument, map[string]string{"pill": string(kind)}, errors.New("quantity must be positive"))
	}
	if profile.Cost > 0 && quantity > math.MaxInt/profile.Cost {
		return 0, failed(ErrCostOverflow, map[string]string{"pill": string(kind)}, nil)
	}
	cost := profile.Cost * quantity
	if cost > s.resources {
		return 0, failed(ErrInsufficient, map[string]string{"pill": string(kind)}, nil)
	}
	if err := s.pills.Put(kind, quantity); err != nil {
		return 0, err
	}
	s.resources -= cost
	return cost, nil
}

// Pills returns the inventory counts.
func (s *Sect) Pills() map[pill.Kind]int {
	return s.pills.Snapshot()
}
