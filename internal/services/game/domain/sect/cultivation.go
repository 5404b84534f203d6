package sect

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/outcome"
)

// age adds a year to every disciple and buries those past their lifespan.
func (s *Sect) age(r *recorder) {
	for _, id := range s.discipleIDs() {
		d := s.disciples[id]
		d.Age++
		if !d.Alive() {
			s.kill(d, "lifespan exhausted", r)
		}
	}
	if len(s.disciples) > 0 {
		r.add(Event{Type: EventAged, Amount: float64(len(s.disciples))})
	}
}

// breakthroughs advances every ready disciple. Ungated tiers advance at once.
// Gated tiers roll a tribulation when auto tribulation is on, otherwise the
// disciple waits as a candidate for AttemptTribulation.
func (s *Sect) breakthroughs(r *recorder) {
	for _, id := range s.discipleIDs() {
		d := s.disciples[id]
		if !d.Cultivation.Ready() {
			continue
		}
		if !d.Cultivation.Level.RequiresTribulation() {
			s.advance(d, EventBreakthrough, r)
			continue
		}
		if !s.cfg.AutoTribulation {
			if !s.candidates[id] {
				s.candidates[id] = true
				r.add(Event{Type: EventTribulationReady, DiscipleID: id})
			}
			continue
		}
		s.tribulation(d, r)
	}
}

func (s *Sect) advance(d *disciple.Disciple, kind EventType, r *recorder) {
	from := d.Cultivation.Level
	next, _ := from.Next()
	d.Advance(s.catalog.Needed(next))
	delete(s.candidates, d.ID)
	r.add(Event{Type: kind, DiscipleID: d.ID, Detail: d.Cultivation.Level.String()})
	s.log.WithFields(logrus.Fields{"disciple_id": d.ID, "from": from.String(), "to": d.Cultivation.Level.String()}).Info("disciple advanced")
}

// tribulation rolls a gated breakthrough. Failure is fatal.
func (s *Sect) tribulation(d *disciple.Disciple, r *recorder) outcome.Tribulation {
	rate := outcome.TribulationRate(d.DaoHeart, s.modifiersFor(d))
	result := outcome.RollTribulation(s.rng, rate)
	if result.Passed {
		s.advance(d, EventTribulationPassed, r)
		return result
	}
	r.add(Event{Type: EventTribulationFailed, DiscipleID: d.ID, Amount: rate})
	s.kill(d, "failed tribulation", r)
	return result
}

// TribulationCandidates lists disciples waiting to attempt a tribulation.
func (s *Sect) TribulationCandidates() []string {
	var ids []string
	for _, id := range s.discipleIDs() {
		if s.candidates[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// TribulationRate returns the disciple's effective tribulation chance.
func (s *Sect) TribulationRate(discipleID string) (float64, error) {
	d, err := s.disciple(discipleID)
	if err != nil {
		return 0, err
	}
	return outcome.TribulationRate(d.DaoHeart, s.modifiersFor(d)), nil
}

// AttemptTribulation rolls the tribulation of a ready disciple on demand.
func (s *Sect) AttemptTribulation(discipleID string) (outcome.Tribulation, []Event, error) {
	if err := s.mutable(); err != nil {
		return outcome.Tribulation{}, nil, err
	}
	d, err := s.disciple(discipleID)
	if err != nil {
		return outcome.Tribulation{}, nil, err
	}
	if !d.Cultivation.Ready() || !d.Cultivation.Level.RequiresTribulation() {
		return outcome.Tribulation{}, nil, failed(ErrNotReady, map[string]string{"disciple_id": d.ID}, nil)
	}
	r := &recorder{turn: s.turn}
	result := s.tribulation(d, r)
	s.checkGameState(r)
	return result, r.events, nil
}

func (s *Sect) leaveHeritage(d *disciple.Disciple, bonus float64) Heritage {
	s.nextHeritage++
	h := Heritage{ID: fmt.Sprintf("heritage-%04d", s.nextHeritage), Origin: d.ID, Bonus: bonus}
	s.heritages[h.ID] = h
	return h
}

// Heritages lists unclaimed heritages by id.
func (s *Sect) Heritages() []Heritage {
	out := make([]Heritage, 0, len(s.heritages))
	for _, h := range s.heritages {
		out = append(out, h)
	}
	sortBy(out, func(h Heritage) string { return h.ID })
	return out
}

// Inherit consumes a heritage, granting the disciple a permanent tribulation
// bonus.
func (s *Sect) Inherit(discipleID, heritageID string) (modifier.Modifier, error) {
	if err := s.mutable(); err != nil {
		return modifier.Modifier{}, err
	}
	d, err := s.disciple(discipleID)
	if err != nil {
		return modifier.Modifier{}, err
	}
	h, ok := s.heritages[heritageID]
	if !ok {
		return modifier.Modifier{}, notFound(ErrHeritageNotFound, "heritage_id", heritageID)
	}
	delete(s.heritages, heritageID)
	m := modifier.New("Heritage of "+h.Origin, modifier.For(modifier.TargetTribulationSuccessRate),
		modifier.Application{Kind: modifier.Additive, Value: h.Bonus}, modifier.SourceHeritage)
	return d.Modifiers.Add(m), nil
}
