package sect

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/world"
)

// spawnTasks offers, per site and kind, one template drawn from those whose
// predicate holds this turn. A site keeps at most one open task per kind, so
// a pair whose last offer is still live is skipped.
func (s *Sect) spawnTasks(r *recorder) {
	open := s.openOffers()
	for _, site := range s.sites {
		env := catalog.Env{
			Turn:       s.turn,
			Reputation: s.reputation,
			Resources:  s.resources,
			Disciples:  len(s.disciples),
			Built:      s.tree.BuiltCount(),
			Site:       site.ID,
			Prosperity: site.Prosperity,
			Level:      site.Level,
		}
		byKind := make(map[task.Kind][]catalog.Template)
		for _, tmpl := range site.Templates {
			if open[offer{site: site.ID, kind: tmpl.Kind}] {
				continue
			}
			ok, err := tmpl.Available(env)
			if err != nil {
				s.log.WithError(err).WithField("site_id", site.ID).Warn("template predicate failed")
				continue
			}
			if ok {
				byKind[tmpl.Kind] = append(byKind[tmpl.Kind], tmpl)
			}
		}
		for _, kind := range task.Kinds {
			options := byKind[kind]
			if len(options) == 0 {
				continue
			}
			tmpl := options[0]
			if len(options) > 1 {
				tmpl = options[s.rng.Intn(len(options))]
			}
			t, err := task.New(tmpl.Params(s.newTaskID(), site, s.turn))
			if err != nil {
				s.log.WithError(err).WithField("site_id", site.ID).Warn("template rejected")
				continue
			}
			s.tasks[t.ID] = t
			r.add(Event{Type: EventTaskSpawned, TaskID: t.ID, SiteID: site.ID, Detail: t.Name})
		}
	}
	s.spawnDefenses(r)
}

type offer struct {
	site string
	kind task.Kind
}

// openOffers lists the (site, kind) pairs holding a live template task.
// Defense tasks are not template offers.
func (s *Sect) openOffers() map[offer]bool {
	open := make(map[offer]bool, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Finished() && t.Defends == "" {
			open[offer{site: t.SiteID, kind: t.Kind}] = true
		}
	}
	return open
}

// spawnDefenses raises one combat task per invasion, placed at the invaded
// site. The reward scales with the invader's level.
func (s *Sect) spawnDefenses(r *recorder) {
	for _, m := range s.sites {
		if m.Kind != catalog.SiteMonster || m.Invading == "" || s.defended(m.ID) {
			continue
		}
		target, ok := s.site(m.Invading)
		if !ok {
			continue
		}
		t, err := task.New(task.Params{
			ID:             s.newTaskID(),
			Name:           "Defend " + target.Name,
			Kind:           task.KindCombat,
			SiteID:         m.ID,
			Defends:        target.ID,
			EnemyLevel:     m.Level,
			Rewards:        task.Rewards{Progress: m.Level * 10, Resources: m.Level * 20},
			CreatedTurn:    s.turn,
			ValidPositions: []world.Position{target.Position},
		})
		if err != nil {
			s.log.WithError(err).WithField("site_id", m.ID).Warn("defense rejected")
			continue
		}
		s.tasks[t.ID] = t
		r.add(Event{Type: EventTaskSpawned, TaskID: t.ID, SiteID: m.ID, Detail: t.Name})
	}
}

func (s *Sect) defended(monsterID string) bool {
	for _, t := range s.tasks {
		if t.SiteID == monsterID && t.Defends != "" && !t.Finished() {
			return true
		}
	}
	return false
}

// engaged reports whether a disciple is fighting the monster, either hunting
// it at its lair or holding a site against it.
func (s *Sect) engaged(monsterID string) bool {
	for _, t := range s.tasks {
		if t.SiteID == monsterID && !t.Finished() && len(t.Participants) > 0 {
			return true
		}
	}
	return false
}

// moveMonsters lets every idle monster either step to an adjacent cell or
// train. A monster landing on a village or faction invades it; stepping off
// ends the invasion. Engaged monsters hold still.
func (s *Sect) moveMonsters(r *recorder) {
	rules := s.catalog.Monsters
	if rules.MoveChance <= 0 && rules.TrainChance <= 0 {
		return
	}
	for i := range s.sites {
		m := &s.sites[i]
		if m.Kind != catalog.SiteMonster || s.engaged(m.ID) {
			continue
		}
		if s.rng.Float64() < rules.MoveChance {
			step := world.Steps[s.rng.Intn(len(world.Steps))]
			m.Position = s.catalog.Bounds.Clamp(m.Position.Add(step))
			r.add(Event{Type: EventMonsterMoved, SiteID: m.ID, Detail: fmt.Sprintf("%d,%d", m.Position.X, m.Position.Y)})
			s.invade(m, r)
			continue
		}
		if s.rng.Float64() < rules.TrainChance {
			s.levelUp(m, "trained", r)
		}
	}
}

func (s *Sect) invade(m *catalog.Site, r *recorder) {
	target := ""
	for _, site := range s.sites {
		if site.ID != m.ID && site.Invadable() && site.Position == m.Position {
			target = site.ID
			break
		}
	}
	if target == m.Invading {
		return
	}
	m.Invading = target
	if target != "" {
		r.add(Event{Type: EventMonsterInvaded, SiteID: m.ID, Detail: target})
		s.log.WithFields(logrus.Fields{"site_id": m.ID, "invaded": target, "level": m.Level}).Info("monster invaded")
	}
}

// growMonsters levels monster sites by their growth rate.
func (s *Sect) growMonsters(r *recorder) {
	for i := range s.sites {
		site := &s.sites[i]
		if site.Kind != catalog.SiteMonster || site.GrowthRate <= 0 {
			continue
		}
		if s.rng.Float64() < site.GrowthRate {
			s.levelUp(site, "grew", r)
		}
	}
}

func (s *Sect) levelUp(site *catalog.Site, how string, r *recorder) {
	site.Level++
	r.add(Event{Type: EventMonsterGrew, SiteID: site.ID, Amount: float64(site.Level), Detail: how})
	if s.isDemon(*site) {
		r.add(Event{Type: EventDemonAppeared, SiteID: site.ID})
	}
}

// spawnMonster places a new monster from the catalog spawn rule.
func (s *Sect) spawnMonster(r *recorder) {
	rule := s.catalog.Monsters.Spawn
	if !rule.Enabled() || s.rng.Float64() >= rule.Chance {
		return
	}
	name := rule.Names[s.rng.Intn(len(rule.Names))]
	level := rule.MinLevel + s.rng.Intn(rule.MaxLevel-rule.MinLevel+1)
	b := s.catalog.Bounds
	pos := world.Position{
		X: b.Min.X + s.rng.Intn(b.Max.X-b.Min.X+1),
		Y: b.Min.Y + s.rng.Intn(b.Max.Y-b.Min.Y+1),
	}
	s.nextMonster++
	site := catalog.Site{
		ID:         fmt.Sprintf("monster-%04d", s.nextMonster),
		Name:       name,
		Kind:       catalog.SiteMonster,
		Position:   pos,
		Level:      level,
		GrowthRate: rule.GrowthRate,
		Templates:  rule.Templates,
	}
	s.sites = append(s.sites, site)
	r.add(Event{Type: EventMonsterSpawned, SiteID: site.ID, Amount: float64(level), Detail: name})
	s.log.WithFields(logrus.Fields{"site_id": site.ID, "name": name, "level": level}).Info("monster spawned")
}

func (s *Sect) isDemon(site catalog.Site) bool {
	return site.Kind == catalog.SiteMonster && s.catalog.DemonLevel > 0 && site.Level >= s.catalog.DemonLevel
}

func (s *Sect) demonAppeared() bool {
	for _, site := range s.sites {
		if s.isDemon(site) {
			return true
		}
	}
	return false
}

// slayMonster removes a monster site after a successful hunt or defense.
func (s *Sect) slayMonster(siteID string, r *recorder) {
	for i, site := range s.sites {
		if site.ID == siteID && site.Kind == catalog.SiteMonster {
			s.sites = append(s.sites[:i], s.sites[i+1:]...)
			r.add(Event{Type: EventMonsterSlain, SiteID: siteID})
			return
		}
	}
}

func (s *Sect) site(id string) (catalog.Site, bool) {
	for _, site := range s.sites {
		if site.ID == id {
			return site, true
		}
	}
	return catalog.Site{}, false
}

// Sites returns the current map sites.
func (s *Sect) Sites() []catalog.Site {
	return append([]catalog.Site(nil), s.sites...)
}
