package sect

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/cultivation"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/outcome"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

// StartTurn runs the opening phase and enters planning.
func (s *Sect) StartTurn(ctx context.Context) (TurnStart, error) {
	if err := s.mutable(); err != nil {
		return TurnStart{}, err
	}
	if s.phase != PhaseIdle {
		return TurnStart{}, ErrTurnPhase
	}
	_, span := s.tracer.Start(ctx, "sect.StartTurn", trace.WithAttributes(
		attribute.String("sect.id", s.ID),
		attribute.Int("sect.turn", s.turn),
	))
	defer span.End()

	r := &recorder{turn: s.turn}
	s.age(r)
	s.collectIncome(r)
	if s.cfg.AutoRecruit {
		s.tryRecruit(r)
	}
	s.recoverIdle(r)
	s.breakthroughs(r)
	s.moveMonsters(r)
	s.growMonsters(r)
	s.spawnMonster(r)
	s.spawnTasks(r)
	s.checkGameState(r)

	s.phase = PhasePlanning
	span.SetAttributes(attribute.Int("sect.events", len(r.events)))
	s.log.WithFields(logrus.Fields{
		"turn":      s.turn,
		"events":    len(r.events),
		"resources": s.resources,
		"disciples": len(s.disciples),
	}).Info("turn started")
	return TurnStart{Turn: s.turn, Events: r.events, State: s.state}, nil
}

// ResolveTurn runs the closing phase and returns to idle on the next turn.
func (s *Sect) ResolveTurn(ctx context.Context) (Resolution, error) {
	if err := s.mutable(); err != nil {
		return Resolution{}, err
	}
	if s.phase != PhasePlanning {
		return Resolution{}, ErrTurnPhase
	}
	_, span := s.tracer.Start(ctx, "sect.ResolveTurn", trace.WithAttributes(
		attribute.String("sect.id", s.ID),
		attribute.Int("sect.turn", s.turn+1),
	))
	defer span.End()

	s.turn++
	r := &recorder{turn: s.turn}
	res := Resolution{Turn: s.turn}

	res.Expired = s.expireTasks(r)
	completed := s.accrueTasks()
	for _, t := range completed {
		res.Outcomes = append(res.Outcomes, s.resolveTask(t, r)...)
	}
	s.tickModifiers(r)
	s.checkGameState(r)

	s.phase = PhaseIdle
	res.Events = r.events
	res.State = s.state
	span.SetAttributes(
		attribute.Int("sect.outcomes", len(res.Outcomes)),
		attribute.Int("sect.expired", len(res.Expired)),
	)
	s.log.WithFields(logrus.Fields{
		"turn":     s.turn,
		"outcomes": len(res.Outcomes),
		"expired":  len(res.Expired),
		"state":    s.state,
	}).Info("turn resolved")
	return res, nil
}

type recorder struct {
	turn   int
	events []Event
}

func (r *recorder) add(e Event) {
	e.Turn = r.turn
	r.events = append(r.events, e)
}

// expireTasks closes every live task whose window has passed, releasing its
// participants. It runs before accrual so a task reaching both thresholds on
// the same turn expires.
func (s *Sect) expireTasks(r *recorder) []string {
	var expired []string
	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		if t.Finished() || !t.Due(s.turn) {
			continue
		}
		for _, did := range t.Expire() {
			if d, ok := s.disciples[did]; ok && d.CurrentTask == id {
				d.CurrentTask = ""
			}
		}
		delete(s.tasks, id)
		s.tally.expired++
		expired = append(expired, id)
		r.add(Event{Type: EventTaskExpired, TaskID: id})
	}
	return expired
}

// accrueTasks advances every staffed task by one turn and charges each
// participant's per-turn cost. It returns the tasks that completed, by id.
func (s *Sect) accrueTasks() []*task.Task {
	var completed []*task.Task
	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		if t.Finished() || len(t.Participants) == 0 {
			continue
		}
		done := t.Accrue(s.turn)
		for _, did := range t.ParticipantIDs() {
			d, ok := s.disciples[did]
			if !ok {
				continue
			}
			energy := s.effective(d, modifier.For(modifier.TargetEnergyConsumption), float64(t.EnergyCost))
			constitution := s.effective(d, modifier.For(modifier.TargetConstitutionConsumption), float64(t.ConstitutionCost))
			d.AdjustEnergy(-max(0, energy))
			d.AdjustConstitution(-max(0, constitution))
		}
		if done {
			completed = append(completed, t)
		}
	}
	return completed
}

// resolveTask rolls each participant of a completed task in disciple id
// order, pays rewards, releases the participants and removes the task.
func (s *Sect) resolveTask(t *task.Task, r *recorder) []Outcome {
	ids := t.ParticipantIDs()
	sort.Strings(ids)

	var (
		outcomes []Outcome
		paid     bool
	)
	for _, did := range ids {
		d, ok := s.disciples[did]
		if !ok {
			continue
		}
		o := Outcome{TaskID: t.ID, DiscipleID: did, Kind: t.Kind}
		mods := s.modifiersFor(d)

		if t.Kind == task.KindCombat {
			power := modifier.ResolveFor(float64(d.Cultivation.Level), mods, modifier.For(modifier.TargetCombatPower))
			enemy := modifier.ResolveFor(float64(t.EnemyLevel), mods, modifier.For(modifier.TargetTaskDifficulty))
			c := outcome.ResolveCombat(s.rng, s.cfg.Combat, power, enemy)
			o.Verdict, o.Chance = c.Verdict, c.SuccessChance
		} else {
			o.Chance = s.cfg.TaskSuccessRate
			o.Verdict = outcome.ResolveTask(s.rng, o.Chance)
		}

		switch o.Verdict {
		case outcome.VerdictSuccess:
			bonusTalent, _ := task.RewardTalent(t.Kind)
			gain := outcome.ProgressReward(t.Rewards.Progress, bonusTalent, d.TalentLevel(bonusTalent), mods)
			o.Progress = d.Cultivation.Gain(gain)
			d.Cultivation.Record(t.Kind)
			d.AdjustDaoHeart(float64(t.Rewards.DaoHeart))
			o.DaoHeart = t.Rewards.DaoHeart
			if !paid {
				o.Resources = outcome.ResourceReward(t.Rewards.Resources, mods)
				o.Reputation = t.Rewards.Reputation
				s.resources += o.Resources
				s.reputation += o.Reputation
				paid = true
				if t.Kind == task.KindCombat {
					s.slayMonster(t.SiteID, r)
				}
			}
		case outcome.VerdictFailure:
			s.tally.failed++
		}
		d.CurrentTask = ""
		outcomes = append(outcomes, o)

		r.add(Event{Type: EventTaskCompleted, TaskID: t.ID, DiscipleID: did, Detail: string(o.Verdict), Amount: float64(o.Progress)})
		if o.Verdict == outcome.VerdictDeath {
			s.kill(d, "fell in combat", r)
		}
	}
	delete(s.tasks, t.ID)
	s.tally.completed++
	return outcomes
}

func (s *Sect) tickModifiers(r *recorder) {
	for _, id := range s.discipleIDs() {
		if n := s.disciples[id].Modifiers.Tick(); n > 0 {
			r.add(Event{Type: EventModifiersExpired, DiscipleID: id, Amount: float64(n)})
		}
	}
}

// kill removes d from the roster, releasing its task and leaving a heritage
// when its tier warrants one.
func (s *Sect) kill(d *disciple.Disciple, cause string, r *recorder) {
	if d.CurrentTask != "" {
		if t, ok := s.tasks[d.CurrentTask]; ok && !t.Finished() {
			_ = t.Detach(d.ID)
		}
		d.CurrentTask = ""
	}
	delete(s.disciples, d.ID)
	delete(s.candidates, d.ID)
	s.tally.deaths++
	r.add(Event{Type: EventDied, DiscipleID: d.ID, Detail: cause})
	s.log.WithFields(logrus.Fields{"disciple_id": d.ID, "tier": d.Cultivation.Level.String(), "cause": cause}).Info("disciple died")

	if bonus, ok := d.Cultivation.Level.HeritageBonus(); ok {
		h := s.leaveHeritage(d, bonus)
		r.add(Event{Type: EventHeritageLeft, DiscipleID: d.ID, Detail: h.ID, Amount: bonus})
	}
}

func (s *Sect) checkGameState(r *recorder) {
	if s.state != StatePlaying {
		return
	}
	for _, d := range s.disciples {
		if d.Cultivation.Level == cultivation.Ascension {
			s.state = StateVictory
			break
		}
	}
	if s.state == StatePlaying && len(s.disciples) == 0 {
		s.state = StateDefeat
	}
	if s.state == StatePlaying && s.demonAppeared() {
		s.state = StateDefeat
	}
	if s.state != StatePlaying {
		r.add(Event{Type: EventGameOver, Detail: string(s.state)})
		s.log.WithFields(logrus.Fields{"turn": s.turn, "state": s.state}).Warn("game over")
	}
}
