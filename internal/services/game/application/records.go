package application

import (
	"sort"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/condition"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/outcome"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
)

// Record is a transport-neutral document. Values are limited to nil, bool,
// int, float64, string, []any and Record so that structpb, JSON and Lua
// encoders all accept them.
type Record = map[string]any

// SessionRecord maps a whole sect view.
func SessionRecord(v sect.View) Record {
	pills := Record{}
	for k, n := range v.Pills {
		pills[string(k)] = n
	}
	return Record{
		"session_id":   v.ID,
		"name":         v.Name,
		"turn":         v.Turn,
		"phase":        string(v.Phase),
		"state":        string(v.State),
		"resources":    v.Resources,
		"reputation":   v.Reputation,
		"income":       v.Income,
		"disciples":    list(v.Disciples, DiscipleRecord),
		"tasks":        list(v.Tasks, TaskRecord),
		"buildings":    list(v.Buildings, BuildingRecord),
		"heritages":    list(v.Heritages, HeritageRecord),
		"pills":        pills,
		"sites":        list(v.Sites, SiteRecord),
		"candidates":   stringList(v.Candidates),
		"conditionals": list(v.Conditional, ConditionalRecord),
	}
}

// DiscipleRecord maps a disciple.
func DiscipleRecord(d disciple.View) Record {
	talents := make([]any, 0, len(d.Talents))
	for _, t := range d.Talents {
		talents = append(talents, Record{"type": string(t.Type), "level": t.Level})
	}
	kinds := make([]string, 0, len(d.Cultivation.Requirements))
	for k := range d.Cultivation.Requirements {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	reqs := Record{}
	for _, k := range kinds {
		c := d.Cultivation.Requirements[task.Kind(k)]
		reqs[k] = Record{"needed": c.Needed, "done": c.Done}
	}
	return Record{
		"id":           d.ID,
		"name":         d.Name,
		"kind":         string(d.Kind),
		"talents":      talents,
		"energy":       d.Energy,
		"constitution": d.Constitution,
		"dao_heart":    d.DaoHeart,
		"age":          d.Age,
		"lifespan":     d.Lifespan,
		"tier":         d.Cultivation.Level.String(),
		"sub_tier":     string(d.SubTier),
		"progress":     d.Cultivation.Progress,
		"requirements": reqs,
		"modifiers":    list(d.Modifiers, ModifierRecord),
		"current_task": d.CurrentTask,
		"position":     Record{"x": d.Position.X, "y": d.Position.Y},
		"movement":     d.Movement,
	}
}

// TaskRecord maps a task.
func TaskRecord(t task.View) Record {
	participants := make([]any, 0, len(t.Participants))
	for _, p := range t.Participants {
		participants = append(participants, p.DiscipleID)
	}
	return Record{
		"id":                t.ID,
		"name":              t.Name,
		"kind":              string(t.Kind),
		"site_id":           t.SiteID,
		"defends":           t.Defends,
		"state":             string(t.State),
		"enemy_level":       t.EnemyLevel,
		"danger_level":      t.DangerLevel,
		"skill":             string(t.Skill),
		"duration":          t.Duration,
		"progress":          t.Progress,
		"energy_cost":       t.EnergyCost,
		"constitution_cost": t.ConstitutionCost,
		"created_turn":      t.CreatedTurn,
		"expiry_turns":      t.ExpiryTurns,
		"max_participants":  t.MaxParticipants,
		"participants":      participants,
		"rewards": Record{
			"progress":   t.Rewards.Progress,
			"resources":  t.Rewards.Resources,
			"reputation": t.Rewards.Reputation,
			"dao_heart":  t.Rewards.DaoHeart,
		},
	}
}

// BuildingRecord maps a building with its cost.
func BuildingRecord(b sect.BuildingView) Record {
	return Record{
		"id":        b.ID,
		"name":      b.Name,
		"parent":    b.Parent,
		"base_cost": b.BaseCost,
		"cost":      b.Cost,
		"built":     b.Built,
		"can_build": b.CanBuild,
		"grants":    list(b.Grants, ConditionalRecord),
	}
}

// HeritageRecord maps a heritage.
func HeritageRecord(h sect.Heritage) Record {
	return Record{"id": h.ID, "origin": h.Origin, "bonus": h.Bonus}
}

// SiteRecord maps a catalog site.
func SiteRecord(s catalog.Site) Record {
	return Record{
		"id":         s.ID,
		"name":       s.Name,
		"kind":       string(s.Kind),
		"position":   Record{"x": s.Position.X, "y": s.Position.Y},
		"prosperity": s.Prosperity,
		"danger":     s.Danger,
		"level":      s.Level,
		"invading":   s.Invading,
	}
}

// ModifierRecord maps a modifier.
func ModifierRecord(m modifier.Modifier) Record {
	r := Record{
		"id":          m.ID,
		"name":        m.Name,
		"target":      m.Target.String(),
		"application": string(m.Application.Kind),
		"value":       m.Application.Value,
		"source":      string(m.Source),
		"priority":    m.Priority,
	}
	if m.Duration != nil {
		r["duration"] = *m.Duration
	}
	return r
}

// ConditionalRecord maps a conditional modifier.
func ConditionalRecord(c condition.Modifier) Record {
	r := ModifierRecord(c.Modifier)
	when := "always"
	if c.When != nil {
		when = c.When.String()
	}
	r["when"] = when
	return r
}

// EventRecord maps a turn event.
func EventRecord(e sect.Event) Record {
	return Record{
		"type":        string(e.Type),
		"turn":        e.Turn,
		"disciple_id": e.DiscipleID,
		"task_id":     e.TaskID,
		"site_id":     e.SiteID,
		"amount":      e.Amount,
		"detail":      e.Detail,
	}
}

// OutcomeRecord maps a participant outcome.
func OutcomeRecord(o sect.Outcome) Record {
	return Record{
		"task_id":     o.TaskID,
		"disciple_id": o.DiscipleID,
		"kind":        string(o.Kind),
		"verdict":     string(o.Verdict),
		"chance":      o.Chance,
		"progress":    o.Progress,
		"resources":   o.Resources,
		"reputation":  o.Reputation,
		"dao_heart":   o.DaoHeart,
	}
}

// TurnStartRecord maps a StartTurn report.
func TurnStartRecord(s sect.TurnStart) Record {
	return Record{
		"turn":   s.Turn,
		"state":  string(s.State),
		"events": list(s.Events, EventRecord),
	}
}

// ResolutionRecord maps a ResolveTurn report.
func ResolutionRecord(r sect.Resolution) Record {
	return Record{
		"turn":     r.Turn,
		"state":    string(r.State),
		"expired":  stringList(r.Expired),
		"outcomes": list(r.Outcomes, OutcomeRecord),
		"events":   list(r.Events, EventRecord),
	}
}

// AssignmentRecord maps an automatic assignment.
func AssignmentRecord(a sect.Assignment) Record {
	return Record{"task_id": a.TaskID, "disciple_id": a.DiscipleID}
}

// BuildRecord maps a build result.
func BuildRecord(b sect.BuildResult) Record {
	return Record{
		"building_id": b.BuildingID,
		"cost":        b.Cost,
		"grants":      list(b.Grants, ConditionalRecord),
	}
}

// TribulationRecord maps a tribulation attempt.
func TribulationRecord(t outcome.Tribulation, events []sect.Event) Record {
	return Record{
		"passed": t.Passed,
		"rate":   t.Rate,
		"events": list(events, EventRecord),
	}
}

// StatisticsRecord maps sect statistics.
func StatisticsRecord(s sect.Statistics) Record {
	byKind := Record{}
	for k, n := range s.ByKind {
		byKind[string(k)] = n
	}
	byTier := Record{}
	for l, n := range s.ByTier {
		byTier[l.String()] = n
	}
	return Record{
		"turn":         s.Turn,
		"state":        string(s.State),
		"resources":    s.Resources,
		"reputation":   s.Reputation,
		"alive":        s.Alive,
		"by_kind":      byKind,
		"by_tier":      byTier,
		"heritages":    s.Heritages,
		"built":        s.Built,
		"live_tasks":   s.LiveTasks,
		"recruited":    s.Recruited,
		"deaths":       s.Deaths,
		"completed":    s.Completed,
		"expired":      s.Expired,
		"failed_tasks": s.FailedTasks,
	}
}

// JournalRecord maps a journaled outcome row.
func JournalRecord(o storage.OutcomeRecord) Record {
	return Record{
		"turn":        o.Turn,
		"task_id":     o.TaskID,
		"disciple_id": o.DiscipleID,
		"kind":        o.Kind,
		"verdict":     o.Verdict,
		"chance":      o.Chance,
		"progress":    o.Progress,
		"resources":   o.Resources,
		"reputation":  o.Reputation,
		"dao_heart":   o.DaoHeart,
	}
}

// DisciplePageRecord maps a disciple listing page.
func DisciplePageRecord(p DisciplePage) Record {
	return Record{
		"disciples":       list(p.Disciples, DiscipleRecord),
		"next_page_token": p.NextPageToken,
		"total_size":      p.TotalSize,
	}
}

func list[T any](items []T, record func(T) Record) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, record(item))
	}
	return out
}

func stringList(items []string) []any {
	out := make([]any, 0, len(items))
	for _, s := range items {
		out = append(out, s)
	}
	return out
}
