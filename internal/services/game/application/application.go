// Package application runs sect operations against live sessions for every
// transport. It resolves sessions, journals turn phases and applies list
// filtering and paging, so the gRPC, MCP and scenario front ends stay thin.
package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/modifier"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/outcome"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/pill"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/session"
	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
)

// Application is the shared operation surface.
type Application struct {
	sessions *session.Registry
	journal  storage.JournalStore
	clock    func() time.Time
	log      *logrus.Entry
}

// New returns an Application over sessions. journal may be nil.
func New(sessions *session.Registry, journal storage.JournalStore, log *logrus.Entry) *Application {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Application{
		sessions: sessions,
		journal:  journal,
		clock:    time.Now,
		log:      log,
	}
}

// CreateSessionInput describes a new session.
type CreateSessionInput struct {
	Name string
	Seed int64
}

// CreateSession founds a sect and returns its first view.
func (a *Application) CreateSession(ctx context.Context, in CreateSessionInput) (sect.View, error) {
	sid, err := a.sessions.Create(session.CreateOptions{Name: strings.TrimSpace(in.Name), Seed: in.Seed})
	if err != nil {
		return sect.View{}, err
	}
	return a.GetSession(ctx, sid)
}

// DeleteSession drops a session.
func (a *Application) DeleteSession(_ context.Context, sid string) error {
	return a.sessions.Delete(sid)
}

// GetSession projects a session.
func (a *Application) GetSession(_ context.Context, sid string) (sect.View, error) {
	var v sect.View
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		v = s.View()
		return nil
	})
	return v, err
}

// Statistics summarizes a session.
func (a *Application) Statistics(_ context.Context, sid string) (sect.Statistics, error) {
	var st sect.Statistics
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		st = s.Statistics()
		return nil
	})
	return st, err
}

// StartTurn opens the planning phase and journals the report.
func (a *Application) StartTurn(ctx context.Context, sid string) (sect.TurnStart, error) {
	var start sect.TurnStart
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		start, err = s.StartTurn(ctx)
		return err
	})
	if err != nil {
		return sect.TurnStart{}, err
	}
	if a.journal != nil {
		rec, err := storage.StartRecord(sid, start, a.clock())
		if err == nil {
			err = a.journal.AppendTurn(ctx, rec, nil)
		}
		a.journalFailed(sid, start.Turn, err)
	}
	return start, nil
}

// ResolveTurn resolves the turn and journals the resolution.
func (a *Application) ResolveTurn(ctx context.Context, sid string) (sect.Resolution, error) {
	var res sect.Resolution
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		res, err = s.ResolveTurn(ctx)
		return err
	})
	if err != nil {
		return sect.Resolution{}, err
	}
	if a.journal != nil {
		rec, outcomes, err := storage.ResolveRecord(sid, res, a.clock())
		if err == nil {
			err = a.journal.AppendTurn(ctx, rec, outcomes)
		}
		a.journalFailed(sid, res.Turn, err)
	}
	return res, nil
}

// The turn already happened, so a journal failure is logged, not returned.
func (a *Application) journalFailed(sid string, turn int, err error) {
	if err == nil {
		return
	}
	a.log.WithFields(logrus.Fields{
		"session_id": sid,
		"turn":       turn,
	}).WithError(err).Warn("journal append failed")
}

// History returns journaled outcomes after afterTurn.
func (a *Application) History(ctx context.Context, sid string, afterTurn int) ([]storage.OutcomeRecord, error) {
	if _, err := a.sessions.Get(sid); err != nil {
		return nil, err
	}
	if a.journal == nil {
		return nil, nil
	}
	return a.journal.ListOutcomes(ctx, sid, afterTurn)
}

// Assign puts a disciple on a task and returns the disciple.
func (a *Application) Assign(_ context.Context, sid, taskID, discipleID string) (disciple.View, error) {
	var d disciple.View
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		if err := s.Assign(taskID, discipleID); err != nil {
			return err
		}
		var err error
		d, err = s.Disciple(discipleID)
		return err
	})
	return d, err
}

// Unassign removes a disciple from a task.
func (a *Application) Unassign(_ context.Context, sid, taskID, discipleID string) error {
	return a.sessions.Do(sid, func(s *sect.Sect) error {
		return s.Unassign(taskID, discipleID)
	})
}

// AutoAssign staffs open tasks with idle disciples.
func (a *Application) AutoAssign(_ context.Context, sid string) ([]sect.Assignment, error) {
	var out []sect.Assignment
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		out, err = s.AutoAssign()
		return err
	})
	return out, err
}

// Build raises a building.
func (a *Application) Build(_ context.Context, sid, buildingID string) (sect.BuildResult, error) {
	var res sect.BuildResult
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		res, err = s.Build(buildingID)
		return err
	})
	return res, err
}

// UsePill feeds a pill named kind to a disciple.
func (a *Application) UsePill(_ context.Context, sid, discipleID, kind string) (disciple.View, error) {
	k, err := parsePill(kind)
	if err != nil {
		return disciple.View{}, err
	}
	var d disciple.View
	err = a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		d, err = s.UsePill(discipleID, k)
		return err
	})
	return d, err
}

// CraftPill crafts quantity pills and returns the resources spent.
func (a *Application) CraftPill(_ context.Context, sid, kind string, quantity int) (int, error) {
	k, err := parsePill(kind)
	if err != nil {
		return 0, err
	}
	var cost int
	err = a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		cost, err = s.CraftPill(k, quantity)
		return err
	})
	return cost, err
}

func parsePill(kind string) (pill.Kind, error) {
	k, err := pill.Parse(kind)
	if err != nil {
		return "", apperrors.WrapWithMetadata(apperrors.CodeUnknownPill, "unknown pill", map[string]string{"pill": kind}, err)
	}
	return k, nil
}

// Inherit consumes a heritage for a disciple.
func (a *Application) Inherit(_ context.Context, sid, discipleID, heritageID string) (modifier.Modifier, error) {
	var m modifier.Modifier
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		m, err = s.Inherit(discipleID, heritageID)
		return err
	})
	return m, err
}

// AttemptTribulation rolls a waiting candidate's tribulation.
func (a *Application) AttemptTribulation(_ context.Context, sid, discipleID string) (outcome.Tribulation, []sect.Event, error) {
	var (
		trib   outcome.Tribulation
		events []sect.Event
	)
	err := a.sessions.Do(sid, func(s *sect.Sect) error {
		var err error
		trib, events, err = s.AttemptTribulation(discipleID)
		return err
	})
	return trib, events, err
}
