package application

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
	"github.com/louisbranch/sect.ascension/internal/services/game/session"
	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
)

type fakeJournal struct {
	turns    []storage.TurnRecord
	outcomes []storage.OutcomeRecord
	err      error
}

func (j *fakeJournal) AppendTurn(_ context.Context, rec storage.TurnRecord, outcomes []storage.OutcomeRecord) error {
	if j.err != nil {
		return j.err
	}
	j.turns = append(j.turns, rec)
	j.outcomes = append(j.outcomes, outcomes...)
	return nil
}

func (j *fakeJournal) ListTurns(context.Context, string) ([]storage.TurnRecord, error) {
	return j.turns, nil
}

func (j *fakeJournal) ListOutcomes(_ context.Context, _ string, after int) ([]storage.OutcomeRecord, error) {
	var out []storage.OutcomeRecord
	for _, o := range j.outcomes {
		if o.Turn > after {
			out = append(out, o)
		}
	}
	return out, nil
}

func newApp(t *testing.T, journal storage.JournalStore) (*Application, *test.Hook) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	logger, hook := test.NewNullLogger()
	cfg := sect.DefaultConfig()
	cfg.Seed = 11
	reg := session.NewRegistry(cat, cfg, logrus.NewEntry(logger))
	return New(reg, journal, logrus.NewEntry(logger)), hook
}

func TestTurnsAreJournaled(t *testing.T) {
	journal := &fakeJournal{}
	app, _ := newApp(t, journal)
	ctx := context.Background()

	v, err := app.CreateSession(ctx, CreateSessionInput{Name: "Jade Peak"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := app.StartTurn(ctx, v.ID); err != nil {
		t.Fatalf("start turn: %v", err)
	}
	if _, err := app.AutoAssign(ctx, v.ID); err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	res, err := app.ResolveTurn(ctx, v.ID)
	if err != nil {
		t.Fatalf("resolve turn: %v", err)
	}

	if len(journal.turns) != 2 {
		t.Fatalf("journaled turns = %d, want 2", len(journal.turns))
	}
	if journal.turns[0].Stage != storage.StageStart || journal.turns[1].Stage != storage.StageResolve {
		t.Fatalf("stages = %s, %s", journal.turns[0].Stage, journal.turns[1].Stage)
	}
	if len(journal.outcomes) != len(res.Outcomes) {
		t.Fatalf("journaled outcomes = %d, want %d", len(journal.outcomes), len(res.Outcomes))
	}
	history, err := app.History(ctx, v.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != len(res.Outcomes) {
		t.Fatalf("history = %d, want %d", len(history), len(res.Outcomes))
	}
}

func TestJournalFailureIsLogged(t *testing.T) {
	journal := &fakeJournal{err: errors.New("disk full")}
	app, hook := newApp(t, journal)
	ctx := context.Background()

	v, err := app.CreateSession(ctx, CreateSessionInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := app.StartTurn(ctx, v.ID); err != nil {
		t.Fatalf("start turn = %v, want nil", err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("last log = %v, want warning", entry)
	}
	if entry.Data["session_id"] != v.ID {
		t.Fatalf("session_id = %v, want %s", entry.Data["session_id"], v.ID)
	}
}

func TestUnknownSession(t *testing.T) {
	app, _ := newApp(t, nil)
	_, err := app.StartTurn(context.Background(), "missing")
	if apperrors.GetCode(err) != apperrors.CodeSectNotFound {
		t.Fatalf("code = %v, want %v", apperrors.GetCode(err), apperrors.CodeSectNotFound)
	}
	if _, err := app.History(context.Background(), "missing", 0); !session.IsNotFound(err) {
		t.Fatalf("history err = %v, want not found", err)
	}
}

func TestUnknownPill(t *testing.T) {
	app, _ := newApp(t, nil)
	v, err := app.CreateSession(context.Background(), CreateSessionInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = app.UsePill(context.Background(), v.ID, v.Disciples[0].ID, "PILL_MOONDUST")
	if apperrors.GetCode(err) != apperrors.CodeUnknownPill {
		t.Fatalf("code = %v, want %v", apperrors.GetCode(err), apperrors.CodeUnknownPill)
	}
	cost, err := app.CraftPill(context.Background(), v.ID, "qi_recovery", 2)
	if err != nil {
		t.Fatalf("craft: %v", err)
	}
	if cost != 100 {
		t.Fatalf("cost = %d, want 100", cost)
	}
}

func TestListDisciplesPaging(t *testing.T) {
	app, _ := newApp(t, nil)
	ctx := context.Background()
	v, err := app.CreateSession(ctx, CreateSessionInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	total := len(v.Disciples)
	if total < 2 {
		t.Fatalf("roster = %d, want at least 2", total)
	}

	first, err := app.ListDisciples(ctx, ListDisciplesInput{SessionID: v.ID, PageSize: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Disciples) != 1 || first.NextPageToken == "" || first.TotalSize != total {
		t.Fatalf("first page = %d disciples, token %q, total %d", len(first.Disciples), first.NextPageToken, first.TotalSize)
	}
	rest, err := app.ListDisciples(ctx, ListDisciplesInput{SessionID: v.ID, PageSize: 100, PageToken: first.NextPageToken})
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Disciples) != total-1 || rest.NextPageToken != "" {
		t.Fatalf("rest = %d disciples, token %q", len(rest.Disciples), rest.NextPageToken)
	}
	if rest.Disciples[0].ID <= first.Disciples[0].ID {
		t.Fatalf("rest starts at %s, want after %s", rest.Disciples[0].ID, first.Disciples[0].ID)
	}

	byAge, err := app.ListDisciples(ctx, ListDisciplesInput{SessionID: v.ID, OrderBy: "age desc"})
	if err != nil {
		t.Fatalf("list by age: %v", err)
	}
	for i := 1; i < len(byAge.Disciples); i++ {
		if byAge.Disciples[i-1].Age < byAge.Disciples[i].Age {
			t.Fatalf("ages not descending: %d before %d", byAge.Disciples[i-1].Age, byAge.Disciples[i].Age)
		}
	}
}

func TestListDisciplesRejects(t *testing.T) {
	app, _ := newApp(t, nil)
	v, err := app.CreateSession(context.Background(), CreateSessionInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tests := []struct {
		name string
		in   ListDisciplesInput
		code apperrors.Code
	}{
		{"filter", ListDisciplesInput{SessionID: v.ID, Filter: `rank = "x"`}, apperrors.CodeInvalidFilter},
		{"order", ListDisciplesInput{SessionID: v.ID, OrderBy: "luck"}, apperrors.CodeInvalidArgument},
		{"token", ListDisciplesInput{SessionID: v.ID, PageToken: "abc"}, apperrors.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.ListDisciples(context.Background(), tt.in)
			if apperrors.GetCode(err) != tt.code {
				t.Fatalf("code = %v, want %v", apperrors.GetCode(err), tt.code)
			}
		})
	}
}

func TestRecordsEncodeAsStruct(t *testing.T) {
	app, _ := newApp(t, nil)
	ctx := context.Background()
	v, err := app.CreateSession(ctx, CreateSessionInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	start, err := app.StartTurn(ctx, v.ID)
	if err != nil {
		t.Fatalf("start turn: %v", err)
	}
	v, err = app.GetSession(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	st, err := app.Statistics(ctx, v.ID)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	for name, rec := range map[string]Record{
		"session":    SessionRecord(v),
		"turn start": TurnStartRecord(start),
		"statistics": StatisticsRecord(st),
	} {
		if _, err := structpb.NewStruct(rec); err != nil {
			t.Fatalf("%s record: %v", name, err)
		}
	}
	rec := SessionRecord(v)
	if rec["phase"] != string(sect.PhasePlanning) {
		t.Fatalf("phase = %v, want %s", rec["phase"], sect.PhasePlanning)
	}
}
