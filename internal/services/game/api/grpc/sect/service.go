package sect

import (
	"context"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	"github.com/louisbranch/sect.ascension/internal/services/game/application"
)

// Service implements SectServiceServer over an Application.
type Service struct {
	app *application.Application
}

// NewService returns a Service.
func NewService(app *application.Application) *Service {
	return &Service{app: app}
}

var _ SectServiceServer = (*Service)(nil)

// CreateSession founds a sect. Optional fields: name, seed.
func (s *Service) CreateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	seed, err := optionalInt(in, "seed")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	v, err := s.app.CreateSession(ctx, application.CreateSessionInput{
		Name: field(in, "name"),
		Seed: int64(seed),
	})
	return reply(application.SessionRecord(v), err)
}

// DeleteSession drops a session.
func (s *Service) DeleteSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	err = s.app.DeleteSession(ctx, sid)
	return reply(application.Record{"session_id": sid}, err)
}

// GetSession returns the full session view.
func (s *Service) GetSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	v, err := s.app.GetSession(ctx, sid)
	return reply(application.SessionRecord(v), err)
}

// GetStatistics returns the session statistics.
func (s *Service) GetStatistics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	st, err := s.app.Statistics(ctx, sid)
	return reply(application.StatisticsRecord(st), err)
}

// StartTurn opens the planning phase.
func (s *Service) StartTurn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	start, err := s.app.StartTurn(ctx, sid)
	return reply(application.TurnStartRecord(start), err)
}

// ResolveTurn resolves the turn.
func (s *Service) ResolveTurn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	res, err := s.app.ResolveTurn(ctx, sid)
	return reply(application.ResolutionRecord(res), err)
}

// Assign puts disciple_id on task_id.
func (s *Service) Assign(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := requiredAll(in, "session_id", "task_id", "disciple_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	d, err := s.app.Assign(ctx, ids[0], ids[1], ids[2])
	return reply(application.DiscipleRecord(d), err)
}

// Unassign removes disciple_id from task_id.
func (s *Service) Unassign(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := requiredAll(in, "session_id", "task_id", "disciple_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	err = s.app.Unassign(ctx, ids[0], ids[1], ids[2])
	return reply(application.Record{"task_id": ids[1], "disciple_id": ids[2]}, err)
}

// AutoAssign staffs open tasks.
func (s *Service) AutoAssign(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	assigned, err := s.app.AutoAssign(ctx, sid)
	out := make([]any, 0, len(assigned))
	for _, a := range assigned {
		out = append(out, application.AssignmentRecord(a))
	}
	return reply(application.Record{"assignments": out}, err)
}

// Build raises building_id.
func (s *Service) Build(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := requiredAll(in, "session_id", "building_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	res, err := s.app.Build(ctx, ids[0], ids[1])
	return reply(application.BuildRecord(res), err)
}

// UsePill feeds pill to disciple_id.
func (s *Service) UsePill(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := requiredAll(in, "session_id", "disciple_id", "pill")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	d, err := s.app.UsePill(ctx, ids[0], ids[1], ids[2])
	return reply(application.DiscipleRecord(d), err)
}

// CraftPill crafts quantity pills, one when quantity is absent.
func (s *Service) CraftPill(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := requiredAll(in, "session_id", "pill")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	qty, err := optionalInt(in, "quantity")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	if qty == 0 {
		qty = 1
	}
	cost, err := s.app.CraftPill(ctx, ids[0], ids[1], qty)
	return reply(application.Record{"pill": ids[1], "quantity": qty, "cost": cost}, err)
}

// Inherit consumes heritage_id for disciple_id.
func (s *Service) Inherit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := requiredAll(in, "session_id", "disciple_id", "heritage_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	m, err := s.app.Inherit(ctx, ids[0], ids[1], ids[2])
	return reply(application.ModifierRecord(m), err)
}

// AttemptTribulation rolls disciple_id's tribulation.
func (s *Service) AttemptTribulation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ids, err := requiredAll(in, "session_id", "disciple_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	trib, events, err := s.app.AttemptTribulation(ctx, ids[0], ids[1])
	return reply(application.TribulationRecord(trib, events), err)
}

// ListDisciples lists disciples. Optional fields: filter, order_by,
// page_size, page_token.
func (s *Service) ListDisciples(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	size, err := optionalInt(in, "page_size")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	page, err := s.app.ListDisciples(ctx, application.ListDisciplesInput{
		SessionID: sid,
		Filter:    field(in, "filter"),
		OrderBy:   field(in, "order_by"),
		PageSize:  int32(min(max(size, 0), math.MaxInt32)),
		PageToken: field(in, "page_token"),
	})
	return reply(application.DisciplePageRecord(page), err)
}

// ListOutcomes returns journaled outcomes after after_turn.
func (s *Service) ListOutcomes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sid, err := required(in, "session_id")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	after, err := optionalInt(in, "after_turn")
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	rows, err := s.app.History(ctx, sid, after)
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, application.JournalRecord(r))
	}
	return reply(application.Record{"outcomes": out}, err)
}

func reply(rec application.Record, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	out, err := structpb.NewStruct(rec)
	if err != nil {
		return nil, apperrors.HandleError(apperrors.Wrap(apperrors.CodeUnknown, "encode response", err))
	}
	return out, nil
}

func field(in *structpb.Struct, name string) string {
	if in == nil {
		return ""
	}
	return strings.TrimSpace(in.GetFields()[name].GetStringValue())
}

func required(in *structpb.Struct, name string) (string, error) {
	v := field(in, name)
	if v == "" {
		return "", apperrors.WithMetadata(apperrors.CodeInvalidArgument, name+" is required", map[string]string{"field": name})
	}
	return v, nil
}

func requiredAll(in *structpb.Struct, names ...string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		v, err := required(in, name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// optionalInt reads a whole number field. Absent fields read as zero.
func optionalInt(in *structpb.Struct, name string) (int, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > 1<<53 {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidArgument, name+" must be a whole number", map[string]string{"field": name})
	}
	return int(n.NumberValue), nil
}
