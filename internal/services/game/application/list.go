package application

import (
	"context"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	"github.com/louisbranch/sect.ascension/internal/platform/grpc/pagination"
	"github.com/louisbranch/sect.ascension/internal/services/game/core/filter"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
)

var discipleSizes = pagination.SizeConfig{Default: 20, Max: 100}

var discipleOrder = pagination.OrderConfig{
	Default: "id",
	Allowed: []string{"id", "name", "age", "age desc", "dao_heart", "dao_heart desc", "tier", "tier desc"},
}

// ListDisciplesInput selects a page of disciples.
type ListDisciplesInput struct {
	SessionID string
	// Filter is an AIP-160 expression, such as `kind = "INNER" AND dao_heart > 60`.
	Filter    string
	OrderBy   string
	PageSize  int32
	PageToken string
}

// DisciplePage is one page of a disciple listing.
type DisciplePage struct {
	Disciples     []disciple.View
	NextPageToken string
	TotalSize     int
}

// ListDisciples filters, orders and pages a session's roster.
func (a *Application) ListDisciples(_ context.Context, in ListDisciplesInput) (DisciplePage, error) {
	keep, err := filter.ParseDiscipleFilter(in.Filter)
	if err != nil {
		return DisciplePage{}, apperrors.WrapWithMetadata(apperrors.CodeInvalidFilter, "invalid filter", map[string]string{"filter": in.Filter}, err)
	}
	orderBy, err := pagination.Order(in.OrderBy, discipleOrder)
	if err != nil {
		return DisciplePage{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid order_by", err)
	}
	if _, err := pagination.Offset(in.PageToken); err != nil {
		return DisciplePage{}, apperrors.WrapWithMetadata(apperrors.CodeInvalidArgument, "invalid page token", map[string]string{"page_token": in.PageToken}, err)
	}

	var all []disciple.View
	err = a.sessions.Do(in.SessionID, func(s *sect.Sect) error {
		all = s.Disciples(keep)
		return nil
	})
	if err != nil {
		return DisciplePage{}, err
	}
	sortDisciples(all, orderBy)

	window, err := pagination.Paginate(len(all), pagination.Request{Size: in.PageSize, Token: in.PageToken}, discipleSizes)
	if err != nil {
		return DisciplePage{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid page token", err)
	}
	return DisciplePage{
		Disciples:     all[window.Start:window.End],
		NextPageToken: window.Next,
		TotalSize:     len(all),
	}, nil
}

// sortDisciples orders by the key with id as the tie-break.
func sortDisciples(ds []disciple.View, orderBy string) {
	key, desc := strings.CutSuffix(orderBy, " desc")
	compare := func(a, b disciple.View) int {
		switch key {
		case "name":
			return strings.Compare(a.Name, b.Name)
		case "age":
			return a.Age - b.Age
		case "dao_heart":
			switch {
			case a.DaoHeart < b.DaoHeart:
				return -1
			case a.DaoHeart > b.DaoHeart:
				return 1
			}
			return 0
		case "tier":
			return int(a.Cultivation.Level) - int(b.Cultivation.Level)
		}
		return 0
	}
	sort.SliceStable(ds, func(i, j int) bool {
		c := compare(ds[i], ds[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return ds[i].ID < ds[j].ID
	})
}
