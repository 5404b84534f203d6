package domain

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
)

// SessionCreateInput represents the MCP tool input for founding a sect.
type SessionCreateInput struct {
	Name string `json:"name,omitempty" jsonschema:"optional sect name"`
	Seed int64  `json:"seed,omitempty" jsonschema:"optional random seed; equal seeds replay identically"`
}

// SessionInput addresses a session.
type SessionInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
}

// AssignInput addresses a disciple on a task.
type AssignInput struct {
	SessionID  string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	TaskID     string `json:"task_id" jsonschema:"task identifier"`
	DiscipleID string `json:"disciple_id" jsonschema:"disciple identifier"`
}

// BuildInput names a building to raise.
type BuildInput struct {
	SessionID  string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	BuildingID string `json:"building_id" jsonschema:"building identifier from the catalog"`
}

// PillUseInput feeds a pill to a disciple.
type PillUseInput struct {
	SessionID  string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	DiscipleID string `json:"disciple_id" jsonschema:"disciple identifier"`
	Pill       string `json:"pill" jsonschema:"pill kind (QI_RECOVERY, BODY_STRENGTH, VITALITY_ELIXIR, CULTIVATION_BOOST)"`
}

// PillCraftInput crafts pills into the sect stock.
type PillCraftInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	Pill      string `json:"pill" jsonschema:"pill kind (QI_RECOVERY, BODY_STRENGTH, VITALITY_ELIXIR, CULTIVATION_BOOST)"`
	Quantity  int    `json:"quantity,omitempty" jsonschema:"number of pills, defaults to 1"`
}

// InheritInput consumes a heritage for a disciple.
type InheritInput struct {
	SessionID  string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	DiscipleID string `json:"disciple_id" jsonschema:"disciple identifier"`
	HeritageID string `json:"heritage_id" jsonschema:"heritage identifier"`
}

// TribulationInput names the disciple attempting a breakthrough.
type TribulationInput struct {
	SessionID  string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	DiscipleID string `json:"disciple_id" jsonschema:"disciple identifier"`
}

// DiscipleListInput filters and pages the roster.
type DiscipleListInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter, for example tier = \"FOUNDATION\" AND energy > 50"`
	OrderBy   string `json:"order_by,omitempty" jsonschema:"id, name, age, dao_heart or tier, optionally followed by desc"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum disciples to return (default 20, max 100)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// OutcomeHistoryInput reads the outcome journal.
type OutcomeHistoryInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	AfterTurn int    `json:"after_turn,omitempty" jsonschema:"only outcomes of later turns"`
}

// Tool names.
const (
	ToolSessionCreate      = "session_create"
	ToolSessionDelete      = "session_delete"
	ToolSessionGet         = "session_get"
	ToolSessionStatistics  = "session_statistics"
	ToolTurnStart          = "turn_start"
	ToolTurnResolve        = "turn_resolve"
	ToolDiscipleAssign     = "disciple_assign"
	ToolDiscipleUnassign   = "disciple_unassign"
	ToolAutoAssign         = "auto_assign"
	ToolBuildingBuild      = "building_build"
	ToolPillUse            = "pill_use"
	ToolPillCraft          = "pill_craft"
	ToolHeritageInherit    = "heritage_inherit"
	ToolTribulationAttempt = "tribulation_attempt"
	ToolDiscipleList       = "disciple_list"
	ToolOutcomeHistory     = "outcome_history"
)

func tool(name, description string) *mcp.Tool {
	return &mcp.Tool{Name: name, Description: description}
}

// SessionCreateTool defines the tool for founding a sect.
func SessionCreateTool() *mcp.Tool {
	return tool(ToolSessionCreate, "Founds a new sect session and returns its initial state.")
}

// SessionCreateHandler executes a session create request.
func SessionCreateHandler(caller Caller, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[SessionCreateInput, Result] {
	return callHandler(caller, sectservice.MethodCreateSession, nil, notify, func(in SessionCreateInput, _ Context) (map[string]any, error) {
		req := map[string]any{}
		if name := strings.TrimSpace(in.Name); name != "" {
			req["name"] = name
		}
		if in.Seed != 0 {
			req["seed"] = in.Seed
		}
		return req, nil
	})
}

// sessionOnly builds requests that carry just the session id.
func sessionOnly(in SessionInput, c Context) (map[string]any, error) {
	sid, err := resolveSession(in.SessionID, c)
	if err != nil {
		return nil, err
	}
	return map[string]any{"session_id": sid}, nil
}

// SessionDeleteTool defines the tool for dropping a session.
func SessionDeleteTool() *mcp.Tool {
	return tool(ToolSessionDelete, "Drops a session. Its journal is kept.")
}

// SessionGetTool defines the tool for reading a session.
func SessionGetTool() *mcp.Tool {
	return tool(ToolSessionGet, "Returns the full sect state: resources, disciples, tasks, buildings and world.")
}

// SessionStatisticsTool defines the tool for reading session statistics.
func SessionStatisticsTool() *mcp.Tool {
	return tool(ToolSessionStatistics, "Returns cumulative session statistics.")
}

// TurnStartTool defines the tool for opening a turn.
func TurnStartTool() *mcp.Tool {
	return tool(ToolTurnStart, "Opens the planning phase: spawns tasks and recruits, returning the turn number and events.")
}

// TurnResolveTool defines the tool for resolving a turn.
func TurnResolveTool() *mcp.Tool {
	return tool(ToolTurnResolve, "Resolves all staffed tasks, applies outcomes and advances the turn.")
}

// AutoAssignTool defines the tool for auto staffing.
func AutoAssignTool() *mcp.Tool {
	return tool(ToolAutoAssign, "Staffs open tasks with the most suitable idle disciples.")
}

// SessionHandler executes a request that needs only a session id.
func SessionHandler(caller Caller, method string, getContext func() Context, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[SessionInput, Result] {
	return callHandler(caller, method, getContext, notify, sessionOnly)
}

// DiscipleAssignTool defines the tool for assigning a disciple.
func DiscipleAssignTool() *mcp.Tool {
	return tool(ToolDiscipleAssign, "Assigns an idle disciple to a task during planning.")
}

// DiscipleUnassignTool defines the tool for unassigning a disciple.
func DiscipleUnassignTool() *mcp.Tool {
	return tool(ToolDiscipleUnassign, "Removes a disciple from a task.")
}

// AssignHandler executes assign and unassign requests.
func AssignHandler(caller Caller, method string, getContext func() Context, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[AssignInput, Result] {
	return callHandler(caller, method, getContext, notify, func(in AssignInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		return withRequired(map[string]any{"session_id": sid}, "task_id", in.TaskID, "disciple_id", in.DiscipleID)
	})
}

// BuildingBuildTool defines the tool for raising a building.
func BuildingBuildTool() *mcp.Tool {
	return tool(ToolBuildingBuild, "Builds or upgrades a building when its parent is built and resources suffice.")
}

// BuildHandler executes a build request.
func BuildHandler(caller Caller, getContext func() Context, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[BuildInput, Result] {
	return callHandler(caller, sectservice.MethodBuild, getContext, notify, func(in BuildInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		return withRequired(map[string]any{"session_id": sid}, "building_id", in.BuildingID)
	})
}

// PillUseTool defines the tool for feeding a pill.
func PillUseTool() *mcp.Tool {
	return tool(ToolPillUse, "Feeds a pill from the sect stock to a disciple.")
}

// PillUseHandler executes a pill use request.
func PillUseHandler(caller Caller, getContext func() Context, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[PillUseInput, Result] {
	return callHandler(caller, sectservice.MethodUsePill, getContext, notify, func(in PillUseInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		return withRequired(map[string]any{"session_id": sid}, "disciple_id", in.DiscipleID, "pill", in.Pill)
	})
}

// PillCraftTool defines the tool for crafting pills.
func PillCraftTool() *mcp.Tool {
	return tool(ToolPillCraft, "Crafts pills into the sect stock and returns the resources spent.")
}

// PillCraftHandler executes a pill craft request.
func PillCraftHandler(caller Caller, getContext func() Context, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[PillCraftInput, Result] {
	return callHandler(caller, sectservice.MethodCraftPill, getContext, notify, func(in PillCraftInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		if in.Quantity < 0 {
			return nil, fmt.Errorf("quantity must not be negative")
		}
		req, err := withRequired(map[string]any{"session_id": sid}, "pill", in.Pill)
		if err != nil {
			return nil, err
		}
		if in.Quantity > 0 {
			req["quantity"] = in.Quantity
		}
		return req, nil
	})
}

// HeritageInheritTool defines the tool for inheriting a heritage.
func HeritageInheritTool() *mcp.Tool {
	return tool(ToolHeritageInherit, "Consumes a discovered heritage, granting its modifier to a disciple.")
}

// InheritHandler executes an inherit request.
func InheritHandler(caller Caller, getContext func() Context, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[InheritInput, Result] {
	return callHandler(caller, sectservice.MethodInherit, getContext, notify, func(in InheritInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		return withRequired(map[string]any{"session_id": sid}, "disciple_id", in.DiscipleID, "heritage_id", in.HeritageID)
	})
}

// TribulationAttemptTool defines the tool for a manual tribulation.
func TribulationAttemptTool() *mcp.Tool {
	return tool(ToolTribulationAttempt, "Rolls a ready disciple's tribulation. Failure may cost the disciple's life.")
}

// TribulationHandler executes a tribulation request.
func TribulationHandler(caller Caller, getContext func() Context, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[TribulationInput, Result] {
	return callHandler(caller, sectservice.MethodAttemptTribulation, getContext, notify, func(in TribulationInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		return withRequired(map[string]any{"session_id": sid}, "disciple_id", in.DiscipleID)
	})
}

// DiscipleListTool defines the tool for listing disciples.
func DiscipleListTool() *mcp.Tool {
	return tool(ToolDiscipleList, "Lists disciples with optional filter, ordering and paging.")
}

// DiscipleListHandler executes a disciple list request.
func DiscipleListHandler(caller Caller, getContext func() Context) mcp.ToolHandlerFor[DiscipleListInput, Result] {
	return callHandler(caller, sectservice.MethodListDisciples, getContext, nil, func(in DiscipleListInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		req := map[string]any{"session_id": sid}
		setIf(req, "filter", in.Filter)
		setIf(req, "order_by", in.OrderBy)
		setIf(req, "page_token", in.PageToken)
		if in.PageSize > 0 {
			req["page_size"] = in.PageSize
		}
		return req, nil
	})
}

// OutcomeHistoryTool defines the tool for reading journaled outcomes.
func OutcomeHistoryTool() *mcp.Tool {
	return tool(ToolOutcomeHistory, "Returns journaled task outcomes, optionally after a turn.")
}

// OutcomeHistoryHandler executes an outcome history request.
func OutcomeHistoryHandler(caller Caller, getContext func() Context) mcp.ToolHandlerFor[OutcomeHistoryInput, Result] {
	return callHandler(caller, sectservice.MethodListOutcomes, getContext, nil, func(in OutcomeHistoryInput, c Context) (map[string]any, error) {
		sid, err := resolveSession(in.SessionID, c)
		if err != nil {
			return nil, err
		}
		req := map[string]any{"session_id": sid}
		if in.AfterTurn > 0 {
			req["after_turn"] = in.AfterTurn
		}
		return req, nil
	})
}

// withRequired adds name/value pairs to req, rejecting blank values.
func withRequired(req map[string]any, pairs ...string) (map[string]any, error) {
	for i := 0; i+1 < len(pairs); i += 2 {
		value := strings.TrimSpace(pairs[i+1])
		if value == "" {
			return nil, fmt.Errorf("%s is required", pairs[i])
		}
		req[pairs[i]] = value
	}
	return req, nil
}

func setIf(req map[string]any, name, value string) {
	if value = strings.TrimSpace(value); value != "" {
		req[name] = value
	}
}
