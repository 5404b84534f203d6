package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
	"github.com/louisbranch/sect.ascension/internal/services/mcp/domain"
)

func registerTools(server *mcp.Server, caller domain.Caller, getContext func() domain.Context, setContext func(domain.Context), notify domain.ResourceUpdateNotifier) {
	mcp.AddTool(server, domain.SetContextTool(), domain.SetContextHandler(caller, setContext, notify))
	mcp.AddTool(server, domain.SessionCreateTool(), domain.SessionCreateHandler(caller, notify))

	sessionTools := []struct {
		tool   *mcp.Tool
		method string
	}{
		{domain.SessionDeleteTool(), sectservice.MethodDeleteSession},
		{domain.SessionGetTool(), sectservice.MethodGetSession},
		{domain.SessionStatisticsTool(), sectservice.MethodGetStatistics},
		{domain.TurnStartTool(), sectservice.MethodStartTurn},
		{domain.TurnResolveTool(), sectservice.MethodResolveTurn},
		{domain.AutoAssignTool(), sectservice.MethodAutoAssign},
	}
	for _, st := range sessionTools {
		mcp.AddTool(server, st.tool, domain.SessionHandler(caller, st.method, getContext, notify))
	}

	mcp.AddTool(server, domain.DiscipleAssignTool(), domain.AssignHandler(caller, sectservice.MethodAssign, getContext, notify))
	mcp.AddTool(server, domain.DiscipleUnassignTool(), domain.AssignHandler(caller, sectservice.MethodUnassign, getContext, notify))
	mcp.AddTool(server, domain.BuildingBuildTool(), domain.BuildHandler(caller, getContext, notify))
	mcp.AddTool(server, domain.PillUseTool(), domain.PillUseHandler(caller, getContext, notify))
	mcp.AddTool(server, domain.PillCraftTool(), domain.PillCraftHandler(caller, getContext, notify))
	mcp.AddTool(server, domain.HeritageInheritTool(), domain.InheritHandler(caller, getContext, notify))
	mcp.AddTool(server, domain.TribulationAttemptTool(), domain.TribulationHandler(caller, getContext, notify))
	mcp.AddTool(server, domain.DiscipleListTool(), domain.DiscipleListHandler(caller, getContext))
	mcp.AddTool(server, domain.OutcomeHistoryTool(), domain.OutcomeHistoryHandler(caller, getContext))
}

func registerResources(server *mcp.Server, caller domain.Caller, getContext func() domain.Context) {
	server.AddResource(domain.ContextResource(), domain.ContextResourceHandler(getContext))
	server.AddResourceTemplate(domain.SessionResourceTemplate(), domain.SessionResourceHandler(caller))
}
