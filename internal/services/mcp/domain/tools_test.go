package domain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	grpcmeta "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/metadata"
	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
)

type fakeCaller struct {
	method string
	req    map[string]any
	md     metadata.MD
	resp   map[string]any
	err    error
}

func (f *fakeCaller) Call(ctx context.Context, method string, req map[string]any, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.method = method
	f.req = req
	f.md, _ = metadata.FromOutgoingContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	resp := f.resp
	if resp == nil {
		resp = map[string]any{}
	}
	return structpb.NewStruct(resp)
}

func fixedContext(sid string) func() Context {
	return func() Context { return Context{SessionID: sid} }
}

func TestSessionCreateHandler(t *testing.T) {
	caller := &fakeCaller{resp: map[string]any{"session_id": "s1", "turn": 0}}
	var notified []string
	notify := func(_ context.Context, uri string) { notified = append(notified, uri) }

	toolResult, result, err := SessionCreateHandler(caller, notify)(context.Background(), nil, SessionCreateInput{Name: " Azure ", Seed: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.method != sectservice.MethodCreateSession {
		t.Fatalf("method = %q, want %q", caller.method, sectservice.MethodCreateSession)
	}
	if caller.req["name"] != "Azure" || caller.req["seed"] != int64(9) {
		t.Fatalf("request = %v", caller.req)
	}
	if result.Result["session_id"] != "s1" {
		t.Fatalf("result = %v", result.Result)
	}
	if toolResult == nil || toolResult.Meta[grpcmeta.RequestIDHeader] == "" {
		t.Fatal("expected request id metadata")
	}
	if len(notified) != 1 || notified[0] != "sect://s1" {
		t.Fatalf("notified = %v, want [sect://s1]", notified)
	}
}

func TestSessionHandlerUsesContext(t *testing.T) {
	caller := &fakeCaller{}
	_, _, err := SessionHandler(caller, sectservice.MethodStartTurn, fixedContext("ctx-session"), nil)(context.Background(), nil, SessionInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.req["session_id"] != "ctx-session" {
		t.Fatalf("session_id = %v, want ctx-session", caller.req["session_id"])
	}
	if got := caller.md.Get(grpcmeta.SessionIDHeader); len(got) != 1 || got[0] != "ctx-session" {
		t.Fatalf("session header = %v", got)
	}
	if got := caller.md.Get(grpcmeta.RequestIDHeader); len(got) != 1 || got[0] == "" {
		t.Fatalf("request header = %v", got)
	}
}

func TestSessionHandlerExplicitSessionWins(t *testing.T) {
	caller := &fakeCaller{}
	_, _, err := SessionHandler(caller, sectservice.MethodResolveTurn, fixedContext("ctx"), nil)(context.Background(), nil, SessionInput{SessionID: "explicit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.req["session_id"] != "explicit" {
		t.Fatalf("session_id = %v, want explicit", caller.req["session_id"])
	}
}

func TestHandlersRequireSession(t *testing.T) {
	caller := &fakeCaller{}
	_, _, err := SessionHandler(caller, sectservice.MethodGetSession, nil, nil)(context.Background(), nil, SessionInput{})
	if err == nil || !strings.Contains(err.Error(), "session_id") {
		t.Fatalf("err = %v, want session_id error", err)
	}
	if caller.method != "" {
		t.Fatal("expected no call")
	}
}

func TestAssignHandlerRequiresIDs(t *testing.T) {
	caller := &fakeCaller{}
	handler := AssignHandler(caller, sectservice.MethodAssign, fixedContext("s1"), nil)
	if _, _, err := handler(context.Background(), nil, AssignInput{TaskID: "t1"}); err == nil {
		t.Fatal("expected disciple_id error")
	}
	if _, _, err := handler(context.Background(), nil, AssignInput{TaskID: "t1", DiscipleID: "d1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.req["task_id"] != "t1" || caller.req["disciple_id"] != "d1" {
		t.Fatalf("request = %v", caller.req)
	}
}

func TestPillCraftHandler(t *testing.T) {
	caller := &fakeCaller{resp: map[string]any{"cost": 100}}
	handler := PillCraftHandler(caller, fixedContext("s1"), nil)
	if _, _, err := handler(context.Background(), nil, PillCraftInput{Pill: "QI_RECOVERY", Quantity: -1}); err == nil {
		t.Fatal("expected quantity error")
	}
	_, result, err := handler(context.Background(), nil, PillCraftInput{Pill: "QI_RECOVERY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := caller.req["quantity"]; ok {
		t.Fatal("expected quantity omitted")
	}
	if result.Result["cost"] != float64(100) {
		t.Fatalf("cost = %v, want 100", result.Result["cost"])
	}
}

func TestDiscipleListHandlerDoesNotNotify(t *testing.T) {
	caller := &fakeCaller{}
	called := false
	_, _, err := callHandler(caller, sectservice.MethodListDisciples, fixedContext("s1"), func(context.Context, string) { called = true },
		func(in DiscipleListInput, c Context) (map[string]any, error) {
			return map[string]any{"session_id": c.SessionID, "filter": in.Filter}, nil
		})(context.Background(), nil, DiscipleListInput{Filter: "energy > 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("reads must not notify")
	}

	_, _, err = DiscipleListHandler(caller, fixedContext("s1"))(context.Background(), nil, DiscipleListInput{OrderBy: "age desc", PageSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.req["order_by"] != "age desc" || caller.req["page_size"] != 5 {
		t.Fatalf("request = %v", caller.req)
	}
	if _, ok := caller.req["filter"]; ok {
		t.Fatal("expected empty filter omitted")
	}
}

func TestHandlerWrapsCallErrors(t *testing.T) {
	caller := &fakeCaller{err: errors.New("unavailable")}
	_, _, err := BuildHandler(caller, fixedContext("s1"), nil)(context.Background(), nil, BuildInput{BuildingID: "library"})
	if err == nil || !strings.Contains(err.Error(), sectservice.MethodBuild) {
		t.Fatalf("err = %v, want wrapped Build error", err)
	}
}

func TestSetContextHandler(t *testing.T) {
	caller := &fakeCaller{}
	var stored Context
	var notified []string
	handler := SetContextHandler(caller, func(c Context) { stored = c }, func(_ context.Context, uri string) { notified = append(notified, uri) })

	if _, _, err := handler(context.Background(), nil, SetContextInput{SessionID: "  "}); err == nil {
		t.Fatal("expected session_id error")
	}
	_, result, err := handler(context.Background(), nil, SetContextInput{SessionID: "s1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.method != sectservice.MethodGetSession {
		t.Fatalf("validation method = %q", caller.method)
	}
	if stored.SessionID != "s1" || result.Context.SessionID != "s1" {
		t.Fatalf("context = %+v / %+v", stored, result.Context)
	}
	if len(notified) != 1 || notified[0] != ContextResourceURI {
		t.Fatalf("notified = %v", notified)
	}

	caller.err = errors.New("not found")
	stored = Context{}
	if _, _, err := handler(context.Background(), nil, SetContextInput{SessionID: "gone"}); err == nil {
		t.Fatal("expected validation error")
	}
	if stored.SessionID != "" {
		t.Fatal("context must not change on failure")
	}
}

func TestContextResourceHandler(t *testing.T) {
	res, err := ContextResourceHandler(fixedContext(""))(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: ContextResourceURI}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Contents[0].Text, `"session_id": null`) {
		t.Fatalf("text = %s", res.Contents[0].Text)
	}
	if _, err := ContextResourceHandler(fixedContext("s1"))(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "context://other"}}); err == nil {
		t.Fatal("expected invalid uri error")
	}
}

func TestSessionResourceHandler(t *testing.T) {
	caller := &fakeCaller{resp: map[string]any{"session_id": "s1", "name": "Azure"}}
	handler := SessionResourceHandler(caller)
	res, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "sect://s1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.req["session_id"] != "s1" {
		t.Fatalf("session_id = %v", caller.req["session_id"])
	}
	if !strings.Contains(res.Contents[0].Text, "Azure") {
		t.Fatalf("text = %s", res.Contents[0].Text)
	}
	for _, uri := range []string{"sect://", "realm://s1", "sect://a/b"} {
		if _, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}); err == nil {
			t.Fatalf("expected error for %q", uri)
		}
	}
}
