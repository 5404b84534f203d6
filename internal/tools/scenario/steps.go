package scenario

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	sectservice "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/sect"
)

// Step kinds.
const (
	stepCreateSession = "create_session"
	stepDeleteSession = "delete_session"
	stepStartTurn     = "start_turn"
	stepResolveTurn   = "resolve_turn"
	stepAutoAssign    = "auto_assign"
	stepAssign        = "assign"
	stepUnassign      = "unassign"
	stepBuild         = "build"
	stepUsePill       = "use_pill"
	stepCraftPill     = "craft_pill"
	stepInherit       = "inherit"
	stepTribulation   = "tribulation"
	stepListDisciples = "list_disciples"
	stepHistory       = "history"
	stepStatistics    = "statistics"
	stepSession       = "session"
	stepExpect        = "expect"
	stepExpectLast    = "expect_last"
)

// stepMethods maps action steps to SectService methods.
var stepMethods = map[string]string{
	stepCreateSession: sectservice.MethodCreateSession,
	stepDeleteSession: sectservice.MethodDeleteSession,
	stepStartTurn:     sectservice.MethodStartTurn,
	stepResolveTurn:   sectservice.MethodResolveTurn,
	stepAutoAssign:    sectservice.MethodAutoAssign,
	stepAssign:        sectservice.MethodAssign,
	stepUnassign:      sectservice.MethodUnassign,
	stepBuild:         sectservice.MethodBuild,
	stepUsePill:       sectservice.MethodUsePill,
	stepCraftPill:     sectservice.MethodCraftPill,
	stepInherit:       sectservice.MethodInherit,
	stepTribulation:   sectservice.MethodAttemptTribulation,
	stepListDisciples: sectservice.MethodListDisciples,
	stepHistory:       sectservice.MethodListOutcomes,
	stepStatistics:    sectservice.MethodGetStatistics,
	stepSession:       sectservice.MethodGetSession,
}

// Reserved step arguments. They steer the runner and are not sent.
const (
	argExpectError = "expect_error"
	argSave        = "save"
)

type scenarioState struct {
	seed      int64
	sessionID string
	last      map[string]any
	saved     map[string]any
}

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case stepExpect:
		resp, err := r.caller.Call(ctx, sectservice.MethodGetSession, map[string]any{"session_id": state.sessionID})
		if err != nil {
			return fmt.Errorf("read session: %w", err)
		}
		return r.expect(resp.AsMap(), step.Args)
	case stepExpectLast:
		if state.last == nil {
			return fmt.Errorf("no previous response")
		}
		return r.expect(state.last, step.Args)
	}

	method, ok := stepMethods[step.Kind]
	if !ok {
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
	req, err := r.request(state, step)
	if err != nil {
		return err
	}

	resp, callErr := r.caller.Call(ctx, method, req)
	if code, ok := step.Args[argExpectError].(string); ok {
		if callErr == nil {
			return r.assertions.Failf("%s succeeded, want %s", step.Kind, code)
		}
		if got := string(apperrors.CodeFromStatus(callErr)); got != code {
			return r.assertions.Failf("%s failed with %s (%v), want %s", step.Kind, got, callErr, code)
		}
		return nil
	}
	if callErr != nil {
		return callErr
	}

	state.last = resp.AsMap()
	if step.Kind == stepCreateSession {
		sid, _ := state.last["session_id"].(string)
		if sid == "" {
			return fmt.Errorf("create session returned no session_id")
		}
		state.sessionID = sid
	}
	return saveValues(state, step.Args[argSave])
}

// request builds the call body: reserved keys removed, $aliases replaced and
// the current session attached.
func (r *Runner) request(state *scenarioState, step Step) (map[string]any, error) {
	req := make(map[string]any, len(step.Args)+1)
	for key, value := range step.Args {
		if key == argExpectError || key == argSave {
			continue
		}
		if s, ok := value.(string); ok && strings.HasPrefix(s, "$") {
			saved, ok := state.saved[s[1:]]
			if !ok {
				return nil, fmt.Errorf("%s: unknown alias %s", key, s)
			}
			value = saved
		}
		req[key] = value
	}

	if step.Kind == stepCreateSession {
		if _, ok := req["seed"]; !ok && state.seed != 0 {
			req["seed"] = state.seed
		}
		return req, nil
	}
	if state.sessionID == "" {
		return nil, fmt.Errorf("no session; call create_session first")
	}
	req["session_id"] = state.sessionID
	return req, nil
}

func (r *Runner) expect(doc map[string]any, want map[string]any) error {
	for _, failure := range checkExpectations(doc, want) {
		if err := r.assertions.Failf("%s", failure); err != nil {
			return err
		}
	}
	return nil
}

// saveValues stores response values under aliases: save = {alias = "path"}.
func saveValues(state *scenarioState, aliases any) error {
	if aliases == nil {
		return nil
	}
	paths, ok := aliases.(map[string]any)
	if !ok {
		return fmt.Errorf("save must be a table of alias = path")
	}
	for alias, p := range paths {
		path, ok := p.(string)
		if !ok {
			return fmt.Errorf("save %s: path must be a string", alias)
		}
		value, ok := resolve(state.last, path)
		if !ok {
			return fmt.Errorf("save %s: %s not in response", alias, path)
		}
		state.saved[alias] = value
	}
	return nil
}
