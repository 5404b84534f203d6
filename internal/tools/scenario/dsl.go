package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a named list of steps.
type Scenario struct {
	Name  string
	Seed  int64
	Steps []Step
}

// Step is one DSL call. Args holds the call's table with Lua numbers
// normalized to int where whole.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua file and returns the Scenario it returns.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	scenario, err := load(func(state *lua.State) error {
		return lua.LoadFile(state, path, "")
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source and returns the Scenario it returns.
func LoadScenario(name, source string) (*Scenario, error) {
	scenario, err := load(func(state *lua.State) error {
		return lua.LoadString(state, source)
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func load(chunk func(*lua.State) error) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := chunk(state); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	scenario := &Scenario{Name: lua.OptString(state, 1, "")}
	if seed, ok := optionalTable(state, 2)["seed"].(int); ok {
		scenario.Seed = int64(seed)
	}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "create_session", Function: tableStep(stepCreateSession)},
	{Name: "delete_session", Function: tableStep(stepDeleteSession)},
	{Name: "start_turn", Function: tableStep(stepStartTurn)},
	{Name: "resolve_turn", Function: tableStep(stepResolveTurn)},
	{Name: "auto_assign", Function: tableStep(stepAutoAssign)},
	{Name: "assign", Function: tableStep(stepAssign)},
	{Name: "unassign", Function: tableStep(stepUnassign)},
	{Name: "build", Function: keyedStep(stepBuild, "building_id")},
	{Name: "use_pill", Function: tableStep(stepUsePill)},
	{Name: "craft_pill", Function: scenarioCraftPill},
	{Name: "inherit", Function: tableStep(stepInherit)},
	{Name: "tribulation", Function: keyedStep(stepTribulation, "disciple_id")},
	{Name: "list_disciples", Function: tableStep(stepListDisciples)},
	{Name: "history", Function: tableStep(stepHistory)},
	{Name: "statistics", Function: tableStep(stepStatistics)},
	{Name: "session", Function: tableStep(stepSession)},
	{Name: "run_turns", Function: scenarioRunTurns},
	{Name: "expect", Function: tableStep(stepExpect)},
	{Name: "expect_last", Function: tableStep(stepExpectLast)},
}

// tableStep appends kind with an optional table argument and returns self.
func tableStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		appendStep(scenario, kind, optionalTable(state, 2))
		state.PushValue(1)
		return 1
	}
}

// keyedStep accepts either a table or a bare string stored under key.
func keyedStep(kind, key string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		var args map[string]any
		if state.TypeOf(2) == lua.TypeString {
			value, _ := state.ToString(2)
			args = optionalTable(state, 3)
			args[key] = value
		} else {
			lua.CheckType(state, 2, lua.TypeTable)
			args = tableToMap(state, 2)
		}
		appendStep(scenario, kind, args)
		state.PushValue(1)
		return 1
	}
}

func scenarioCraftPill(state *lua.State) int {
	scenario := checkScenario(state)
	pill := lua.CheckString(state, 2)
	args := optionalTable(state, 4)
	args["pill"] = pill
	args["quantity"] = lua.OptInteger(state, 3, 1)
	appendStep(scenario, stepCraftPill, args)
	state.PushValue(1)
	return 1
}

// scenarioRunTurns expands into n rounds of start, auto assign and resolve.
func scenarioRunTurns(state *lua.State) int {
	scenario := checkScenario(state)
	n := lua.CheckInteger(state, 2)
	if n < 1 {
		lua.ArgumentError(state, 2, "turn count must be positive")
		return 0
	}
	for range n {
		appendStep(scenario, stepStartTurn, nil)
		appendStep(scenario, stepAutoAssign, nil)
		appendStep(scenario, stepResolveTurn, nil)
	}
	state.PushValue(1)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				maxIndex = max(maxIndex, idx)
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) <= 1<<53 {
		return int(value)
	}
	return value
}
