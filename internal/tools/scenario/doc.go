// Package scenario runs Lua-scripted sect scenarios.
//
// A script builds a Scenario with Scenario.new and chained step methods,
// then returns it. The runner replays the steps against SectService, either
// over gRPC or in process, and checks the script's expectations against the
// live session.
//
//	local scene = Scenario.new("first turns", {seed = 7})
//	scene:create_session({name = "Azure Peak"})
//	scene:run_turns(3)
//	scene:expect({turn = 3, ["#disciples"] = {gte = 1}})
//	return scene
package scenario
