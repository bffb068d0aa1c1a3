// Package engine defines the capability set an embedded game engine must
// provide to be driven through the foreign-call boundary.
//
// The boundary never interprets game semantics. It only needs to:
//   - decode a configuration payload and construct an engine for a host
//   - ask the engine for the markup of its initial view
//   - decode an action payload and execute it
//   - forward lifecycle events (create, pause, save state, ...)
//   - ask a response whether the host should shut down
//
// Core Types:
//
// Engine is the stateful object, parameterized over its Action and Response
// types. Factory decodes configuration and action payloads and builds engines.
// Event is the host lifecycle notification shared by every engine, and
// InterfaceType tells the engine which kind of host is rendering its view.
//
// Usage:
//
//	var f engine.Factory[wumpus.Config, wumpus.Action, wumpus.Response] = wumpus.Factory{}
//
//	cfg, err := f.DecodeConfig([]byte(`{"arrows": 5}`))
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng, err := f.New(cfg, engine.PC)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	action, _ := f.DecodeAction([]byte(`{"Move": 5}`))
//	resp, err := eng.Execute(action)
//	if resp.ShutdownRequired() {
//		// stop the host
//	}
package engine
