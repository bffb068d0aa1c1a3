// Package wumpus implements Hunt the Wumpus as an engine.Engine.
//
// The cave is a dodecahedron: 20 rooms, each joined to three others by
// tunnels. Somewhere in it sleeps the wumpus; two rooms hold bottomless pits
// and two hold super bats. The player moves through tunnels or shoots a
// crooked arrow along a path of up to five rooms.
//
// Wire formats (JSON):
//
//	config:   {"arrows": 5, "seed": 42}        // every field optional
//	action:   {"Move": 5} | {"Shoot": [1, 2]} | "ReStart" | "Instructions" | "Quit"
//	response: {"shutdown_required": false, "msgs": "...", "tunnels": [2, 5, 8],
//	           "arrows": 5, "outcome": "playing"}
//
// A non-zero seed makes a game fully deterministic, which the tests rely on.
package wumpus
