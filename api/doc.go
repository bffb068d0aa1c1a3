// Package api provides the HTTP host for Hunt the Wumpus games.
//
// Every game lives behind a boundary handle; the session id in each URL is
// that handle in decimal. Bodies for execute and events are the raw action
// and event JSON the boundary accepts, and successful calls answer with the
// game's last response JSON verbatim.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a game, optional {"config_id": "..."}
//   - GET /api/sessions - List games (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get a game and its shutdown flag
//   - DELETE /api/sessions/{id} - Destroy a game
//
// Game Operations:
//   - POST /api/sessions/{id}/execute - {"Move": 5}, {"Shoot": [1, 2]}, "Quit"
//   - POST /api/sessions/{id}/events - "Pause", "SaveInstanceState", ...
//   - GET /api/sessions/{id}/response - Last response JSON
//   - GET /api/sessions/{id}/error - Last recorded failure
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration
//
// Browser:
//   - GET / - Create a game and redirect to its page
//   - GET /play/{id} - The game's initial HTML
//   - GET /ws?session={id} - WebSocket play
//
// Error Handling:
//
// Boundary failures are returned as JSON with the status name:
//
//	{
//	  "error": "[execute] decode on handle 3: ...",
//	  "status": "decode"
//	}
//
// invalid_handle maps to 404, decode and config to 400, engine to 422 and
// everything else to 500.
package api
