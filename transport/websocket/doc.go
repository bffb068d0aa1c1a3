// Package websocket lets browsers play a game over a WebSocket.
//
// Each connection is attached to one game handle, passed as ?session=<handle>.
// Every text message the browser sends is an action payload, executed
// through the engine boundary. The resulting response JSON is sent to every
// connection attached to the same handle, so several tabs can watch one
// game. A failed action produces an ErrorMessage for the sender only.
//
// Usage:
//
//	hub := websocket.NewHub(service, logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, h)
//	})
//
// The hub's event loop owns registration and fan-out; client read and write
// pumps run in their own goroutines and stop when the connection closes or
// the hub's context is cancelled.
package websocket
