// Package server exposes the action protocol over HTTP.
//
// The server is a chi router in front of a session.Service and the reference
// UI host. Model output is posted as-is; the server parses, validates and
// executes it, records the batch in the undo/redo log and persists the log
// for the configured session.
//
// # API Endpoints
//
//   - POST /actions: run a raw command payload (query: skipErrors, silent)
//   - POST /actions/validate: parse and validate without executing
//   - GET /actions/schema: command variants, modes, tones and step bounds
//   - GET /state: the host's UI state
//   - GET /stats, GET /reports, DELETE /reports: the executor's run log
//   - GET /history, DELETE /history: the undo/redo log
//   - POST /history/undo, /history/redo, /history/goto/{index}
//   - GET /history/export, POST /history/import
//   - GET /event: Server-Sent Events for every bus event
//   - GET /ws: WebSocket; each client message runs one batch
//
// Errors use a common envelope:
//
//	{"error": {"code": "INVALID_REQUEST", "message": "..."}}
//
// # Streaming
//
// Both /event and /ws forward bus events as {"type", "properties"} objects.
// Each client has a bounded queue; events that do not fit are dropped and
// logged rather than blocking the publisher.
//
// # Usage Example
//
//	cfg := server.FromAppConfig(appConfig)
//	srv := server.New(cfg, service, host, bus)
//
//	go func() {
//		<-ctx.Done()
//		srv.Shutdown(context.Background())
//	}()
//	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
//		return err
//	}
package server
