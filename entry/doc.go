// Package entry implements the entry-point logic for the signer's server processes,
// including opinionated defaults for logging, request tracing, and shutdown.
//
// Example usage:
//
//	func main() {
//		app := entry.NewApplication("request-signer", slog.LevelInfo)
//		defer app.Stop()
//
//		r := mux.NewRouter()
//		signapi.NewServer(audit.Discard).RegisterRoutes(r)
//
//		if err := entry.RunServer(app.Context(), app.Log(), r, "", 5000); err != nil {
//			app.Fail("Server failed", err)
//		}
//	}
package entry
