// Package live serves components to browsers over websockets.
//
// A Server answers "/" with a bootstrap page carrying a small client
// script. The script opens a websocket to Config.Path; the server mounts
// a fresh instance of the root component for that connection on a
// remote.Host and streams the resulting host operations as patch frames.
// Client events come back as event frames, run as one scheduler task, and
// every resulting update is flushed as the next patch.
//
//	srv := live.New(app.Counter, live.Config{Addr: ":3000"})
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Sessions are isolated: each has its own renderer, scheduler and node ids.
// A panicking event handler is reported to the client as a non-fatal L001
// error; a failed mount sends a fatal L002 and closes the connection.
//
// Metrics are registered on Config.Registry under the "reactor" namespace
// and served at Config.MetricsPath. Mounts and events are traced with the
// global OpenTelemetry tracer provider.
package live
