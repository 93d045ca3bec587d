// Package server exposes dominant color analysis to MCP clients.
//
// Requests arrive as JSON-RPC 2.0, one object per line on stdin, and each
// response is written as one line on stdout. The methods handled are
// initialize, tools/list, tools/call and ping; notifications/initialized is
// accepted without a reply.
//
// Two tools are offered. image_load decodes a file, caches it by path and
// reports its metadata. image_dominant_colors ranks the quantized colors of
// a cached or freshly loaded image, optionally limited to a pixel region or
// a named part such as "top-left".
//
// A failing tool yields error code -32000 with the Go error text in data.
// Lines that are not a JSON-RPC request yield -32700, malformed tools/call
// params -32602 and unknown methods -32601. Serve stops as soon as its
// context is canceled, even while waiting on input.
// Logging goes to the injected zap logger since stdout carries the protocol.
//
//	srv := server.New(server.Options{Analyzer: analyzer, Logger: logger})
//	err := srv.Serve(ctx, os.Stdin, os.Stdout)
package server
