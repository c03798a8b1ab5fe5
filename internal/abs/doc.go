// Package abs provides an HTTP client for the Audiobookshelf server API.
//
// # Overview
//
// The client covers the read-only endpoints shelver browses: server status,
// the library list, and the paged listings that back every collection view.
// The paged calls share the signature the lazyload package expects from a
// page fetcher, so collection loaders can bind client methods directly.
//
// # Architecture
//
//   - client.go: Client construction, request execution, listing calls
//   - types.go: JSON payloads and their conversion into library types
//
// # Client Usage
//
//	client, err := abs.NewClient("https://abs.example.com", token,
//		abs.WithLogger(log), abs.WithRetryMax(2))
//	if err != nil {
//		return err
//	}
//
//	lib, err := client.ResolveLibrary(ctx, "Audiobooks")
//	books, total, err := client.FetchAudiobooks(ctx, 0, library.SortTitle, true, lib)
//
// # API Endpoints
//
//   - GET /status: server version, no auth
//   - GET /api/libraries: libraries visible to the token
//   - GET /api/libraries/{id}/items: books and podcasts, paged
//   - GET /api/libraries/{id}/series: series, paged
//
// Paged requests send limit (always lazyload.PageSize), page, sort and desc.
// Books in a series are the items listing filtered by "series.<base64 id>".
// Responses share the {results, total} envelope.
//
// # Transport
//
// Requests go through go-retryablehttp so connection errors and 5xx
// responses on these idempotent GETs are retried a small number of times
// before the error reaches the caller. Each request carries a ULID in
// X-Request-ID, which is also logged, to correlate client and server logs.
//
// # Error Handling
//
//   - 401/403 wrap ErrUnauthorized
//   - other 4xx/5xx return "api <path> returned status N"
//   - malformed JSON returns "decode response: ..."
//   - CheckServer wraps ErrUnsupportedServer for servers older than 2.0.0
//
// The collection loaders treat all of these the same: the fetch failed.
package abs
