// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query provides the HTTP client for the portfolio question-answering
// backend.
//
// The backend exposes two endpoints under a common base URL:
//
//	POST {base}/query   {"question": "...", "n_results": 3}
//	                    -> 2xx {"answer": "...", "sources": [{"content": "..."}]}
//	                    -> non-2xx {"error": "..."}
//	GET  {base}/stats   -> 2xx {"document_count": 12}
//
// # Key Types
//
//   - Client: issues the two requests; safe for concurrent use
//   - Result: Answer or Failure, the outcome of one Ask call
//   - Health: outcome of one Health call
//   - ClientError: typed error carried by a Failure
//
// Ask and Health never return Go errors. Every transport problem (refused
// connection, timeout, unreadable body) and every backend error payload is
// folded into the returned value, so callers branch on the variant instead
// of handling errors:
//
//	switch r := client.Ask(ctx, "What projects has she built?", 3).(type) {
//	case query.Answer:
//	    fmt.Println(r.Text)
//	case query.Failure:
//	    fmt.Println(r.Kind, r.Reason)
//	}
//
// Requests are single-shot: no retries, no backoff, no caching. The caller
// decides whether to ask again. With ClientConfig.RequestsPerMinute set,
// requests past the burst wait for the limiter and fail as timeouts when
// the context deadline comes first.
package query
