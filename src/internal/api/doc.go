// Package api provides the HTTP API of the "serve" command.
//
// The API exposes the crawler IP list and the lookups built on it:
//   - the artifact itself, regenerated on demand
//   - artifact and allow-list status
//   - the endpoint registry
//   - address checks with optional reverse DNS verification
//   - Prometheus metrics
//
// # Response Format
//
// All successful JSON responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "invalid_request",
//	    "message": "Human-readable error message"
//	  }
//	}
//
// GET /api/v1/list is the exception: it answers with the artifact as an
// attachment, as plain text when echo is set, or with the "no content" message.
package api
