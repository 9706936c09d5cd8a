// Package httputil holds the response helpers shared by all API handlers.
//
// Success helpers (OK, Created, NoContent) write plain JSON bodies. Errors
// go out as an ErrorResponse envelope: a short title the frontend can show
// as a toast, an Italian user-facing message saying what to do about it,
// and a stable machine code. Handlers never write to http.ResponseWriter
// directly.
package httputil
