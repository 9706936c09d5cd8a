// Package domain defines the canonical record types for the opsdash BI
// backend.
//
// Types in this package are pure value objects with no behavior beyond
// pure functions on the type. They are the shared language between the
// ingest pipeline, the repositories, and the KPI layer: every field is
// already normalized by internal/ingest before a value of these types
// exists.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - Constants and enums belong here
package domain
