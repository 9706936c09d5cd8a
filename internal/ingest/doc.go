// Package ingest turns raw export files from the live-chat and helpdesk
// platforms into canonical records and hands them to storage in batches.
//
// The pipeline leans tolerant: the exports are produced by humans
// clicking "download" in two different SaaS tools, in two languages, with
// banner rows above the real table and the occasional malformed line. A bad
// row is skipped and counted, never fatal; only structural failures (empty
// file, wrong report type, missing headers, zero valid rows) abort an import.
//
// The pipeline holds no state across invocations: one Import call reads one
// buffer, writes its batches, and returns a Result.
package ingest
