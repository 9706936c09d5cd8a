package ingest

import (
	"errors"
	"fmt"
)

// RejectError means the file content signature identifies a different report
// than the one this import path expects. The user needs a different file, not
// a retry. Guidance names the export they should upload instead.
type RejectError struct {
	Detected string
	Guidance string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("wrong file: %s (%s)", e.Detected, e.Guidance)
}

var (
	// ErrEmptyFile is returned when the uploaded buffer has no content.
	ErrEmptyFile = errors.New("empty file")

	// ErrHeaderNotFound is returned when no row in the scanned window
	// matches any of the expected column fragment sets. Usually a changed
	// export version or a corrupted download.
	ErrHeaderNotFound = errors.New("column headers not found")

	// ErrNoValidRows is returned when the file parsed structurally but
	// every data row failed a row-level guard.
	ErrNoValidRows = errors.New("no valid rows found")

	// ErrLegacyWorkbook is returned for pre-2007 .xls compound documents,
	// which this pipeline does not decode.
	ErrLegacyWorkbook = errors.New("legacy .xls workbook: re-export as .xlsx or CSV")
)
