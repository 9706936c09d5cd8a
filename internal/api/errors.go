package api

import (
	"errors"
	"net/http"

	"github.com/pienissimo/opsdash/internal/ingest"
	"github.com/pienissimo/opsdash/internal/pkg/httputil"
)

// writeImportError maps pipeline failures onto user-facing envelopes. The
// message always says what to upload instead; "errore interno" is reserved
// for failures the user cannot fix.
func writeImportError(w http.ResponseWriter, err error) {
	var reject *ingest.RejectError
	switch {
	case errors.As(err, &reject):
		httputil.Error(w, http.StatusUnprocessableEntity,
			"File non riconosciuto",
			"Rilevato: "+reject.Detected+". "+reject.Guidance+".",
			"format_rejected")

	case errors.Is(err, ingest.ErrEmptyFile):
		httputil.Error(w, http.StatusBadRequest,
			"File vuoto",
			"Il file caricato non contiene dati.",
			"empty_file")

	case errors.Is(err, ingest.ErrHeaderNotFound):
		httputil.Error(w, http.StatusUnprocessableEntity,
			"Intestazione non trovata",
			"Le colonne attese non sono presenti nel file. Verifica di aver esportato il report corretto.",
			"header_not_found")

	case errors.Is(err, ingest.ErrNoValidRows):
		httputil.Error(w, http.StatusUnprocessableEntity,
			"Nessuna riga valida",
			"Il file è stato letto ma nessuna riga conteneva dati utilizzabili.",
			"no_valid_rows")

	case errors.Is(err, ingest.ErrLegacyWorkbook):
		httputil.Error(w, http.StatusUnsupportedMediaType,
			"Formato non supportato",
			"I file .xls non sono supportati: riesporta il report come .xlsx o .csv.",
			"legacy_workbook")

	default:
		httputil.InternalError(w, err)
	}
}
