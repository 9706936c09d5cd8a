// Package api exposes the dashboard's HTTP surface.
package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pienissimo/opsdash/internal/domain"
	"github.com/pienissimo/opsdash/internal/ingest"
	"github.com/pienissimo/opsdash/internal/kpi"
	"github.com/pienissimo/opsdash/internal/pkg/httputil"
	"github.com/pienissimo/opsdash/internal/pkg/logger"
	"github.com/pienissimo/opsdash/internal/report"
	"github.com/pienissimo/opsdash/internal/repository/postgres"
)

// ImportRunner runs one upload through the ingest pipeline.
type ImportRunner interface {
	Import(ctx context.Context, buf []byte, typ domain.ImportType, dept domain.Department) (*ingest.Result, error)
}

// DashboardProvider serves KPI snapshots and drops them after writes.
type DashboardProvider interface {
	Dashboard(ctx context.Context, tf kpi.Timeframe, anchor time.Time) (*kpi.Snapshot, error)
	Invalidate(ctx context.Context)
}

// TicketSyncer triggers one Zoho Desk sync on demand.
type TicketSyncer interface {
	SyncOnce(ctx context.Context) error
}

// TimesheetStore is the manual-entry slice of the store.
type TimesheetStore interface {
	InsertTimesheetEntry(ctx context.Context, e *domain.TimesheetEntry) error
	ListTimesheetEntries(ctx context.Context, from, to string) ([]domain.TimesheetEntry, error)
	DeleteTimesheetEntry(ctx context.Context, id int64) error
	InsertActivityType(ctx context.Context, name string) error
	ListActivityTypes(ctx context.Context) ([]string, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds every dependency the routes need. Syncer may be nil when
// the Zoho integration is disabled.
type Handlers struct {
	Importer    ImportRunner
	KPI         DashboardProvider
	Reporter    *report.Renderer
	Syncer      TicketSyncer
	Timesheet   TimesheetStore
	DB          Pinger
	MaxUploadMB int

	log *logger.Logger
}

// importRoutes maps the URL segment to pipeline parameters. The two ticket
// routes differ only in destination department.
var importRoutes = map[string]struct {
	Type domain.ImportType
	Dept domain.Department
}{
	"chat":                {domain.ImportChat, ""},
	"training":            {domain.ImportTraining, ""},
	"tickets-support":     {domain.ImportTickets, domain.DeptSupport},
	"tickets-development": {domain.ImportTickets, domain.DeptDevelopment},
}

func (h *Handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	route, ok := importRoutes[chi.URLParam(r, "type")]
	if !ok {
		httputil.NotFound(w, "tipo di import sconosciuto: "+chi.URLParam(r, "type"))
		return
	}

	maxBytes := int64(h.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		httputil.BadRequest(w, "upload multipart non valido o file troppo grande")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "campo 'file' mancante")
		return
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	res, err := h.Importer.Import(r.Context(), buf, route.Type, route.Dept)
	if err != nil {
		h.log.Warn("import failed", "type", string(route.Type), "file", header.Filename, "error", err)
		writeImportError(w, err)
		return
	}

	h.KPI.Invalidate(r.Context())
	h.log.Info("import done", "type", string(route.Type), "file", header.Filename,
		"accepted", res.Accepted, "total", res.TotalRows, "elapsed", res.Elapsed.String())
	httputil.OK(w, res)
}

func (h *Handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	httputil.OK(w, snap)
}

func (h *Handlers) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	text, err := h.Reporter.Render(snap)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"period": snap.Period.Label, "text": text})
}

// loadSnapshot resolves the timeframe/anchor query parameters and fetches
// the period snapshot. Defaults: current week.
func (h *Handlers) loadSnapshot(w http.ResponseWriter, r *http.Request) (*kpi.Snapshot, bool) {
	tf := kpi.Timeframe(r.URL.Query().Get("timeframe"))
	if tf == "" {
		tf = kpi.TimeframeWeek
	}

	anchor := time.Now().UTC()
	if raw := r.URL.Query().Get("anchor"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.BadRequest(w, "anchor deve essere una data YYYY-MM-DD")
			return nil, false
		}
		anchor = parsed
	}

	snap, err := h.KPI.Dashboard(r.Context(), tf, anchor)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, false
	}
	return snap, true
}

func (h *Handlers) handleZohoSync(w http.ResponseWriter, r *http.Request) {
	if h.Syncer == nil {
		httputil.Error(w, http.StatusServiceUnavailable,
			"Sync non configurato",
			"L'integrazione Zoho Desk non è abilitata su questo server.",
			"sync_disabled")
		return
	}
	if err := h.Syncer.SyncOnce(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}
	h.KPI.Invalidate(r.Context())
	httputil.OK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) handleTimesheetList(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		// Default to the current month.
		now := time.Now().UTC()
		period, _ := kpi.ResolvePeriod(kpi.TimeframeMonth, now)
		from, to = period.DateRange()
	}

	entries, err := h.Timesheet.ListTimesheetEntries(r.Context(), from, to)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.TimesheetEntry{}
	}
	httputil.OK(w, entries)
}

func (h *Handlers) handleTimesheetCreate(w http.ResponseWriter, r *http.Request) {
	var e domain.TimesheetEntry
	if !httputil.Decode(w, r, &e) {
		return
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		httputil.BadRequest(w, "date deve essere YYYY-MM-DD")
		return
	}
	if e.Hours < 0 {
		httputil.BadRequest(w, "hours non può essere negativo")
		return
	}

	if err := h.Timesheet.InsertTimesheetEntry(r.Context(), &e); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, e)
}

func (h *Handlers) handleTimesheetDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "id non valido")
		return
	}
	switch err := h.Timesheet.DeleteTimesheetEntry(r.Context(), id); err {
	case nil:
		httputil.NoContent(w)
	case postgres.ErrNotFound:
		httputil.NotFound(w, "voce timesheet inesistente")
	default:
		httputil.InternalError(w, err)
	}
}

func (h *Handlers) handleActivityTypesList(w http.ResponseWriter, r *http.Request) {
	types, err := h.Timesheet.ListActivityTypes(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	httputil.OK(w, types)
}

func (h *Handlers) handleActivityTypesCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if body.Name == "" {
		httputil.BadRequest(w, "name è obbligatorio")
		return
	}
	if err := h.Timesheet.InsertActivityType(r.Context(), body.Name); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, body)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			httputil.JSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	httputil.OK(w, status)
}
