package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"battery-health/internal/features"
	"battery-health/internal/ml"
	"battery-health/internal/report"
	"battery-health/internal/session"
	"battery-health/internal/storage"
	"battery-health/internal/views"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const maxRequestBody = 64 << 10

// predictRequest uses pointers so a missing field is told apart from zero.
type predictRequest struct {
	Voltage     *float64 `json:"voltage"`
	Current     *float64 `json:"current"`
	Temperature *float64 `json:"temperature"`
}

type predictResponse struct {
	SessionID string        `json:"sessionId"`
	Event     session.Event `json:"event"`
}

type historyResponse struct {
	SessionID string          `json:"sessionId"`
	Events    []session.Event `json:"events"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ml.ErrModelUnavailable), errors.Is(err, report.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ml.ErrFeatureMismatch), errors.Is(err, ml.ErrInvalidScore):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrReportNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (d *Dashboard) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var missing []string
	if req.Voltage == nil {
		missing = append(missing, "voltage")
	}
	if req.Current == nil {
		missing = append(missing, "current")
	}
	if req.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "missing fields: "+strings.Join(missing, ", "))
		return
	}

	reading := features.SensorReading{
		Voltage:     *req.Voltage,
		Current:     *req.Current,
		Temperature: *req.Temperature,
	}

	e, err := d.session.Predict(r.Context(), reading)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{SessionID: d.session.ID(), Event: e})
}

func (d *Dashboard) handleStatus(w http.ResponseWriter, r *http.Request) {
	e, ok := d.session.Last()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, views.NewStatus(e))
}

func (d *Dashboard) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResponse{
		SessionID: d.session.ID(),
		Events:    d.session.Snapshot(),
	})
}

func (d *Dashboard) handleCharts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.Build(d.session.Snapshot()))
}

func (d *Dashboard) handleReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatPDF.Name
	}

	if d.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, report.ErrExportUnavailable.Error())
		return
	}
	if formats := d.exporter.Formats(); !slices.Contains(formats, format) {
		writeError(w, http.StatusBadRequest, "unsupported format "+strconv.Quote(format)+", expected one of: "+strings.Join(formats, ", "))
		return
	}

	rep, err := d.exporter.Export(format, d.session.ID(), d.session.Snapshot())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", rep.Format.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(rep.Data)
}

func (d *Dashboard) handleListReports(w http.ResponseWriter, r *http.Request) {
	if d.reports == nil {
		writeError(w, http.StatusNotFound, "report archive is not configured")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = d.session.ID()
	}

	records, err := d.reports.ListReports(sessionID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if records == nil {
		records = []storage.ReportRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (d *Dashboard) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if d.reports == nil {
		writeError(w, http.StatusNotFound, "report archive is not configured")
		return
	}

	key := mux.Vars(r)["key"]
	data, err := d.reports.GetReport(key)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(key))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// contentTypeFor derives the content type from the format suffix of an
// archive key.
func contentTypeFor(key string) string {
	i := strings.LastIndex(key, "_")
	if i < 0 {
		return "application/octet-stream"
	}
	switch key[i+1:] {
	case report.FormatPDF.Name:
		return report.FormatPDF.ContentType
	case report.FormatCSV.Name:
		return report.FormatCSV.ContentType
	case report.FormatText.Name:
		return report.FormatText.ContentType
	case report.FormatJSON.Name:
		return report.FormatJSON.ContentType
	default:
		return "application/octet-stream"
	}
}
