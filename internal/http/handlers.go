package http

import (
	"net/http"
	"strconv"

	"foodrescue/internal/log"
	"foodrescue/internal/services"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.RecentEntries(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

func (s *Server) handleCreateEntries(w http.ResponseWriter, r *http.Request) {
	drafts, single, err := decodeEntries(r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	created, err := s.service.CreateEntries(r.Context(), drafts)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if single && len(created) == 1 {
		writeJSON(w, http.StatusCreated, toEntryResponse(created[0]))
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponses(created))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	payload, err := readUpload(w, r)
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	res, err := s.service.Import(r.Context(), payload, parseBool(r, "replace"))
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		Rows:     res.Rows,
		Accepted: res.Accepted,
		Replaced: res.Replaced,
		Entries:  toEntryResponses(res.Entries),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := services.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	export, err := s.service.Export(r.Context(), format)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Payload)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(summary))
}

func (s *Server) handleNearExpiry(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.NearExpiry(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.service.Alerts(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponses(alerts))
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Inventory(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(view))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.RunScan(r.Context())
	if err != nil {
		writeError(w, r, log.OpScan, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		Scanned:   report.Scanned,
		NewAlerts: toAlertResponses(report.New),
		LogSize:   report.LogSize,
		Notified:  report.Notified,
	})
}
