package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetops/internal/hub"
	"fleetops/internal/pipeline"
	"fleetops/internal/service/fleet"
)

// Handler carries the pipeline and collaborators every endpoint needs.
type Handler struct {
	pipeline   *pipeline.Pipeline
	fleet      *fleet.Service
	registry   *hub.Registry
	sendBuffer int
	logger     *slog.Logger
}

func NewHandler(p *pipeline.Pipeline, svc *fleet.Service, registry *hub.Registry, sendBuffer int, logger *slog.Logger) *Handler {
	return &Handler{pipeline: p, fleet: svc, registry: registry, sendBuffer: sendBuffer, logger: logger}
}

func (h *Handler) UpdateTruck(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeBody[fleet.UpdateTruckCommand](w, r)
	if !ok {
		return
	}
	cmd.TruckID = chi.URLParam(r, "truckID")
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.UpdateTruck))
}

func (h *Handler) GetTruck(w http.ResponseWriter, r *http.Request) {
	q := fleet.GetTruckQuery{TruckID: chi.URLParam(r, "truckID")}
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, q, h.fleet.GetTruck))
}

func (h *Handler) GetTruckStats(w http.ResponseWriter, r *http.Request) {
	q := fleet.GetTruckStatsQuery{
		OrderBy:    r.URL.Query().Get("orderBy"),
		Descending: r.URL.Query().Get("desc") == "true",
		Page:       queryInt(r, "page", 1),
		PageSize:   queryInt(r, "pageSize", 10),
	}
	var ok bool
	if q.Start, ok = queryTime(w, r, "start"); !ok {
		return
	}
	if q.End, ok = queryTime(w, r, "end"); !ok {
		return
	}
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, q, h.fleet.GetTruckStats))
}

func (h *Handler) CreateLoad(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeBody[fleet.CreateLoadCommand](w, r)
	if !ok {
		return
	}
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.CreateLoad))
}

func (h *Handler) UpdateLoadStatus(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeBody[fleet.UpdateLoadStatusCommand](w, r)
	if !ok {
		return
	}
	cmd.LoadID = chi.URLParam(r, "loadID")
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.UpdateLoadStatus))
}

func (h *Handler) SetDriverDeviceToken(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeBody[fleet.SetDriverDeviceTokenCommand](w, r)
	if !ok {
		return
	}
	cmd.UserID = chi.URLParam(r, "driverID")
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.SetDriverDeviceToken))
}

func (h *Handler) UpdateTruckLocation(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeBody[fleet.UpdateTruckLocationCommand](w, r)
	if !ok {
		return
	}
	cmd.DriverID = chi.URLParam(r, "driverID")
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.UpdateTruckLocation))
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := fleet.ListEmployeesQuery{
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", 10),
	}
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, q, h.fleet.ListEmployees))
}

func (h *Handler) RaiseNotification(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeBody[fleet.RaiseNotificationCommand](w, r)
	if !ok {
		return
	}
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.RaiseNotification))
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	cmd := fleet.MarkNotificationReadCommand{NotificationID: chi.URLParam(r, "notificationID")}
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.MarkNotificationRead))
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q := fleet.ListNotificationsQuery{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", 10),
	}
	writeResult(w, pipeline.Run(r.Context(), h.pipeline, q, h.fleet.ListNotifications))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// queryTime parses a required RFC 3339 query parameter, writing a failure
// result when it is missing or malformed.
func queryTime(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeResult(w, pipeline.Fail[struct{}](key+" must be an RFC 3339 timestamp."))
		return time.Time{}, false
	}
	return t, true
}
