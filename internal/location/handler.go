package location

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/attendance-tracking/internal/auth"
	"github.com/frahmantamala/attendance-tracking/internal/transport"
	"github.com/frahmantamala/attendance-tracking/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// UpdateLocation receives a coordinate from the caller's browser.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateLocationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sample, err := h.Service.UpdateLocation(r.Context(), u, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sample)
}

// MyLocation returns the caller's newest sample.
func (h *Handler) MyLocation(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sample, err := h.Service.LastLocation(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sample)
}

// UserLocation returns another user's newest sample. Only admin roles may
// look up someone else's position; everyone may look up their own.
func (h *Handler) UserLocation(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if viewer.ID != userID && !viewer.Role.CanAdminister() {
		h.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	target, err := h.Service.users.GetByID(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if !target.Role.VisibleTo(viewer.Role) {
		h.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	sample, err := h.Service.LastLocation(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sample)
}

// Address reverse geocodes a coordinate pair from the query string.
func (h *Handler) Address(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		h.WriteError(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	if err := (UpdateLocationDTO{Latitude: lat, Longitude: lng}).Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"address": h.Service.Address(r.Context(), lat, lng),
	})
}
