package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-fleet/internal/fleet/application"
	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-fleet/pkg/domain"
)

const requestTimeout = 10 * time.Second

// FleetBuses groups the buses the HTTP layer dispatches to.
type FleetBuses struct {
	RegisterVehicle    application.RegisterVehicleBus
	BoardPassenger     application.BoardPassengerBus
	DisembarkPassenger application.DisembarkPassengerBus
	FindVehicle        application.FindVehicleBus
	FleetStatus        application.FleetStatusBus
	PassengerHistory   application.PassengerHistoryBus
}

type FleetHTTPHandler struct {
	buses       FleetBuses
	idGenerator pkgDomain.IDGenerator[string]
	logger      pkgApp.AppLogger
}

func NewFleetHTTPHandler(buses FleetBuses, idGenerator pkgDomain.IDGenerator[string], logger pkgApp.AppLogger) *FleetHTTPHandler {
	return &FleetHTTPHandler{
		buses:       buses,
		idGenerator: idGenerator,
		logger:      logger,
	}
}

type registerVehicleRequest struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"`
	Capacity      int      `json:"capacity"`
	AcceptedRoles []string `json:"acceptedRoles"`
}

type boardPassengerRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (h *FleetHTTPHandler) HandleRegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var req registerVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// The ID is assigned here so the created vehicle can be read back.
	id := req.ID
	if id == "" {
		id = h.idGenerator()
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	command := application.NewRegisterVehicleCommand(application.RegisterVehicleData{
		VehicleID:     id,
		Kind:          req.Kind,
		Capacity:      req.Capacity,
		AcceptedRoles: req.AcceptedRoles,
	})
	if err := h.buses.RegisterVehicle.Dispatch(ctx, command); err != nil {
		h.fail(ctx, w, err)
		return
	}
	h.respondWithVehicle(ctx, w, id, http.StatusCreated)
}

func (h *FleetHTTPHandler) HandleFindVehicle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	h.respondWithVehicle(ctx, w, chi.URLParam(r, "vehicleID"), http.StatusOK)
}

func (h *FleetHTTPHandler) HandleBoardPassenger(w http.ResponseWriter, r *http.Request) {
	var req boardPassengerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	vehicleID := chi.URLParam(r, "vehicleID")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	command := application.NewBoardPassengerCommand(application.BoardPassengerData{
		VehicleID:     vehicleID,
		PassengerName: req.Name,
		Role:          req.Role,
	})
	if err := h.buses.BoardPassenger.Dispatch(ctx, command); err != nil {
		h.fail(ctx, w, err)
		return
	}
	h.respondWithVehicle(ctx, w, vehicleID, http.StatusCreated)
}

func (h *FleetHTTPHandler) HandleDisembarkPassenger(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")
	name, err := passengerNameParam(r)
	if err != nil {
		writeError(w, "invalid passenger name", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	command := application.NewDisembarkPassengerCommand(application.DisembarkPassengerData{
		VehicleID:     vehicleID,
		PassengerName: name,
	})
	if err := h.buses.DisembarkPassenger.Dispatch(ctx, command); err != nil {
		h.fail(ctx, w, err)
		return
	}
	h.respondWithVehicle(ctx, w, vehicleID, http.StatusOK)
}

func (h *FleetHTTPHandler) HandleFleetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.buses.FleetStatus.Dispatch(ctx, application.NewFleetStatusQuery())
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *FleetHTTPHandler) HandlePassengerHistory(w http.ResponseWriter, r *http.Request) {
	name, err := passengerNameParam(r)
	if err != nil {
		writeError(w, "invalid passenger name", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	history, err := h.buses.PassengerHistory.Dispatch(ctx, application.NewPassengerHistoryQuery(application.PassengerHistoryData{
		PassengerName: name,
	}))
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	if history == nil {
		history = []domain.OccupancyChange{}
	}
	writeJSON(w, http.StatusOK, history)
}

// passengerNameParam returns the decoded passenger name. chi matches on
// r.URL.RawPath when it is set, so only then is the value still escaped.
func passengerNameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "passengerName")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

func (h *FleetHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Post("/vehicles", h.HandleRegisterVehicle)
	router.Get("/vehicles/{vehicleID}", h.HandleFindVehicle)
	router.Post("/vehicles/{vehicleID}/passengers", h.HandleBoardPassenger)
	router.Delete("/vehicles/{vehicleID}/passengers/{passengerName}", h.HandleDisembarkPassenger)
	router.Get("/fleet", h.HandleFleetStatus)
	router.Get("/passengers/{passengerName}/history", h.HandlePassengerHistory)
}

func (h *FleetHTTPHandler) respondWithVehicle(ctx context.Context, w http.ResponseWriter, vehicleID string, status int) {
	snapshot, err := h.buses.FindVehicle.Dispatch(ctx, application.NewFindVehicleQuery(application.FindVehicleData{
		VehicleID: vehicleID,
	}))
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	writeJSON(w, status, snapshot)
}

func (h *FleetHTTPHandler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		pkgApp.LogError(ctx, h.logger, "request failed", err, nil)
	}
	writeError(w, err.Error(), status)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrRoleNotAccepted):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrVehicleNotFound), errors.Is(err, domain.ErrNotSeatedHere):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCapacityExceeded), errors.Is(err, domain.ErrDuplicateOccupancy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
