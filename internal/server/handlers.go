package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/odomo-app/odomo/internal/auth"
	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/service/pet"
	"github.com/odomo-app/odomo/internal/storage"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	db                  *storage.DB
	jwtMgr              *auth.JWTManager
	petSvc              *pet.Service
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	DB                  *storage.DB
	JWTMgr              *auth.JWTManager
	PetSvc              *pet.Service
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		db:                  d.DB,
		jwtMgr:              d.JWTMgr,
		petSvc:              d.PetSvc,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
	}
}

// ownerID extracts the authenticated owner from the request context.
// Returns false (after writing a 401) when no claims are present.
func (h *Handlers) ownerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "no claims in context")
		return uuid.Nil, false
	}
	return claims.OwnerID, true
}

// writeDomainError maps a service error to an HTTP response. Domain errors
// carry their own code; anything else is a 500 with the detail logged, not
// leaked.
func (h *Handlers) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *model.DomainError
	if errors.As(err, &derr) {
		writeError(w, r, domainStatus(derr.Code), string(derr.Code), derr.Message)
		return
	}
	h.logger.Error("request failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()),
	)
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
}

func domainStatus(code model.ErrorCode) int {
	switch code {
	case model.CodeNotFound:
		return http.StatusNotFound
	case model.CodeConflict:
		return http.StatusConflict
	case model.CodeInvalidInput:
		return http.StatusBadRequest
	case model.CodePreconditionFailed, model.CodeTerminalState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HandleCreatePet handles POST /v1/pet.
func (h *Handlers) HandleCreatePet(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	var req model.CreatePetRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	stats, err := h.petSvc.Create(r.Context(), owner, req.Name)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, stats)
}

// HandleGetPet handles GET /v1/pet.
func (h *Handlers) HandleGetPet(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	stats, err := h.petSvc.Stats(r.Context(), owner)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// HandleDeletePet handles DELETE /v1/pet.
func (h *Handlers) HandleDeletePet(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	if err := h.petSvc.Delete(r.Context(), owner); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleInteract handles POST /v1/pet/interact.
func (h *Handlers) HandleInteract(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	var req model.InteractRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	stats, err := h.petSvc.Interact(r.Context(), owner, req.Type, req.Amount)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// HandleAddExperience handles POST /v1/pet/xp.
func (h *Handlers) HandleAddExperience(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	var req model.AddExperienceRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	stats, err := h.petSvc.AddExperience(r.Context(), owner, req.Amount)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// HandleBuyItem handles POST /v1/shop/buy.
func (h *Handlers) HandleBuyItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	var req model.BuyItemRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	resp, err := h.petSvc.BuyItem(r.Context(), owner, req.ItemType, req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// HandleUseItem handles POST /v1/items/use.
func (h *Handlers) HandleUseItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	var req model.UseItemRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	resp, err := h.petSvc.UseItem(r.Context(), owner, req.ItemType)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// HandleSyncSteps handles POST /v1/sync/steps.
func (h *Handlers) HandleSyncSteps(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	var req model.SyncStepsRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	resp, err := h.petSvc.SyncSteps(r.Context(), owner, req.Steps)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// HandleListInventory handles GET /v1/inventory.
func (h *Handlers) HandleListInventory(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}

	entries, err := h.petSvc.Inventory(r.Context(), owner)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.InventoryEntry{}
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, map[string]any{
		"status":  status,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}
