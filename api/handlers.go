/*
handlers.go - HTTP API handlers for the Faraid engine

PURPOSE:
  Exposes the Faraid engine and the estate records via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the faraid
  and estate packages.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                       Stateless calculation
    POST   /api/classify                        Eligible vs excluded heirs
    GET    /api/rules                           Fixed-share rule table

  Owners & family:
    GET    /api/owners                          List owners
    POST   /api/owners                          Create owner
    GET    /api/owners/{id}                     Owner details
    GET    /api/owners/{id}/family              List family members
    POST   /api/owners/{id}/family              Add family member
    DELETE /api/owners/{id}/family/{memberID}   Remove family member
    GET    /api/owners/{id}/assets              List assets
    POST   /api/owners/{id}/assets              Register asset (pending)

  Assets & distributions:
    GET    /api/assets/{id}                     Asset details
    POST   /api/assets/{id}/distribution        Compute and store
    GET    /api/assets/{id}/distribution        Latest, with stale flag
    GET    /api/assets/{id}/distributions       History, newest first

  Admin:
    GET    /api/admin/assets/pending            Review queue
    POST   /api/admin/assets/{id}/approve       Approve asset
    POST   /api/admin/assets/{id}/reject        Reject asset

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: estate.Store (SQLite in production, memory in tests)
  - Families: family-file factory used by the demo scenarios
  - Logger: zap logger for failures

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Asset in the wrong review state
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amanah/faraid-engine/estate"
	"github.com/amanah/faraid-engine/factory"
	"github.com/amanah/faraid-engine/faraid"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    estate.Store
	Families *factory.FamilyFactory
	Logger   *zap.Logger
	Now      func() time.Time

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store estate.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Families: factory.NewFamilyFactory(),
		Logger:   logger,
		Now:      time.Now,
	}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate runs the engine over the posted family without storing anything.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	gender, err := faraid.ParseGender(req.OwnerGender)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid owner_gender (use male or female)", err)
		return
	}
	if req.EstateValue == nil {
		writeError(w, http.StatusBadRequest, "estate_value is required", nil)
		return
	}
	if err := faraid.ValidateEstateValue(req.EstateValue.Decimal); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid estate_value", err)
		return
	}

	heirs := make([]faraid.Heir, len(req.Heirs))
	for i, dto := range req.Heirs {
		heirs[i] = dto.heir()
	}

	d := faraid.Compute(heirs, req.EstateValue.Decimal, gender)
	writeJSON(w, http.StatusOK, NewCalculationDTO(d))
}

// Classify reports which heirs the engine will consider and why the rest
// are left out.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	gender, err := faraid.ParseGender(req.OwnerGender)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid owner_gender (use male or female)", err)
		return
	}

	heirs := make([]faraid.Heir, len(req.Heirs))
	for i, dto := range req.Heirs {
		heirs[i] = dto.heir()
	}

	writeJSON(w, http.StatusOK, NewClassifyResponse(faraid.Classify(heirs, gender)))
}

// ListRules returns the fixed-share rule table in evaluation order.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, faraid.FixedShareRules())
}

// =============================================================================
// OWNER HANDLERS
// =============================================================================

// ListOwners returns all owners.
func (h *Handler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.Store.ListOwners(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list owners", err)
		return
	}

	dtos := make([]OwnerDTO, len(owners))
	for i, o := range owners {
		dtos[i] = toOwnerDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOwner returns a single owner.
func (h *Handler) GetOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.loadOwner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOwnerDTO(*owner))
}

// CreateOwner creates a new owner.
func (h *Handler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var req CreateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		writeError(w, http.StatusBadRequest, "full_name is required", nil)
		return
	}
	gender, err := faraid.ParseGender(req.Gender)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid gender (use male or female)", err)
		return
	}

	owner := estate.Owner{
		ID:        req.ID,
		FullName:  strings.TrimSpace(req.FullName),
		Gender:    gender,
		CreatedAt: h.Now().UTC(),
	}
	if owner.ID == "" {
		owner.ID = estate.NewID()
	}

	if err := h.Store.SaveOwner(r.Context(), owner); err != nil {
		h.fail(w, r, "Failed to create owner", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOwnerDTO(owner))
}

// =============================================================================
// FAMILY HANDLERS
// =============================================================================

// ListFamily returns an owner's family members in registration order.
func (h *Handler) ListFamily(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.loadOwner(w, r)
	if !ok {
		return
	}

	members, err := h.Store.ListFamilyMembers(r.Context(), owner.ID)
	if err != nil {
		h.fail(w, r, "Failed to list family members", err)
		return
	}

	dtos := make([]FamilyMemberDTO, len(members))
	for i, m := range members {
		dtos[i] = toFamilyMemberDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddFamilyMember registers a relative. Unrecognized labels are accepted
// and reported with recognized=false.
func (h *Handler) AddFamilyMember(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.loadOwner(w, r)
	if !ok {
		return
	}

	var req CreateFamilyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		writeError(w, http.StatusBadRequest, "full_name is required", nil)
		return
	}
	if strings.TrimSpace(req.Relationship) == "" {
		writeError(w, http.StatusBadRequest, "relationship is required", nil)
		return
	}

	member := estate.FamilyMember{
		ID:           req.ID,
		OwnerID:      owner.ID,
		FullName:     strings.TrimSpace(req.FullName),
		Relationship: req.Relationship,
		IC:           req.IC,
		CreatedAt:    h.Now().UTC(),
	}
	if member.ID == "" {
		member.ID = estate.NewID()
	}

	if err := h.Store.SaveFamilyMember(r.Context(), member); err != nil {
		h.fail(w, r, "Failed to add family member", err)
		return
	}
	writeJSON(w, http.StatusCreated, toFamilyMemberDTO(member))
}

// RemoveFamilyMember deletes a relative.
func (h *Handler) RemoveFamilyMember(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	if err := h.Store.DeleteFamilyMember(r.Context(), ownerID, memberID); err != nil {
		h.fail(w, r, "Failed to remove family member", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": memberID})
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

// ListOwnerAssets returns an owner's assets.
func (h *Handler) ListOwnerAssets(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.loadOwner(w, r)
	if !ok {
		return
	}

	assets, err := h.Store.ListAssets(r.Context(), owner.ID)
	if err != nil {
		h.fail(w, r, "Failed to list assets", err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTOs(assets))
}

// CreateAsset registers an asset for review.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.loadOwner(w, r)
	if !ok {
		return
	}

	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required", nil)
		return
	}
	if err := faraid.ValidateEstateValue(req.Value.Decimal); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid value", err)
		return
	}

	now := h.Now().UTC()
	asset := estate.Asset{
		ID:        req.ID,
		OwnerID:   owner.ID,
		Name:      strings.TrimSpace(req.Name),
		Kind:      req.Kind,
		Value:     req.Value.Decimal,
		Status:    estate.AssetPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if asset.ID == "" {
		asset.ID = estate.NewID()
	}

	if err := h.Store.SaveAsset(r.Context(), asset); err != nil {
		h.fail(w, r, "Failed to register asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssetDTO(asset))
}

// GetAsset returns a single asset.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Store.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get asset", err)
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(*asset))
}

// =============================================================================
// DISTRIBUTION HANDLERS
// =============================================================================

// CreateDistribution computes the asset's distribution from the stored
// family and appends it to the history.
// POST /api/assets/{id}/distribution
func (h *Handler) CreateDistribution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := estate.Recalculate(r.Context(), h.Store, id, h.Now())
	if err != nil {
		h.fail(w, r, "Failed to calculate distribution", err)
		return
	}

	h.Logger.Info("distribution calculated",
		zap.String("asset_id", d.AssetID),
		zap.String("distribution_id", d.ID),
		zap.String("residual", string(d.Residual)),
		zap.Bool("awl_required", d.AwlRequired),
	)
	writeJSON(w, http.StatusCreated, toDistributionDTO(*d, false))
}

// GetDistribution returns the current distribution with a stale flag.
// GET /api/assets/{id}/distribution
func (h *Handler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := estate.LoadInputs(ctx, h.Store, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get distribution", err)
		return
	}
	latest, err := h.Store.LatestDistribution(ctx, in.Asset.ID)
	if err != nil {
		h.fail(w, r, "Failed to get distribution", err)
		return
	}
	if latest == nil {
		writeError(w, http.StatusNotFound, "No distribution calculated yet", nil)
		return
	}

	writeJSON(w, http.StatusOK, toDistributionDTO(*latest, latest.IsStale(in.Owner, in.Asset, in.Members)))
}

// ListDistributions returns the history of an asset, newest first. Only
// the newest entry can be current; older ones are always marked stale.
// GET /api/assets/{id}/distributions
func (h *Handler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := estate.LoadInputs(ctx, h.Store, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to list distributions", err)
		return
	}
	history, err := h.Store.ListDistributions(ctx, in.Asset.ID)
	if err != nil {
		h.fail(w, r, "Failed to list distributions", err)
		return
	}

	dtos := make([]DistributionDTO, len(history))
	for i, d := range history {
		stale := i > 0 || d.IsStale(in.Owner, in.Asset, in.Members)
		dtos[i] = toDistributionDTO(d, stale)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ListPendingAssets returns assets waiting for review.
// GET /api/admin/assets/pending
func (h *Handler) ListPendingAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.Store.ListAssetsByStatus(r.Context(), estate.AssetPending)
	if err != nil {
		h.fail(w, r, "Failed to list pending assets", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": toAssetDTOs(assets)})
}

// ApproveAsset approves a pending asset.
// POST /api/admin/assets/{id}/approve
func (h *Handler) ApproveAsset(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

// RejectAsset rejects a pending asset.
// POST /api/admin/assets/{id}/reject
func (h *Handler) RejectAsset(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	ctx := r.Context()

	var req ReviewRequest
	// An empty body is allowed.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ReviewerID == "" {
		req.ReviewerID = "admin"
	}

	asset, err := h.Store.GetAsset(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get asset", err)
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found", nil)
		return
	}

	if err := asset.Review(approve, req.ReviewerID, req.Note, h.Now()); err != nil {
		h.fail(w, r, "Asset is not pending review", err)
		return
	}
	if err := h.Store.SaveAsset(ctx, *asset); err != nil {
		h.fail(w, r, "Failed to update asset", err)
		return
	}

	h.Logger.Info("asset reviewed",
		zap.String("asset_id", asset.ID),
		zap.String("status", string(asset.Status)),
		zap.String("reviewer", req.ReviewerID),
	)
	writeJSON(w, http.StatusOK, toAssetDTO(*asset))
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// loadOwner fetches the {id} owner, writing a 404 or 500 when it cannot.
func (h *Handler) loadOwner(w http.ResponseWriter, r *http.Request) (*estate.Owner, bool) {
	owner, err := h.Store.GetOwner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get owner", err)
		return nil, false
	}
	if owner == nil {
		writeError(w, http.StatusNotFound, "Owner not found", nil)
		return nil, false
	}
	return owner, true
}

// fail maps err to a status and writes it. Server-side failures are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message,
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case estate.IsNotFound(err):
		return http.StatusNotFound
	case estate.IsConflict(err):
		return http.StatusConflict
	case estate.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func toAssetDTOs(assets []estate.Asset) []AssetDTO {
	dtos := make([]AssetDTO, len(assets))
	for i, a := range assets {
		dtos[i] = toAssetDTO(a)
	}
	return dtos
}
