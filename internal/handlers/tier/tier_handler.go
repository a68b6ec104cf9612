// internal/handlers/tier/tier_handler.go
package tier

import (
	"net/http"
	"strconv"

	"campus-service/internal/domain/tier"
	"campus-service/internal/pkg/response"
	service "campus-service/internal/service/tier"

	"github.com/gin-gonic/gin"
)

type TierHandler struct {
	tierService *service.TierService
}

func NewTierHandler(tierService *service.TierService) *TierHandler {
	return &TierHandler{
		tierService: tierService,
	}
}

// ========== Public Endpoints ==========

// ListTiers retrieves subscription tiers. Unauthenticated callers only
// ever see active tiers; the admin listing goes through ListAllTiers.
func (h *TierHandler) ListTiers(c *gin.Context) {
	var filters tier.TierListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	activeOnly := true
	filters.IsActive = &activeOnly

	result, err := h.tierService.ListTiers(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err, "failed to list tiers")
		return
	}

	response.Success(c, http.StatusOK, "tiers retrieved", result)
}

// GetTier retrieves a single tier by ID
func (h *TierHandler) GetTier(c *gin.Context) {
	tierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid tier ID", err)
		return
	}

	t, err := h.tierService.GetTier(c.Request.Context(), tierID)
	if err != nil {
		response.FromError(c, err, "tier not found")
		return
	}

	response.Success(c, http.StatusOK, "tier retrieved", t)
}

// GetTierBySlug retrieves a tier by its slug
func (h *TierHandler) GetTierBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.Error(c, http.StatusBadRequest, "tier slug is required", nil)
		return
	}

	t, err := h.tierService.GetTierBySlug(c.Request.Context(), slug)
	if err != nil {
		response.FromError(c, err, "tier not found")
		return
	}

	response.Success(c, http.StatusOK, "tier retrieved", t)
}

// ========== Admin Only Endpoints ==========

// ListAllTiers retrieves tiers without the active-only restriction (admin only)
func (h *TierHandler) ListAllTiers(c *gin.Context) {
	var filters tier.TierListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.tierService.ListTiers(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err, "failed to list tiers")
		return
	}

	response.Success(c, http.StatusOK, "tiers retrieved", result)
}

// CreateTier creates a new subscription tier (admin only)
func (h *TierHandler) CreateTier(c *gin.Context) {
	var req tier.CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	t, err := h.tierService.CreateTier(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create tier")
		return
	}

	response.Success(c, http.StatusCreated, "tier created", t)
}

// UpdateTier updates an existing tier (admin only)
func (h *TierHandler) UpdateTier(c *gin.Context) {
	tierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid tier ID", err)
		return
	}

	var req tier.UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	t, err := h.tierService.UpdateTier(c.Request.Context(), tierID, &req)
	if err != nil {
		response.FromError(c, err, "failed to update tier")
		return
	}

	response.Success(c, http.StatusOK, "tier updated", t)
}

// DeleteTier deletes a tier (admin only). Rejected while the tier still
// has active subscriptions.
func (h *TierHandler) DeleteTier(c *gin.Context) {
	tierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid tier ID", err)
		return
	}

	if err := h.tierService.DeleteTier(c.Request.Context(), tierID); err != nil {
		response.FromError(c, err, "failed to delete tier")
		return
	}

	response.Success(c, http.StatusOK, "tier deleted", nil)
}

// ToggleActive flips a tier's active flag (admin only)
func (h *TierHandler) ToggleActive(c *gin.Context) {
	tierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid tier ID", err)
		return
	}

	t, err := h.tierService.ToggleActive(c.Request.Context(), tierID)
	if err != nil {
		response.FromError(c, err, "failed to toggle tier")
		return
	}

	response.Success(c, http.StatusOK, "tier toggled", t)
}

// ReorderTiers applies a batch of display-order updates (admin only)
func (h *TierHandler) ReorderTiers(c *gin.Context) {
	var req tier.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.tierService.ReorderTiers(c.Request.Context(), &req); err != nil {
		response.FromError(c, err, "failed to reorder tiers")
		return
	}

	response.Success(c, http.StatusOK, "tiers reordered", nil)
}

// GetStats retrieves tier statistics (admin only)
func (h *TierHandler) GetStats(c *gin.Context) {
	stats, err := h.tierService.GetStats(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to get tier stats")
		return
	}

	response.Success(c, http.StatusOK, "tier stats retrieved", stats)
}
