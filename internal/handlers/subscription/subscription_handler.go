// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	"campus-service/internal/domain/subscription"
	"campus-service/internal/middleware"
	xerrors "campus-service/internal/pkg/errors"
	"campus-service/internal/pkg/response"
	service "campus-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// ========== User Endpoints ==========

// Subscribe creates a subscription for the authenticated user
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req subscription.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	details, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		// The pending subscription survives a failed payment initiation;
		// hand it back so the client can retry payment.
		if xerrors.Is(err, xerrors.ErrPaymentInitiation) {
			response.Error(c, http.StatusPaymentRequired, "subscription created but payment initiation failed", err, details)
			return
		}
		response.FromError(c, err, "failed to subscribe")
		return
	}

	response.Success(c, http.StatusCreated, "subscription created", details)
}

// ListMySubscriptions retrieves the authenticated user's subscriptions
func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var filters subscription.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}
	filters.UserID = &userID

	result, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err, "failed to list subscriptions")
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", result)
}

// GetActiveSubscription retrieves the authenticated user's current active subscription
func (h *SubscriptionHandler) GetActiveSubscription(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	details, err := h.subscriptionService.GetActiveSubscription(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "no active subscription")
		return
	}

	response.Success(c, http.StatusOK, "active subscription retrieved", details)
}

// GetSubscription retrieves a subscription by ID (owner or admin)
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	details, err := h.subscriptionService.GetSubscription(c.Request.Context(), userID, subscriptionID, middleware.IsAdmin(c))
	if err != nil {
		response.FromError(c, err, "failed to get subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", details)
}

// CancelSubscription cancels a subscription (owner or admin). Requires an
// explicit confirm flag.
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	var req subscription.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if !req.Confirm {
		response.Error(c, http.StatusBadRequest, "cancellation requires confirmation", nil)
		return
	}

	details, err := h.subscriptionService.Cancel(c.Request.Context(), userID, subscriptionID, req.Reason, middleware.IsAdmin(c))
	if err != nil {
		response.FromError(c, err, "failed to cancel subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription cancelled", details)
}

// ExpireCheck sweeps the authenticated user's expired subscriptions
func (h *SubscriptionHandler) ExpireCheck(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	count, err := h.subscriptionService.CheckExpired(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "failed to check expirations")
		return
	}

	response.Success(c, http.StatusOK, "expiry check completed", subscription.ExpireCheckResponse{Expired: count})
}

// ========== Admin Only Endpoints ==========

// ListSubscriptions retrieves subscriptions with filters (admin only)
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var filters subscription.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err, "failed to list subscriptions")
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", result)
}

// ActivateSubscription activates a pending subscription (admin or payment callback)
func (h *SubscriptionHandler) ActivateSubscription(c *gin.Context) {
	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	var req subscription.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	details, err := h.subscriptionService.Activate(c.Request.Context(), subscriptionID, &req)
	if err != nil {
		response.FromError(c, err, "failed to activate subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription activated", details)
}

// RenewSubscription extends a subscription's expiry (admin only)
func (h *SubscriptionHandler) RenewSubscription(c *gin.Context) {
	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	var req subscription.RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	details, err := h.subscriptionService.Renew(c.Request.Context(), subscriptionID, req.ExtendMonths)
	if err != nil {
		response.FromError(c, err, "failed to renew subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription renewed", details)
}

// GetStats retrieves subscription statistics (admin only)
func (h *SubscriptionHandler) GetStats(c *gin.Context) {
	stats, err := h.subscriptionService.GetStats(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to get subscription stats")
		return
	}

	response.Success(c, http.StatusOK, "subscription stats retrieved", stats)
}
