// internal/handlers/entitlement/entitlement_handler.go
package entitlement

import (
	"net/http"
	"strconv"

	"campus-service/internal/domain/catalog"
	"campus-service/internal/middleware"
	"campus-service/internal/pkg/response"
	service "campus-service/internal/service/entitlement"

	"github.com/gin-gonic/gin"
)

type EntitlementHandler struct {
	entitlementService *service.EntitlementService
}

func NewEntitlementHandler(entitlementService *service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
	}
}

// CheckAccess reports whether the authenticated user may access a course
// or pathway. Always 200; the decision is in the payload.
func (h *EntitlementHandler) CheckAccess(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	kind := catalog.ContentKind(c.Param("kind"))
	if !kind.Valid() {
		response.Error(c, http.StatusBadRequest, "content kind must be course or pathway", nil)
		return
	}

	contentID, err := strconv.ParseInt(c.Param("contentID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid content ID", err)
		return
	}

	granted := h.entitlementService.HasAccess(c.Request.Context(), userID, kind, contentID)

	response.Success(c, http.StatusOK, "access checked", gin.H{
		"content_kind": kind,
		"content_id":   contentID,
		"has_access":   granted,
	})
}
