package handlers

import (
	"net/http"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconcileHandlers exposes the reconciliation service over HTTP
type ReconcileHandlers struct {
	service  inbound.ReconciliationService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewReconcileHandlers creates the reconciliation handlers
func NewReconcileHandlers(service inbound.ReconciliationService, logger *zap.Logger) *ReconcileHandlers {
	return &ReconcileHandlers{
		service:  service,
		validate: validator.New(),
		logger:   logger.Named("reconcile-api"),
	}
}

type auditRequest struct {
	Ingredients []kitchen.RecipeIngredient `json:"ingredients" validate:"required,min=1"`
}

type commitRequest struct {
	Items         []kitchen.AuditItem `json:"items"`
	RecipeID      *uuid.UUID          `json:"recipe_id,omitempty"`
	SyncInventory bool                `json:"sync_inventory"`
}

type categorizeRequest struct {
	CheckedItems []string           `json:"checked_items" validate:"required,min=1,dive,required"`
	Locations    []kitchen.Location `json:"locations"`
}

type migrateRequest struct {
	Items   []kitchen.ShoppingListItem `json:"items" validate:"required,min=1"`
	Mapping kitchen.LocationMapping    `json:"mapping"`
}

type toggleRequest struct {
	Checked *bool `json:"checked" validate:"required"`
}

// AuditRecipe handles POST /api/v1/users/{userID}/audits
func (h *ReconcileHandlers) AuditRecipe(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req auditRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.service.AuditRecipe(r.Context(), inbound.AuditRecipeCommand{
		UserID:      userID,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{
		Success: true,
		Data:    items,
		Message: "Recipe audited",
	})
}

// CommitAudit handles POST /api/v1/users/{userID}/audits/commit
func (h *ReconcileHandlers) CommitAudit(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req commitRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.CommitAudit(r.Context(), inbound.CommitAuditCommand{
		UserID:        userID,
		Items:         req.Items,
		RecipeID:      req.RecipeID,
		SyncInventory: req.SyncInventory,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, statusFor(result.Status), APIResponse{
		Success: result.Status == inbound.StatusSucceeded,
		Data:    result,
		Message: result.Message,
	})
}

// CategorizeCheckout handles POST /api/v1/checkout/categorize
func (h *ReconcileHandlers) CategorizeCheckout(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	mapping, err := h.service.CategorizeCheckout(r.Context(), req.CheckedItems, req.Locations)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{
		Success: true,
		Data:    mapping,
		Message: "Checkout categorized",
	})
}

// StartCheckout handles POST /api/v1/users/{userID}/checkout
func (h *ReconcileHandlers) StartCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	proposal, err := h.service.StartCheckout(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{
		Success: true,
		Data:    proposal,
		Message: "Checkout proposal ready",
	})
}

// ConfirmCheckout handles POST /api/v1/users/{userID}/checkout/confirm
func (h *ReconcileHandlers) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req migrateRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.MigrateToInventory(r.Context(), inbound.MigrateCommand{
		UserID:  userID,
		Items:   req.Items,
		Mapping: req.Mapping,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, statusFor(result.Status), APIResponse{
		Success: result.Success,
		Data:    result,
		Message: result.Message,
	})
}

// GetShoppingList handles GET /api/v1/users/{userID}/shopping-list
func (h *ReconcileHandlers) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.service.GetShoppingList(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{Success: true, Data: items})
}

// ToggleShoppingItem handles PATCH /api/v1/users/{userID}/shopping-list/{itemID}
func (h *ReconcileHandlers) ToggleShoppingItem(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	itemID, err := pathUUID(r, "itemID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req toggleRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	item, err := h.service.ToggleShoppingItem(r.Context(), userID, itemID, *req.Checked)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{Success: true, Data: item})
}

// GetInventory handles GET /api/v1/users/{userID}/inventory
func (h *ReconcileHandlers) GetInventory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.service.GetInventory(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{Success: true, Data: items})
}

// GetLocations handles GET /api/v1/users/{userID}/locations
func (h *ReconcileHandlers) GetLocations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	locations, err := h.service.GetLocations(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{Success: true, Data: locations})
}

// statusFor maps a batch outcome to a response status. Any per-item failure
// answers 207 so clients read the item results.
func statusFor(status inbound.OutcomeStatus) int {
	if status == inbound.StatusSucceeded {
		return http.StatusOK
	}
	return http.StatusMultiStatus
}
