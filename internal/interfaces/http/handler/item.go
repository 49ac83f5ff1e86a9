package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/smberp/backend/internal/application/catalog"
	"github.com/smberp/backend/internal/domain/catalog"
)

// ItemHandler handles catalog item endpoints
type ItemHandler struct {
	BaseHandler
	itemService *catalogapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *catalogapp.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	Code       string          `json:"code" binding:"required"`
	Name       string          `json:"name" binding:"required"`
	Type       string          `json:"type" binding:"required,oneof=SERVICE INVENTORY ASSEMBLY"`
	ParentID   *uuid.UUID      `json:"parent_id"`
	Cost       decimal.Decimal `json:"cost"`
	SalesPrice decimal.Decimal `json:"sales_price"`
}

// UpdatePricingRequest represents a request to update an item's prices
type UpdatePricingRequest struct {
	Cost       decimal.Decimal `json:"cost"`
	SalesPrice decimal.Decimal `json:"sales_price"`
}

// SetComponentsRequest represents a request to replace an assembly's components
type SetComponentsRequest struct {
	Components []catalogapp.ComponentInput `json:"components" binding:"required"`
}

// AdjustOnHandRequest represents a request to adjust an item's on-hand quantity
type AdjustOnHandRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

// Create creates a new catalog item
func (h *ItemHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), catalogapp.CreateItemRequest{
		Code:       req.Code,
		Name:       req.Name,
		Type:       catalog.ItemType(req.Type),
		ParentID:   req.ParentID,
		Cost:       req.Cost,
		SalesPrice: req.SalesPrice,
		ActorID:    getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdatePricing updates an item's cost and sales price
func (h *ItemHandler) UpdatePricing(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.UpdateItemPricing(c.Request.Context(), id, req.Cost, req.SalesPrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// SetComponents replaces an assembly item's component list
func (h *ItemHandler) SetComponents(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req SetComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.SetComponents(c.Request.Context(), id, req.Components)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// AdjustOnHand adjusts an item's on-hand quantity by a delta
func (h *ItemHandler) AdjustOnHand(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req AdjustOnHandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.AdjustOnHand(c.Request.Context(), id, req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete deletes an item that is not referenced by any assembly
func (h *ItemHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.itemService.DeleteItem(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns an item by ID
func (h *ItemHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	item, err := h.itemService.GetItemByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// List returns items with pagination
func (h *ItemHandler) List(c *gin.Context) {
	req, filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.itemService.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}
