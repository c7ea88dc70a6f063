package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvrcosta/backend-loja/internal/catalog"
	"github.com/mvrcosta/backend-loja/internal/common"
	"github.com/mvrcosta/backend-loja/internal/pricing"
)

// Handler wires cart operations to HTTP.
type Handler struct {
	Svc            *Service
	PixDiscountBPS int
}

type view struct {
	Lines               []lineView    `json:"lines"`
	TotalItems          int           `json:"totalItems"`
	Subtotal            pricing.Money `json:"subtotal"`
	PixDiscount         pricing.Money `json:"pixDiscount"`
	TotalWithPixDiscount pricing.Money `json:"totalWithPixDiscount"`
}

type lineView struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Qty       int           `json:"qty"`
	Subtotal  pricing.Money `json:"subtotal"`
}

func (h *Handler) render(c Cart) view {
	lines := make([]lineView, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, lineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Qty:       l.Qty,
			Subtotal:  l.Subtotal(),
		})
	}
	total := c.Total()
	bps := h.PixDiscountBPS
	if bps <= 0 {
		bps = pricing.PixDiscountBPS
	}
	return view{
		Lines:               lines,
		TotalItems:          c.TotalItems(),
		Subtotal:            total,
		PixDiscount:         pricing.PixDiscount(total, bps),
		TotalWithPixDiscount: pricing.TotalWithPixDiscount(total, bps),
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, ok := common.SessionID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "session id required", nil)
		return "", false
	}
	return sessionID, true
}

// Get returns the session's cart with derived totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Load(r.Context(), sessionID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.render(c)})
}

// AddItem merges a product into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.Qty == 0 {
		payload.Qty = 1
	}
	c, err := h.Svc.AddItem(r.Context(), sessionID, payload.ProductID, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.render(c)})
}

// UpdateItem replaces a line's quantity; zero removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.UpdateQty(r.Context(), sessionID, chi.URLParam(r, "productId"), payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.render(c)})
}

// RemoveItem drops a line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), sessionID, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.render(c)})
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Clear(r.Context(), sessionID); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.render(Cart{})})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		common.WriteError(w, common.NotFoundError("product not found"))
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
