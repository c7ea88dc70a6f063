package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/mvrcosta/backend-loja/internal/common"
	"github.com/mvrcosta/backend-loja/internal/identity"
	"github.com/mvrcosta/backend-loja/internal/payment"
)

// Handler wires the checkout state machine to HTTP.
type Handler struct {
	Orch     *Orchestrator
	Identity identity.Provider
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, ok := common.SessionID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "session id required", nil)
		return "", false
	}
	return sessionID, true
}

// State returns the session view. While shipping is still being collected the
// response includes a prefill block from the identity collaborator.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := h.Orch.State(r.Context(), sessionID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	body := map[string]any{"data": view}
	if h.Identity != nil && view.State == StateCollectingShipping && view.Shipping == nil {
		if payer, found := h.Identity.Payer(r.Context()); found {
			body["prefill"] = payer
		}
	}
	common.JSON(w, http.StatusOK, body)
}

// SubmitShipping stores the delivery details and advances to payment selection.
func (h *Handler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var shipping payment.Shipping
	if err := json.NewDecoder(r.Body).Decode(&shipping); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	view, err := h.Orch.SubmitShipping(r.Context(), sessionID, shipping)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// SelectPayment records the chosen payment method.
func (h *Handler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Method payment.Method `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	view, err := h.Orch.SelectPayment(r.Context(), sessionID, payload.Method)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Confirm dispatches the payment attempt and returns the gateway result.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Method payment.Method     `json:"method"`
		Card   *payment.CardInput `json:"card,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	result, err := h.Orch.Confirm(r.Context(), sessionID, payload.Method, payload.Card)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Back steps one state backwards.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := h.Orch.Back(r.Context(), sessionID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Cancel abandons the checkout and resets the session.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := h.Orch.Cancel(r.Context(), sessionID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}
