package payment

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvrcosta/backend-loja/internal/common"
)

type Handler struct {
	Svc *Service
}

// GetPixCharge returns the stored state of a PIX charge, including its
// current status so clients can poll for expiry.
func (h *Handler) GetPixCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chargeID")
	if id == "" {
		common.WriteError(w, common.ValidationError("charge id is required", nil))
		return
	}
	charge, err := h.Svc.GetPixStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrChargeNotFound) {
			common.WriteError(w, common.NotFoundError("pix charge not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, charge)
}
