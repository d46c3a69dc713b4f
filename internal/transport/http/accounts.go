package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

type accountResponse struct {
	ID      string `json:"id"`
	Balance uint64 `json:"balance"`
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Accounts.Balance(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{ID: acc.ID, Balance: acc.Balance})
}
