package api

import (
	"net/http"

	"github.com/mmynk/splitledger/internal/service"
)

// CreateGroup handles POST /api/groups.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var in service.GroupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupJSON(group))
}

// ListGroups handles GET /api/groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]groupJSON, len(groups))
	for i, g := range groups {
		out[i] = toGroupJSON(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

// GetGroup handles GET /api/groups/{ref}.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	detail, err := h.groups.GetGroupDetail(r.Context(), urlParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	names := make([]string, len(detail.Participants))
	for i, p := range detail.Participants {
		names[i] = p.Name
	}
	writeJSON(w, http.StatusOK, groupDetailJSON{
		groupJSON:    toGroupJSON(detail.Group),
		Participants: names,
		Expenses:     toExpensesJSON(detail.Expenses),
	})
}

// DeleteGroup handles DELETE /api/groups/{ref}.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.DeleteGroup(r.Context(), urlParam(r, "ref")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalances handles GET /api/groups/{ref}/balances.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.groups.GetBalances(r.Context(), urlParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalancesJSON(balances))
}
