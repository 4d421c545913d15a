package api

import (
	"fmt"
	"net/http"
)

// ListParticipants handles GET /api/groups/{ref}/participants.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.groups.ListParticipants(r.Context(), urlParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]participantJSON, len(participants))
	for i, p := range participants {
		out[i] = toParticipantJSON(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": out})
}

// AddParticipant handles POST /api/groups/{ref}/participants.
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	participant, err := h.groups.AddParticipant(r.Context(), urlParam(r, "ref"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toParticipantJSON(participant))
}

// RenameParticipant handles PUT and PATCH /api/groups/{ref}/participants/{participant}.
func (h *Handler) RenameParticipant(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	participant, err := h.groups.RenameParticipant(r.Context(), urlParam(r, "ref"), urlParam(r, "participant"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantJSON(participant))
}

// RemoveParticipant handles DELETE /api/groups/{ref}/participants/{participant}.
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "participant")
	summary, err := h.groups.RemoveParticipant(r.Context(), urlParam(r, "ref"), name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, removalJSON{
		Message:         fmt.Sprintf("participant %s removed", name),
		DeletedExpenses: summary.DeletedExpenses,
		TrimmedExpenses: summary.TrimmedExpenses,
		DeletedPayments: summary.DeletedPayments,
	})
}
