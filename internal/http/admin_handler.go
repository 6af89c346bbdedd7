package api

import (
	"net/http"
	"time"
)

type adminPollEntry struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	OwnerID    string `json:"owner_id"`
	CreatedAt  string `json:"created_at"`
	TotalVotes int64  `json:"total_votes"`
}

// @Summary     List all polls (admin)
// @Tags        admin
// @Produce     json
// @Success     200  {array}  adminPollEntry
// @Router      /api/v1/admin/polls [get]
func (h *Handler) handleAdminListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.pollSvc.ListAll(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}

	entries := make([]adminPollEntry, 0, len(polls))
	for _, p := range polls {
		_, total, err := h.voteSvc.Results(r.Context(), p.ID)
		if err != nil {
			errorResponse(w, err)
			return
		}
		entries = append(entries, adminPollEntry{
			ID:         p.ID,
			Question:   p.Question,
			OwnerID:    p.OwnerID,
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
			TotalVotes: total,
		})
	}

	writeJSON(w, http.StatusOK, entries)
}
