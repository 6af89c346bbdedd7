package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pollboard/internal/metrics"
	"pollboard/internal/worker"
)

type voteRequest struct {
	OptionIndex *int `json:"option_index"`
}

// @Summary     Cast a ballot
// @Tags        votes
// @Accept      json
// @Param       id       path  string       true  "Poll ID"
// @Param       request  body  voteRequest  true  "Chosen option index"
// @Success     204
// @Failure     400  {object}  map[string]string  "index out of range"
// @Failure     404  {object}  map[string]string  "poll not found"
// @Failure     409  {object}  map[string]string  "already voted"
// @Router      /api/v1/polls/{id}/votes [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.OptionIndex == nil {
		http.Error(w, "option_index is required", http.StatusBadRequest)
		return
	}

	u := currentUser(r)

	if err := h.voteSvc.Cast(r.Context(), pollID, *req.OptionIndex, u.ID); err != nil {
		errorResponse(w, err)
		return
	}

	metrics.IncVote()

	select {
	case h.voteCh <- worker.VoteEvent{PollID: pollID, OptionIndex: *req.OptionIndex}:
	default:
	}

	w.WriteHeader(http.StatusNoContent)
}
