package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type pollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// @Summary     Create poll
// @Tags        polls
// @Accept      json
// @Param       request  body  pollRequest  true  "Question and options"
// @Success     201  {object}  poll.Poll
// @Failure     400  {object}  map[string]string
// @Router      /api/v1/polls [post]
func (h *Handler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	u := currentUser(r)

	p, err := h.pollSvc.Create(r.Context(), u.ID, req.Question, req.Options)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// @Summary     List own polls
// @Tags        polls
// @Produce     json
// @Success     200  {array}  poll.Poll
// @Router      /api/v1/polls [get]
func (h *Handler) handleListPolls(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	polls, err := h.pollSvc.ListByOwner(r.Context(), u.ID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

// @Summary     Get poll with tallies
// @Tags        polls
// @Produce     json
// @Param       id   path      string  true  "Poll ID"
// @Success     200  {object}  map[string]any
// @Failure     404  {object}  map[string]string
// @Router      /api/v1/polls/{id} [get]
func (h *Handler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.pollSvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	results, total, err := h.voteSvc.Results(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"poll":        p,
		"results":     results,
		"total_votes": total,
	})
}

// @Summary     Edit poll
// @Tags        polls
// @Accept      json
// @Param       id       path  string       true  "Poll ID"
// @Param       request  body  pollRequest  true  "Question and options"
// @Success     200  {object}  poll.Poll
// @Failure     403  {object}  map[string]string
// @Failure     404  {object}  map[string]string
// @Router      /api/v1/polls/{id} [patch]
func (h *Handler) handleUpdatePoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	u := currentUser(r)

	p, err := h.pollSvc.Update(r.Context(), id, u.ID, req.Question, req.Options)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// @Summary     Delete poll
// @Tags        polls
// @Param       id   path  string  true  "Poll ID"
// @Success     204
// @Failure     403  {object}  map[string]string
// @Failure     404  {object}  map[string]string
// @Router      /api/v1/polls/{id} [delete]
func (h *Handler) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u := currentUser(r)

	if err := h.pollSvc.Delete(r.Context(), id, u.ID); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
