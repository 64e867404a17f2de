package handler

import (
	"net/http"

	"github.com/hearthbot/hearth/internal/journal"
)

// SubmissionHandler implements HTTP handlers over the submission journal.
type SubmissionHandler struct {
	store journal.Store
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(store journal.Store) *SubmissionHandler {
	return &SubmissionHandler{store: store}
}

// HandleListSubmissions returns journaled runs, newest first.
// GET /api/submissions?form=&actor=&status=&limit=&offset=
func (h *SubmissionHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := journal.Query{
		Form:   r.URL.Query().Get("form"),
		Actor:  r.URL.Query().Get("actor"),
		Status: r.URL.Query().Get("status"),
	}
	q.Limit, q.Offset = parsePagination(r)

	records, total, err := h.store.List(r.Context(), q)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	resp := struct {
		Submissions []journal.Record `json:"submissions"`
		TotalCount  int              `json:"total_count"`
	}{
		Submissions: records,
		TotalCount:  total,
	}
	if resp.Submissions == nil {
		resp.Submissions = []journal.Record{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetSubmission returns one journaled run with its values and, for
// finished edits, the change patch.
// GET /api/submissions/{id}
func (h *SubmissionHandler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRecordID(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
