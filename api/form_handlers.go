package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/utilitycover/debitnote/internal/debitnote"
	"github.com/utilitycover/debitnote/internal/form"
	"github.com/utilitycover/debitnote/internal/premium"
	"github.com/utilitycover/debitnote/pkg/models"
)

// FormState is what the form view renders: the record, its derived
// preview, whether it can be submitted, and whether a submission is running.
// Seq is the number of the last applied client edit; a client drops any
// state older than one it has already shown.
type FormState struct {
	Seq        uint64              `json:"seq"`
	Record     models.PolicyRecord `json:"record"`
	Preview    premium.View        `json:"preview"`
	Ready      bool                `json:"ready"`
	Missing    []form.FieldError   `json:"missing,omitempty"`
	Submitting bool                `json:"submitting"`
}

// FieldChange is the body for PATCH /api/v1/form/fields. Value is normally
// a string; bare JSON numbers are accepted and used as typed. Seq numbers
// the edit; when set it must exceed every number already applied to the
// session, so edits that overtake each other in flight cannot regress it.
type FieldChange struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
	Seq   uint64          `json:"seq,omitempty"`
}

// Raw returns the value as the text the user typed.
func (c FieldChange) Raw() string {
	return rawText(c.Value)
}

// rawText converts a JSON value into form input text: strings are
// unquoted, null becomes empty, anything else is used verbatim.
func rawText(v json.RawMessage) string {
	trimmed := strings.TrimSpace(string(v))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return trimmed
}

func newFormState(rec models.PolicyRecord, seq uint64, submitting bool) FormState {
	missing := form.Validate(rec)
	return FormState{
		Seq:        seq,
		Record:     rec,
		Preview:    premium.ComputeView(rec),
		Ready:      len(missing) == 0,
		Missing:    missing,
		Submitting: submitting,
	}
}

func (s *Server) stateOf(sess *session, rec models.PolicyRecord, seq uint64) FormState {
	return newFormState(rec, seq, sess.submitter.InProgress())
}

func (s *Server) formState(sess *session) FormState {
	rec, seq := sess.holder.Current()
	return s.stateOf(sess, rec, seq)
}

// blankState is reported to clients that have no session yet.
func (s *Server) blankState() FormState {
	return newFormState(s.defaultRecord(), 0, false)
}

func writeNotReady(w http.ResponseWriter, missing []form.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Data:    missing,
		Error:   fmt.Sprintf("%d field(s) are not ready for submission", len(missing)),
	})
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.formState(sess)})
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	var change FieldChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if change.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}

	rec, seq, err := sess.holder.SetSeq(change.Name, change.Raw(), change.Seq)
	switch {
	case errors.Is(err, form.ErrStaleEdit):
		writeJSON(w, http.StatusConflict, APIResponse{
			Success: false,
			Data:    s.stateOf(sess, rec, seq),
			Error:   err.Error(),
		})
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.stateOf(sess, rec, seq)})
}

// handleResetForm restores the session's record. Without a session there
// is nothing to reset, and the blank form is returned as is.
func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.findSession(r)
	if !ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.blankState()})
		return
	}
	if sess.submitter.InProgress() {
		writeError(w, http.StatusConflict, debitnote.ErrInProgress.Error())
		return
	}
	sess.holder.Reset()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.formState(sess)})
}

func (s *Server) handleFormPreview(w http.ResponseWriter, r *http.Request) {
	rec := s.defaultRecord()
	if sess, ok := s.findSession(r); ok {
		rec = sess.holder.Snapshot()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: premium.ComputeView(rec)})
}

// handleSubmit sends the session's record to the document service and
// returns the PDF as an attachment. Failures use the JSON envelope.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.findSession(r)
	if !ok {
		writeNotReady(w, form.Validate(s.defaultRecord()))
		return
	}
	rec := sess.holder.Snapshot()

	if missing := form.Validate(rec); len(missing) > 0 {
		writeNotReady(w, missing)
		return
	}

	att := newAttachmentWriter(w)
	res, err := sess.submitter.Submit(r.Context(), rec, att)
	switch {
	case errors.Is(err, debitnote.ErrInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.wsHub.Publish(sess.id, WSMessage{
			Type: EventSubmissionFailed,
			Data: map[string]string{"error": debitnote.FailureNotice},
		})
		if att.started {
			// Headers are gone; all that is left is to log it.
			s.logger.Error("attachment write failed", "session", sess.id, "error", err)
			return
		}
		status := http.StatusBadGateway
		if errors.Is(err, debitnote.ErrDelivery) {
			status = http.StatusInternalServerError
		}
		writeFailure(w, status, err)
		return
	}

	s.wsHub.Publish(sess.id, WSMessage{Type: EventSubmissionFinished, Data: res})
}

// handlePreview computes the preview for a record sent in the body, without
// touching any session. Every value passes through the same coercion as a
// form edit.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string, len(body))
	for name, v := range body {
		fields[name] = rawText(v)
	}

	rec, err := form.ApplyAll(s.defaultRecord(), fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: premium.ComputeView(rec)})
}
