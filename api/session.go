package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/utilitycover/debitnote/internal/debitnote"
	"github.com/utilitycover/debitnote/internal/form"
	"github.com/utilitycover/debitnote/pkg/models"
)

// sessionCookie names the cookie carrying the form session ID.
const sessionCookie = "dn_session"

// errSessionLimit is returned when a new session would exceed the
// configured count or creation rate.
var errSessionLimit = errors.New("too many form sessions, try again later")

// session is one browser's form: its record and its submission state.
type session struct {
	id        string
	holder    *form.Holder
	submitter *debitnote.Submitter
}

// defaultRecord is the record a new session starts with.
func (s *Server) defaultRecord() models.PolicyRecord {
	rec := models.DefaultRecord()
	rec.BasicPremiumRate = s.cfg.Form.DefaultRate
	return rec
}

// newSession creates a session with a fresh default record. Field changes
// and submission state transitions are published to the session's
// WebSocket clients.
func (s *Server) newSession(id string) *session {
	sess := &session{id: id, holder: form.NewHolderWith(s.defaultRecord())}
	sess.submitter = debitnote.NewSubmitter(debitnote.SubmitterConfig{
		Generator: s.gen,
		Timeout:   s.cfg.PDF.Timeout,
		Location:  s.loc,
		Now:       s.now,
		Logger:    s.logger.With("session", id),
		OnState: func(submitting bool) {
			if submitting {
				s.wsHub.Publish(id, WSMessage{Type: EventSubmissionStarted})
			}
		},
	})
	sess.holder.Subscribe(func(rec models.PolicyRecord, seq uint64) {
		s.wsHub.Publish(id, WSMessage{Type: EventFormUpdated, Data: s.stateOf(sess, rec, seq)})
	})

	s.logger.Debug("form session created", "session", id)
	return sess
}

// findSession returns the live session named by the request's cookie.
// It never creates one.
func (s *Server) findSession(r *http.Request) (*session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(id.String())
}

// openSession returns the request's session, creating one when the cookie
// is missing, malformed or expired. New sessions are paced and capped;
// past either limit it returns errSessionLimit. The returned cookie should
// be sent back to the client.
func (s *Server) openSession(r *http.Request) (*session, *http.Cookie, error) {
	if sess, ok := s.findSession(r); ok {
		return sess, s.sessionCookie(sess.id), nil
	}
	if !s.creates.Allow() {
		s.logger.Warn("form session refused", "reason", "rate")
		return nil, nil, errSessionLimit
	}

	id := uuid.NewString()
	sess, _, err := s.sessions.GetOrCreate(id, func() *session {
		return s.newSession(id)
	})
	if err != nil {
		s.logger.Warn("form session refused", "reason", "capacity", "sessions", s.sessions.Len())
		return nil, nil, errSessionLimit
	}
	return sess, s.sessionCookie(id), nil
}

// sessionFor is openSession for plain HTTP handlers. When no session can be
// opened it writes a 503 and returns false.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, cookie, err := s.openSession(r)
	if err != nil {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	http.SetCookie(w, cookie)
	return sess, true
}

func (s *Server) sessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
