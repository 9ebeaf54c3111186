package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
)

// SessionHandler serves session introspection and the manual controls the
// front-end uses.
type SessionHandler struct {
	SessionService *service.SessionService
	FrontendURL    string
	Now            func() time.Time
}

func (h *SessionHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *SessionHandler) links() frontendLinks {
	return frontendLinks{base: h.FrontendURL}
}

// HandleStatus godoc
//
//	@Summary		Session Status
//	@Description	Token validity, re-authentication state and discovered context of a session. Polled by the front-end.
//	@Tags			Sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.SessionStatus
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/session/status/{id} [get].
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	s, err := h.SessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionStatus(s, h.now(), h.links()))
}

// HandleInfo godoc
//
//	@Summary		Session Details
//	@Description	Debug view of a session. Tokens are never included; the access token is identified by a fingerprint.
//	@Tags			Sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.SessionInfo
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/session/{id} [get].
func (h *SessionHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	s, err := h.SessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionInfo(s))
}

// HandleList godoc
//
//	@Summary		List Sessions
//	@Description	All sessions held by the broker, oldest first.
//	@Tags			Sessions
//	@Produce		json
//	@Success		200	{object}	brokersdk.SessionList
//	@Router			/sessions [get].
func (h *SessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.SessionService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := brokersdk.SessionList{
		TotalSessions: len(sessions),
		Sessions:      make([]brokersdk.SessionSummary, len(sessions)),
	}
	for i, s := range sessions {
		response.Sessions[i] = sessionSummary(s)
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleDelete godoc
//
//	@Summary		Delete Session
//	@Tags			Sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.MessageResponse
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/session/{id} [delete].
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.SessionService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, brokersdk.MessageResponse{
		Message: fmt.Sprintf("Session %s deleted successfully", id),
	})
}

// HandleSetPatient godoc
//
//	@Summary		Set Patient Context
//	@Description	Sets the patient of an authenticated session, for launches that did not carry one.
//	@Description	The patient id is read from the patient_id query parameter, a form field or a JSON body.
//	@Tags			Context
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string						true	"Session id"
//	@Param			patient_id	query		string						false	"Patient id"
//	@Param			body		body		brokersdk.SetPatientRequest	false	"Patient id"
//	@Success		200			{object}	brokersdk.SetPatientResponse
//	@Failure		400			{object}	brokersdk.ErrorResponse	"Missing patient id or session not authenticated"
//	@Failure		404			{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/set-patient/{id} [post].
func (h *SessionHandler) HandleSetPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := patientIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.SessionService.SetPatient(r.Context(), r.PathValue("id"), patientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, brokersdk.SetPatientResponse{
		Message:     "Patient ID set successfully",
		SessionID:   s.ID,
		PatientID:   s.PatientID,
		RedirectURL: h.links().session(s.ID),
	})
}

const maxBodyBytes = 64 << 10

func patientIDFromRequest(r *http.Request) (string, error) {
	if v := r.URL.Query().Get("patient_id"); v != "" {
		return v, nil
	}
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req brokersdk.SetPatientRequest
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			return "", fmt.Errorf("%w: invalid JSON body", service.ErrInvalidRequest)
		}
		return req.PatientID, nil
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("%w: invalid form body", service.ErrInvalidRequest)
		}
		return r.PostForm.Get("patient_id"), nil
	default:
		return "", nil
	}
}

// HandleClearReauth godoc
//
//	@Summary		Clear Re-authentication Flag
//	@Description	Resets needs_reauth so the next fetch attempts a token refresh again.
//	@Tags			Context
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.ClearReauthResponse
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/clear-reauth/{id} [post].
func (h *SessionHandler) HandleClearReauth(w http.ResponseWriter, r *http.Request) {
	s, err := h.SessionService.ClearReauth(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, brokersdk.ClearReauthResponse{
		Message:     "Re-authentication flag cleared",
		SessionID:   s.ID,
		NeedsReauth: s.NeedsReauth,
	})
}

// HandleReauthRequired godoc
//
//	@Summary		Re-authentication Check
//	@Description	Reports whether the session must repeat the launch and, if so, the launch URL that restarts it.
//	@Tags			Context
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.ReauthStatus
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/reauth-required/{id} [get].
func (h *SessionHandler) HandleReauthRequired(w http.ResponseWriter, r *http.Request) {
	s, err := h.SessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := brokersdk.ReauthStatus{
		SessionID:   s.ID,
		NeedsReauth: s.NeedsReauth,
		Message:     "Session is valid",
		FrontendURL: h.links().session(s.ID),
	}
	if s.NeedsReauth {
		q := url.Values{"iss": {s.FHIRBase}, "launch": {s.LaunchContext}}
		response.Message = "Session requires re-authentication"
		response.LaunchURL = "/launch?" + q.Encode()
		response.FrontendURL = h.links().session(s.ID, "reauth", "true")
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleContextDiscovery godoc
//
//	@Summary		Context Discovery
//	@Description	The clinical context discovered for a session and the launch it came from.
//	@Tags			Context
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.ContextDiscovery
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/context-discovery/{id} [get].
func (h *SessionHandler) HandleContextDiscovery(w http.ResponseWriter, r *http.Request) {
	s, err := h.SessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, brokersdk.ContextDiscovery{
		SessionID:         s.ID,
		Status:            string(s.Status),
		ContextDiscovered: clinicalContext(s),
		TokenInfo:         tokenInfo(s, h.now()),
		LaunchContext: brokersdk.LaunchContext{
			Launch:   s.LaunchContext,
			FHIRBase: s.FHIRBase,
		},
	})
}

// HandlePatientSelect godoc
//
//	@Summary		Patient Selection
//	@Description	For sessions launched without a patient, explains how to supply one. Otherwise reports the known patient.
//	@Tags			Context
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.PatientSelectResponse
//	@Failure		400	{object}	brokersdk.ErrorResponse	"Session not authenticated"
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/patient-select/{id} [get].
func (h *SessionHandler) HandlePatientSelect(w http.ResponseWriter, r *http.Request) {
	s, err := h.SessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !s.Authenticated() {
		writeError(w, r, service.ErrNotAuthenticated)
		return
	}

	if s.PatientID != "" {
		httpx.WriteJSON(w, http.StatusOK, brokersdk.PatientSelectResponse{
			Message:     "Patient context already exists",
			PatientID:   s.PatientID,
			RedirectURL: h.links().session(s.ID),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, brokersdk.PatientSelectResponse{
		Message:   "No patient context found - patient selection required",
		SessionID: s.ID,
		Instructions: map[string]string{
			"option_1": "Select a patient in the EHR launcher before launching",
			"option_2": "Set the patient id with POST " + setPatientPath(s.ID),
			"option_3": "Pick a patient in the front-end",
		},
		APIEndpoint: setPatientPath(s.ID),
		FrontendURL: h.links().session(s.ID, "select_patient", "true"),
	})
}

func setPatientPath(id string) string {
	return "/set-patient/" + url.PathEscape(id)
}

