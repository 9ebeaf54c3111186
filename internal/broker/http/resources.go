package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
)

const reauthMessage = "Session expired - re-authentication required"

// ResourceHandler serves FHIR data on behalf of a session.
type ResourceHandler struct {
	FetchService *service.FetchService
	Now          func() time.Time
}

func (h *ResourceHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// HandlePatientData godoc
//
//	@Summary		Patient Data Bundle
//	@Description	Fetches patient, observations, encounters, medications, diagnostic reports and procedures.
//	@Description	A failed resource is reported in metadata and the others are still fetched. When re-authentication
//	@Description	becomes necessary the remaining fetches are skipped and metadata.needs_reauth is set.
//	@Tags			Resources
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	brokersdk.PatientBundle
//	@Failure		401	{object}	brokersdk.ErrorResponse	"Session holds no access token"
//	@Failure		404	{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/patient-data/{id} [get].
func (h *ResourceHandler) HandlePatientData(w http.ResponseWriter, r *http.Request) {
	res, err := h.FetchService.FetchBundle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, patientBundle(res, h.now()))
}

func patientBundle(res *service.BundleResult, now time.Time) brokersdk.PatientBundle {
	s := res.Session
	bundle := brokersdk.PatientBundle{
		Patient:           resourceOrNull(res.Resources, "patient"),
		Observations:      resourceOrNull(res.Resources, "observations"),
		Encounters:        resourceOrNull(res.Resources, "encounters"),
		Medications:       resourceOrNull(res.Resources, "medications"),
		DiagnosticReports: resourceOrNull(res.Resources, "diagnostic_reports"),
		Procedures:        resourceOrNull(res.Resources, "procedures"),
		Metadata: brokersdk.BundleMetadata{
			FetchID:          res.FetchID,
			FHIRServer:       s.FHIRBase,
			SessionID:        s.ID,
			PatientID:        s.PatientID,
			PractitionerID:   s.PractitionerID,
			EncounterID:      s.EncounterID,
			FetchTimestamp:   res.FetchedAt.UTC(),
			ResourcesFetched: res.Fetched,
			ResourcesFailed:  res.Failed,
			Errors:           res.Errors,
			TokenInfo: brokersdk.BundleTokenInfo{
				ExpiresAt:     expiresAt(s),
				TimeRemaining: secondsRemaining(s, now),
			},
		},
	}
	if res.NeedsReauth {
		bundle.Metadata.NeedsReauth = true
		bundle.Metadata.ReauthMessage = reauthMessage
	}
	return bundle
}

var jsonNull = json.RawMessage("null")

func resourceOrNull(resources map[string]json.RawMessage, name string) json.RawMessage {
	if data, ok := resources[name]; ok {
		return data
	}
	return jsonNull
}

// HandleResource godoc
//
//	@Summary		Single Resource
//	@Description	Fetches one resource type with its default search parameters, scoped to the session's patient when known.
//	@Tags			Resources
//	@Produce		json
//	@Param			id		path		string	true	"Session id"
//	@Param			type	path		string	true	"Resource type"	Enums(Patient, Observation, Encounter, MedicationRequest, DiagnosticReport, Procedure)
//	@Success		200		{object}	brokersdk.ResourceResponse
//	@Failure		400		{object}	brokersdk.ErrorResponse	"Unsupported resource type"
//	@Failure		401		{object}	brokersdk.ErrorResponse	"No access token or re-authentication required"
//	@Failure		404		{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Failure		502		{object}	brokersdk.ErrorResponse	"FHIR server unreachable or returned an unusable body"
//	@Failure		504		{object}	brokersdk.ErrorResponse	"FHIR server timed out"
//	@Router			/fhir-resource/{id}/{type} [get].
func (h *ResourceHandler) HandleResource(w http.ResponseWriter, r *http.Request) {
	resourceType := r.PathValue("type")

	out, s, err := h.FetchService.Resource(r.Context(), r.PathValue("id"), resourceType)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	writeOutcome(w, r, out, s, resourceType, nil)
}

// HandleSearch godoc
//
//	@Summary		FHIR Search
//	@Description	Runs a search against the session's FHIR server. query is passed through unchanged, e.g. "patient=123&code=8867-4".
//	@Tags			Resources
//	@Produce		json
//	@Param			id				path		string	true	"Session id"
//	@Param			resource_type	query		string	false	"Resource type"	default(Patient)
//	@Param			query			query		string	false	"Search parameters"
//	@Success		200				{object}	brokersdk.ResourceResponse
//	@Failure		400				{object}	brokersdk.ErrorResponse	"Invalid resource type or query"
//	@Failure		401				{object}	brokersdk.ErrorResponse	"No access token or re-authentication required"
//	@Failure		404				{object}	brokersdk.ErrorResponse	"Unknown session"
//	@Router			/fhir-search/{id} [get].
func (h *ResourceHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resourceType := q.Get("resource_type")
	if resourceType == "" {
		resourceType = "Patient"
	}
	query := q.Get("query")

	out, s, err := h.FetchService.Search(r.Context(), r.PathValue("id"), resourceType, query)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	writeOutcome(w, r, out, s, resourceType, &query)
}

func writeOutcome(w http.ResponseWriter, r *http.Request, out service.Outcome, s domain.Session, resourceType string, query *string) {
	if out.Kind != service.OutcomeOK {
		writeError(w, r, out.Err)
		return
	}

	summary := service.Summarize(out.Data)
	httpx.WriteJSON(w, http.StatusOK, brokersdk.ResourceResponse{
		ResourceType: resourceType,
		Query:        query,
		Data:         out.Data,
		Metadata: brokersdk.ResourceMetadata{
			FHIRServer:   s.FHIRBase,
			SessionID:    s.ID,
			TotalResults: summary.Total,
			EntryCount:   summary.Entries,
		},
	})
}
