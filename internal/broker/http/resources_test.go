package http

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/stretchr/testify/require"
)

func TestHandlePatientData(t *testing.T) {
	t.Parallel()

	t.Run("partial failure is reported in metadata", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)
		b.ehr.setFHIR(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/Procedure") {
				writeTestJSON(w, http.StatusForbidden, map[string]string{"resourceType": "OperationOutcome"})
				return
			}
			writeTestJSON(w, http.StatusOK, map[string]any{"resourceType": "Bundle", "total": 0})
		})

		rec := b.get(t, "/patient-data/"+s.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		bundle := decode[brokersdk.PatientBundle](t, rec)
		md := bundle.Metadata
		require.Equal(t, []string{"patient", "observations", "encounters", "medications", "diagnostic_reports"}, md.ResourcesFetched)
		require.Equal(t, []string{"procedures"}, md.ResourcesFailed)
		require.Len(t, md.Errors, 1)
		require.False(t, md.NeedsReauth)
		require.Equal(t, s.FHIRBase, md.FHIRServer)
		require.Equal(t, "123", md.PatientID)
		require.NotEmpty(t, md.FetchID)
		require.JSONEq(t, "null", string(bundle.Procedures))
		require.JSONEq(t, `{"resourceType":"Bundle","total":0}`, string(bundle.Observations))
	})

	t.Run("reauth required", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, func(s *domain.Session) { s.NeedsReauth = true })

		rec := b.get(t, "/patient-data/"+s.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		md := decode[brokersdk.PatientBundle](t, rec).Metadata
		require.True(t, md.NeedsReauth)
		require.Equal(t, reauthMessage, md.ReauthMessage)
		require.Empty(t, md.ResourcesFetched)
	})

	t.Run("not authenticated", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, launched)

		rec := b.get(t, "/patient-data/"+s.ID)
		requireError(t, rec, http.StatusUnauthorized, brokersdk.ErrorCodeNotAuthenticated)
		require.Contains(t, rec.Body.String(), "No access token available")
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)

		requireError(t, b.get(t, "/patient-data/nope"), http.StatusNotFound, brokersdk.ErrorCodeSessionNotFound)
	})
}

func TestHandleResource(t *testing.T) {
	t.Parallel()

	t.Run("default parameters", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		var query capture[url.Values]
		b.ehr.setFHIR(func(w http.ResponseWriter, r *http.Request) {
			query.set(r.URL.Query())
			writeTestJSON(w, http.StatusOK, map[string]any{"resourceType": "Bundle", "total": 7, "entry": []any{map[string]any{}, map[string]any{}}})
		})

		rec := b.get(t, "/fhir-resource/"+s.ID+"/Encounter")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[brokersdk.ResourceResponse](t, rec)
		require.Equal(t, "Encounter", resp.ResourceType)
		require.Nil(t, resp.Query)
		require.Equal(t, 7, resp.Metadata.TotalResults)
		require.Equal(t, 2, resp.Metadata.EntryCount)
		require.Equal(t, "123", query.get().Get("patient"))
		require.Equal(t, "10", query.get().Get("_count"))
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		requireError(t, b.get(t, "/fhir-resource/"+s.ID+"/Claim"), http.StatusBadRequest, brokersdk.ErrorCodeUnsupportedResource)
	})

	t.Run("upstream status is propagated", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)
		b.ehr.setFHIR(func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusNotFound, map[string]string{"resourceType": "OperationOutcome"})
		})

		requireError(t, b.get(t, "/fhir-resource/"+s.ID+"/Patient"), http.StatusNotFound, brokersdk.ErrorCodeUpstreamError)
	})

	t.Run("non-JSON success body is a bad gateway", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)
		b.ehr.setFHIR(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>login</html>"))
		})

		requireError(t, b.get(t, "/fhir-resource/"+s.ID+"/Patient"), http.StatusBadGateway, brokersdk.ErrorCodeUpstreamError)
	})

	t.Run("rejected token without refresh token", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, func(s *domain.Session) { s.RefreshToken = "" })
		b.ehr.setFHIR(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		requireError(t, b.get(t, "/fhir-resource/"+s.ID+"/Patient"), http.StatusUnauthorized, brokersdk.ErrorCodeReauthRequired)
		require.Zero(t, b.ehr.tokenCalls.Load())
	})
}

func TestHandleSearch(t *testing.T) {
	t.Parallel()

	t.Run("query is passed through", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		var got capture[string]
		b.ehr.setFHIR(func(w http.ResponseWriter, r *http.Request) {
			got.set(r.URL.Path + "?" + r.URL.RawQuery)
			writeTestJSON(w, http.StatusOK, map[string]any{"resourceType": "Bundle", "total": 0})
		})

		q := url.Values{"resource_type": {"Observation"}, "query": {"patient=123&code=8867-4"}}
		rec := b.get(t, "/fhir-search/"+s.ID+"?"+q.Encode())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, "/fhir/Observation?patient=123&code=8867-4", got.get())

		resp := decode[brokersdk.ResourceResponse](t, rec)
		require.Equal(t, "Observation", resp.ResourceType)
		require.NotNil(t, resp.Query)
		require.Equal(t, "patient=123&code=8867-4", *resp.Query)
	})

	t.Run("defaults to Patient", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		resp := decode[brokersdk.ResourceResponse](t, b.get(t, "/fhir-search/"+s.ID))
		require.Equal(t, "Patient", resp.ResourceType)
	})

	t.Run("invalid resource type", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		rec := b.get(t, "/fhir-search/"+s.ID+"?resource_type=../admin")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
