package service

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// SupportedResourceTypes are the types served by the single-resource endpoint.
var SupportedResourceTypes = []string{
	"Patient",
	"Observation",
	"Encounter",
	"MedicationRequest",
	"DiagnosticReport",
	"Procedure",
}

// BundleResource is one entry of the patient data bundle.
type BundleResource struct {
	Name        string
	Description string
	Path        string
}

// resourceDefaults are the search parameters per type for single-type
// fetches, in wire order.
var resourceDefaults = map[string][]string{
	"Observation":       {"category", "vital-signs", "_sort", "-date"},
	"Encounter":         {"_sort", "-date", "_count", "10"},
	"MedicationRequest": {"_sort", "-date", "_count", "5"},
	"DiagnosticReport":  {"_sort", "-date", "_count", "5"},
	"Procedure":         {"_sort", "-date", "_count", "5"},
}

var bundleEntries = []struct {
	name, description, resourceType string
	params                          []string
}{
	{"patient", "Patient information", "Patient", nil},
	{"observations", "Vital signs and observations", "Observation", []string{"category", "vital-signs", "_sort", "-date", "_count", "20"}},
	{"encounters", "Healthcare encounters", "Encounter", []string{"_sort", "-date", "_count", "10"}},
	{"medications", "Current medications", "MedicationRequest", []string{"_sort", "-date", "_count", "5"}},
	{"diagnostic_reports", "Lab results and diagnostic reports", "DiagnosticReport", []string{"_sort", "-date", "_count", "5"}},
	{"procedures", "Medical procedures", "Procedure", []string{"_sort", "-date", "_count", "5"}},
}

// BundleResources lists the six bundle fetches, scoped to patientID when it is
// known and server-wide otherwise.
func BundleResources(patientID string) []BundleResource {
	out := make([]BundleResource, 0, len(bundleEntries))
	for _, e := range bundleEntries {
		out = append(out, BundleResource{
			Name:        e.name,
			Description: e.description,
			Path:        resourcePath(e.resourceType, patientID, e.params),
		})
	}
	return out
}

// ResourcePath returns the request path for a supported resource type.
func ResourcePath(resourceType, patientID string) (string, error) {
	if !slices.Contains(SupportedResourceTypes, resourceType) {
		return "", fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedResource, resourceType, strings.Join(SupportedResourceTypes, ", "))
	}
	return resourcePath(resourceType, patientID, resourceDefaults[resourceType]), nil
}

func resourcePath(resourceType, patientID string, params []string) string {
	if resourceType == "Patient" {
		if patientID != "" {
			return "Patient/" + url.PathEscape(patientID)
		}
		return "Patient"
	}

	var pairs []string
	if patientID != "" {
		pairs = append(pairs, "patient", patientID)
	}
	pairs = append(pairs, params...)
	return resourceType + "?" + orderedQuery(pairs...)
}

// orderedQuery encodes key/value pairs keeping their order, unlike
// url.Values.Encode which sorts keys.
func orderedQuery(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pairs[i]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pairs[i+1]))
	}
	return b.String()
}

var resourceTypePattern = regexp.MustCompile(`^[A-Z][A-Za-z]{1,63}$`)

// SearchPath validates a free-form search and returns its request path. The
// query is passed through as a raw query string, but must parse.
func SearchPath(resourceType, query string) (string, error) {
	if !resourceTypePattern.MatchString(resourceType) {
		return "", fmt.Errorf("%w: invalid resource type %q", ErrInvalidRequest, resourceType)
	}
	query = strings.TrimPrefix(strings.TrimSpace(query), "?")
	if query == "" {
		return resourceType, nil
	}
	if _, err := url.ParseQuery(query); err != nil {
		return "", fmt.Errorf("%w: invalid query: %w", ErrInvalidRequest, err)
	}
	return resourceType + "?" + query, nil
}
