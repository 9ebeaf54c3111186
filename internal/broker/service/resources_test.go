package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBundleResources(t *testing.T) {
	t.Parallel()

	rs := BundleResources("p 1")
	require.Len(t, rs, 6)
	require.Equal(t, "Patient/p%201", rs[0].Path)
	require.Equal(t, "Observation?patient=p+1&category=vital-signs&_sort=-date&_count=20", rs[1].Path)
	require.Equal(t, "Lab results and diagnostic reports", rs[4].Description)
}

func TestResourcePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		resourceType string
		patientID    string
		want         string
	}{
		{"Patient", "123", "Patient/123"},
		{"Patient", "", "Patient"},
		{"Observation", "123", "Observation?patient=123&category=vital-signs&_sort=-date"},
		{"Encounter", "", "Encounter?_sort=-date&_count=10"},
		{"Procedure", "123", "Procedure?patient=123&_sort=-date&_count=5"},
	}
	for _, tt := range tests {
		t.Run(tt.resourceType+"/"+tt.patientID, func(t *testing.T) {
			got, err := ResourcePath(tt.resourceType, tt.patientID)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		_, err := ResourcePath("Immunization", "123")
		require.ErrorIs(t, err, ErrUnsupportedResource)
	})
}

func TestSearchPath(t *testing.T) {
	t.Parallel()

	got, err := SearchPath("Condition", "?patient=123&clinical-status=active")
	require.NoError(t, err)
	require.Equal(t, "Condition?patient=123&clinical-status=active", got)

	got, err = SearchPath("Condition", "")
	require.NoError(t, err)
	require.Equal(t, "Condition", got)

	_, err = SearchPath("../admin", "")
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = SearchPath("condition", "")
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = SearchPath("Condition", "a=%zz")
	require.ErrorIs(t, err, ErrInvalidRequest)
}
