package meta

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		fragments []string
	}{
		{
			name:      "authentication",
			err:       &ErrAuthentication{Reason: "session expired"},
			fragments: []string{"Could not authenticate", "session expired"},
		},
		{
			name:      "not found",
			err:       &ErrNotFound{Type: "UserProfile", ID: "109876543210987654321"},
			fragments: []string{"not found", "UserProfile", "109876543210987654321"},
		},
		{
			name:      "conflict",
			err:       &ErrConflict{Type: "UserProfile", ID: "109876543210987654321", Reason: "a profile with that subject already exists"},
			fragments: []string{"already exists"},
		},
		{
			name:      "not supported",
			err:       &ErrNotSupported{Details: "bearer tokens are disabled in session mode"},
			fragments: []string{"bearer tokens are disabled"},
		},
		{
			name:      "internal server",
			err:       &ErrInternalServer{},
			fragments: []string{"internal server error"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for _, fragment := range testCase.fragments {
				require.Contains(t, testCase.err.Error(), fragment)
			}
		})
	}
}

func TestErrBadRequestMessageDetails(t *testing.T) {
	err := &ErrBadRequest{Reason: "validation failed"}
	require.Contains(t, err.Error(), "validation failed")
	require.NotContains(t, err.Error(), "\n")

	err.Details = []string{"price is required", "category is required"}
	for _, detail := range err.Details {
		require.Contains(t, err.Error(), detail)
	}
}

// Every error kind carries type metadata when serialized so clients can
// dispatch on kind without sniffing field shapes.
func TestErrorTypeMetadata(t *testing.T) {
	testCases := []struct {
		kind string
		err  json.Marshaler
	}{
		{
			kind: "AuthenticationError",
			err:  ErrAuthentication{Reason: "session expired"},
		},
		{
			kind: "BadRequestError",
			err:  ErrBadRequest{Reason: "validation failed", Details: []string{"price is required"}},
		},
		{
			kind: "NotFoundError",
			err:  ErrNotFound{Type: "Product", ID: "123"},
		},
		{
			kind: "ConflictError",
			err:  ErrConflict{Type: "UserProfile", ID: "123", Reason: "duplicate"},
		},
		{
			kind: "NotSupportedError",
			err:  ErrNotSupported{Details: "nope"},
		},
		{
			kind: "InternalServerError",
			err:  ErrInternalServer{},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.kind, func(t *testing.T) {
			bytes, err := json.Marshal(testCase.err)
			require.NoError(t, err)
			serialized := map[string]interface{}{}
			require.NoError(t, json.Unmarshal(bytes, &serialized))
			require.Equal(t, testCase.kind, serialized["kind"])
			require.Equal(t, APIVersion, serialized["apiVersion"])
		})
	}
}

func TestErrorTypeMetadataRetainsFields(t *testing.T) {
	bytes, err := json.Marshal(
		ErrBadRequest{
			Reason:  "validation failed",
			Details: []string{"price is required", "category is required"},
		},
	)
	require.NoError(t, err)
	serialized := struct {
		TypeMeta `json:",inline"`
		Reason   string   `json:"reason"`
		Details  []string `json:"details"`
	}{}
	require.NoError(t, json.Unmarshal(bytes, &serialized))
	require.Equal(t, "validation failed", serialized.Reason)
	require.Equal(
		t,
		[]string{"price is required", "category is required"},
		serialized.Details,
	)
}
