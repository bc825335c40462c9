package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postBody struct {
	Title *string `json:"title" validate:"required"`
	Body  *string `json:"body" validate:"required"`
	Extra *string `json:"extra"`
}

func TestRequired(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantFields []string
	}{
		{name: "all present", raw: `{"title":"T","body":"B"}`},
		{name: "empty strings count as present", raw: `{"title":"","body":""}`},
		{name: "empty body", raw: `{}`, wantFields: []string{"title", "body"}},
		{name: "missing body", raw: `{"title":"T"}`, wantFields: []string{"body"}},
		{name: "missing title", raw: `{"body":"B","extra":"x"}`, wantFields: []string{"title"}},
		{name: "null counts as missing", raw: `{"title":null,"body":"B"}`, wantFields: []string{"title"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body postBody
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &body))

			err := Required(&body)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var mfe *MissingFieldsError
			require.ErrorAs(t, err, &mfe)
			assert.Equal(t, tt.wantFields, mfe.Fields)
		})
	}
}

func TestMissingFieldsError_Message(t *testing.T) {
	err := &MissingFieldsError{Fields: []string{"title", "body"}}
	assert.Equal(t, "title, body must be in the request body", err.Error())
}

func TestRequired_NotAStruct(t *testing.T) {
	err := Required("plain string")
	require.Error(t, err)

	var mfe *MissingFieldsError
	assert.False(t, errors.As(err, &mfe))
}
