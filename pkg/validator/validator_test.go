package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRequest struct {
	Date  string `json:"date" validate:"required,yyyymmdd"`
	Start string `json:"start_time" validate:"required,hhmm"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestCustomTags(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(slotRequest{Date: "2024-03-15", Start: "09:30"}))

	tests := []struct {
		name  string
		req   slotRequest
		field string
	}{
		{"bad clock", slotRequest{Date: "2024-03-15", Start: "9:30"}, "start_time"},
		{"hour out of range", slotRequest{Date: "2024-03-15", Start: "25:00"}, "start_time"},
		{"bad date", slotRequest{Date: "15/03/2024", Start: "09:30"}, "date"},
		{"impossible date", slotRequest{Date: "2024-02-30", Start: "09:30"}, "date"},
		{"missing date", slotRequest{Start: "09:30"}, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			msgs := FormatValidationErrors(err)
			assert.Contains(t, msgs, tt.field)
		})
	}
}

func TestFormatValidationErrorsMessages(t *testing.T) {
	v := NewValidator()
	err := v.Validate(slotRequest{Date: "2024-03-15", Start: "noon", Email: "nope"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	assert.Equal(t, "start_time must be a time in HH:MM format", msgs["start_time"])
	assert.Equal(t, "email must be a valid email address", msgs["email"])
}

func TestFormatValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FormatValidationErrors(errors.New("boom")))
}
