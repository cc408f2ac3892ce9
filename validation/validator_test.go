package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageRequest struct {
	Size      int64  `json:"size" validate:"gt=0,lte=100"`
	Offset    int64  `json:"offset" validate:"gte=0"`
	Sort      string `json:"sort" validate:"required"`
	Direction string `json:"direction" validate:"omitempty,oneof=ASC DESC"`
}

func TestGetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}

func TestStructValid(t *testing.T) {
	assert.Nil(t, Struct(&pageRequest{Size: 10, Sort: "name"}))
}

func TestStructInvalid(t *testing.T) {
	tests := []struct {
		name    string
		in      pageRequest
		field   string
		tag     string
		message string
	}{
		{"zero size", pageRequest{Sort: "id"}, "size", "gt", "size must be greater than 0"},
		{"size too big", pageRequest{Size: 500, Sort: "id"}, "size", "lte", "size must be less than or equal to 100"},
		{"negative offset", pageRequest{Size: 1, Offset: -1, Sort: "id"}, "offset", "gte", "offset must be greater than or equal to 0"},
		{"missing sort", pageRequest{Size: 1}, "sort", "required", "sort is required"},
		{"bad direction", pageRequest{Size: 1, Sort: "id", Direction: "SIDEWAYS"}, "direction", "oneof", "direction must be one of: ASC DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := Struct(&tt.in)
			require.NotNil(t, verr)
			require.Len(t, verr.Fields(), 1)
			fe := verr.Fields()[0]
			assert.Equal(t, tt.field, fe.Field())
			assert.Equal(t, tt.tag, fe.Tag())
			assert.Equal(t, tt.message, fe.Error())
			assert.Equal(t, tt.message, verr.Error())
		})
	}
}

func TestStructMultipleErrors(t *testing.T) {
	verr := Struct(&pageRequest{Offset: -5})
	require.NotNil(t, verr)
	assert.Len(t, verr.Fields(), 3)
	assert.Contains(t, verr.Error(), "; ")
}
