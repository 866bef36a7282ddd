package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "ok", value: "Bearer abc", want: "abc"},
		{name: "lower scheme", value: "bearer abc", want: "abc"},
		{name: "padded", value: "  Bearer   abc  ", want: "abc"},
		{name: "empty", value: "", wantErr: true},
		{name: "scheme only", value: "Bearer", wantErr: true},
		{name: "scheme and blank", value: "Bearer   ", wantErr: true},
		{name: "basic", value: "Basic abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearer(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/refresh", nil)
	_, err := ExtractFromRequest(r)
	assert.ErrorIs(t, err, common.ErrMissingToken)

	r.Header.Set("Authorization", BearerValue("tok"))
	got, err := ExtractFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}
