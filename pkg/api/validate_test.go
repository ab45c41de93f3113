package api

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_LoginRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		wantErr bool
	}{
		{name: "complete", req: LoginRequest{Username: "admin", Password: "admin123"}},
		{name: "missing password", req: LoginRequest{Username: "admin"}, wantErr: true},
		{name: "missing username", req: LoginRequest{Password: "admin123"}, wantErr: true},
		{name: "empty", req: LoginRequest{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantErr {
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.NotEmpty(t, verrs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_PostRequests(t *testing.T) {
	assert.NoError(t, Validate(CreatePostRequest{Title: "t", Description: "d", Content: "c"}))
	assert.Error(t, Validate(CreatePostRequest{Title: "t", Description: "d"}))

	long := strings.Repeat("a", 201)
	assert.Error(t, Validate(UpdatePostRequest{Slug: &long}))
	assert.NoError(t, Validate(UpdatePostRequest{}))
}
