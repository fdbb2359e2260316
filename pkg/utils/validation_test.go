package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Title  string   `validate:"required,max=10"`
	Cost   int      `validate:"gte=0"`
	Type   string   `validate:"oneof=course exam"`
	Tags   []string `validate:"dive,min=2"`
	Weight int      `validate:"lte=5"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr string
	}{
		{name: "valid", req: sampleRequest{Title: "Law", Type: "course"}},
		{name: "required", req: sampleRequest{Type: "exam"}, wantErr: "title is required"},
		{name: "max", req: sampleRequest{Title: "Much too long a title", Type: "exam"}, wantErr: "title must be at most 10 characters"},
		{name: "gte", req: sampleRequest{Title: "Law", Cost: -1, Type: "exam"}, wantErr: "cost must be at least 0"},
		{name: "lte", req: sampleRequest{Title: "Law", Type: "exam", Weight: 9}, wantErr: "weight must be at most 5"},
		{name: "oneof", req: sampleRequest{Title: "Law", Type: "hobby"}, wantErr: "type must be one of: course exam"},
		{name: "dive", req: sampleRequest{Title: "Law", Type: "exam", Tags: []string{"x"}}, wantErr: "tags[0] must be at least 2 characters"},
		{
			name:    "several joined",
			req:     sampleRequest{Cost: -1, Type: "exam"},
			wantErr: "title is required; cost must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
