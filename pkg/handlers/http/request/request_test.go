package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestValidateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ValidateRequest
		wantErr string
	}{
		{name: "both present", req: ValidateRequest{UserInput: ptr("a"), CandidateResponse: ptr("")}},
		{name: "missing input", req: ValidateRequest{CandidateResponse: ptr("b")}, wantErr: "user_input is required"},
		{name: "missing response", req: ValidateRequest{UserInput: ptr("a")}, wantErr: "candidate_response is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestConsultRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ConsultRequest
		wantErr bool
	}{
		{name: "query only", req: ConsultRequest{Query: "ague"}},
		{name: "with session", req: ConsultRequest{Query: "ague", SessionID: "session_0123456789abcdef"}},
		{name: "blank query", req: ConsultRequest{Query: "  "}, wantErr: true},
		{name: "foreign session id", req: ConsultRequest{Query: "ague", SessionID: "abc"}, wantErr: true},
		{name: "huge query", req: ConsultRequest{Query: strings.Repeat("a", maxQueryLength+1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.req.Validate() != nil)
		})
	}
}

func TestDetectRequest_Validate(t *testing.T) {
	assert.Error(t, (&DetectRequest{}).Validate())
	assert.NoError(t, (&DetectRequest{Text: ptr("")}).Validate())
}
