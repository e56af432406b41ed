package request

import "errors"

type ValidateRequest struct {
	UserInput         *string `json:"user_input"`
	CandidateResponse *string `json:"candidate_response"`
}

func (r *ValidateRequest) Validate() error {
	if r.UserInput == nil {
		return errors.New("user_input is required")
	}
	if r.CandidateResponse == nil {
		return errors.New("candidate_response is required")
	}
	return nil
}
