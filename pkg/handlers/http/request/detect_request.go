package request

import "errors"

type DetectRequest struct {
	Text *string `json:"text"`
}

func (r *DetectRequest) Validate() error {
	if r.Text == nil {
		return errors.New("text is required")
	}
	return nil
}
