package api

import "github.com/go-playground/validator/v10"

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type IDParam struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

type DeclineMatchRequest struct {
	ID     int64  `param:"id" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"max=500"`
}

type SubmitDeliverableRequest struct {
	ID   int64  `param:"id" validate:"required,gt=0"`
	URL  string `json:"url" validate:"omitempty,url,max=2048"`
	Note string `json:"note" validate:"max=1000"`
}

type VerifyDeliverableRequest struct {
	ID        int64  `param:"id" validate:"required,gt=0"`
	Permalink string `json:"permalink" validate:"omitempty,url,max=2048"`
}

type ReportHistoryRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

// RequestValidator plugs validator into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator.New()}
}

func (v *RequestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
