package types

// ErrorResponse mirrors the body written by the error handler middleware.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// PaginationParams defines common pagination query parameters
type PaginationParams struct {
	Limit  int `form:"limit" binding:"omitempty,gte=0,lte=100"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

// Normalize applies the default page size.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Limit == 0 {
		p.Limit = 20
	}
	return p
}
