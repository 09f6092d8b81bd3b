// Package types defines the response envelope and error taxonomy shared
// by every Vigil endpoint.
package types

// Response is the envelope wrapping every JSON body the API returns.
//
// Exactly one of Data and Error is populated: Success reports which.
// List endpoints additionally carry Pagination. Clients can rely on
// this shape for all /api routes; only the Prometheus exposition at
// /metrics falls outside it.
type Response struct {
	Success    bool                `json:"success"`
	Data       interface{}         `json:"data,omitempty"`
	Error      *Error              `json:"error,omitempty"`
	Pagination *PaginationResponse `json:"pagination,omitempty"`
}

// PaginationResponse carries paging metadata for list responses.
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// SuccessResponse wraps data in a successful envelope.
func SuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// SuccessResponseWithPagination wraps a list payload and its paging
// metadata in a successful envelope.
func SuccessResponseWithPagination(data interface{}, pagination *PaginationResponse) Response {
	return Response{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	}
}
