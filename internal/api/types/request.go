package types

// PaginationRequest represents pagination parameters in requests
type PaginationRequest struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=50" binding:"min=1,max=500"`
}
