package dto

// Response is the single envelope every endpoint uses: mutations return
// {success, message?, data?}, failures {success:false, message}.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func OKMessage(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Error(message string) Response {
	return Response{Success: false, Message: message}
}

func ValidationError(details map[string]string) Response {
	return Response{Success: false, Message: "Validation failed", Details: details}
}

// Pagination describes the page window of a list response.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Limit       int `json:"limit"`
}

type PaginationParams struct {
	Page  int
	Limit int
}

func (p *PaginationParams) Normalize(defaultLimit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate computes the pagination block for a total row count.
func (p *PaginationParams) Paginate(total int64) Pagination {
	totalPages := int(total) / p.Limit
	if int(total)%p.Limit > 0 {
		totalPages++
	}
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		Limit:       p.Limit,
	}
}
