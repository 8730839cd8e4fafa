package chi

// ErrorResponseCode is the machine-readable error code in API error bodies.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest    ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized  ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInternalError ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// QueryRequest is the body of POST /query. Tags is required; Query may be null.
type QueryRequest struct {
	Query *string   `json:"query"`
	Tags  *[]string `json:"tags"`
}

// DocumentPreview is one search hit.
type DocumentPreview struct {
	UUID  string   `json:"uuid"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Short string   `json:"short"`
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	Documents []DocumentPreview `json:"documents"`
}

// TagsResponse is the body of a successful GET /query_tags.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
