package adsdomain

// ErrorResponse representa a estrutura de erro da API do Google Ads
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Google Ads
type ErrorDetails struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Status  string        `json:"status"`
	Details []interface{} `json:"details,omitempty"`
}

// IsAuthExpired verifica se o erro indica credencial de acesso expirada
func (e *ErrorResponse) IsAuthExpired() bool {
	// A API retorna 401/UNAUTHENTICATED quando o access token expirou
	return e.Error.Code == 401 || e.Error.Status == "UNAUTHENTICATED"
}

// IsRateLimited verifica se a API recusou a chamada por excesso de requisições
func (e *ErrorResponse) IsRateLimited() bool {
	return e.Error.Code == 429 || e.Error.Status == "RESOURCE_EXHAUSTED"
}
