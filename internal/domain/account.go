package domain

type ManagerAccount struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ExternalID string `json:"external_id"`
}

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// Account é uma conta de anúncios sincronizada pelo serviço. CustomerID é o
// identificador do cliente na plataforma de anúncios; ID é o identificador
// interno.
type Account struct {
	CustomerID  string        `json:"customer_id"`
	ID          string        `json:"id"`
	ManagerID   string        `json:"manager_id"`
	ManagerName string        `json:"manager_name"`
	Name        string        `json:"name"`
	Nickname    *string       `json:"nickname"`
	Status      AccountStatus `json:"status"`
}

type AccountResponse struct {
	CustomerID string        `json:"customer_id"`
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Nickname   *string       `json:"nickname"`
	Status     AccountStatus `json:"status"`
}

type UpdateAccountRequest struct {
	ID       string  `json:"id"`
	Nickname *string `json:"nickname,omitempty"`
	Status   *string `json:"status,omitempty"`
}

type UpdateAccountResponse struct {
	ID       string  `json:"id"`
	Nickname *string `json:"nickname,omitempty"`
	Status   *string `json:"status,omitempty"`
}

type SyncAccountsResponse struct {
	Quantity int    `json:"quantity"`
	Message  string `json:"message"`
	Error    bool   `json:"error"`
}
