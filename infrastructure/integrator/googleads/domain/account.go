package adsdomain

type Customer struct {
	ResourceName    string `json:"resourceName,omitempty"`
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName"`
	Manager         bool   `json:"manager"`
	Status          string `json:"status"`
}

// CustomerClient é uma conta visível a partir de uma conta gerenciadora (MCC).
// Level "0" é a própria conta consultada; "1" são os filhos diretos.
type CustomerClient struct {
	ResourceName    string `json:"resourceName,omitempty"`
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName"`
	Manager         bool   `json:"manager"`
	Status          string `json:"status"`
	Level           string `json:"level"`
}

type ListAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}
