package adsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	adsdomain "github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/domain"
)

// ListAccessibleCustomers retorna os resource names das contas acessíveis
// pelas credenciais configuradas, no formato "customers/{id}"
func (c *AdsClient) ListAccessibleCustomers(ctx context.Context) ([]string, error) {
	// Garantir que o token seja válido antes de fazer a requisição
	if err := c.EnsureValidToken(); err != nil {
		return nil, fmt.Errorf("erro ao verificar validade do token: %w", err)
	}

	requestURL := fmt.Sprintf("%s/customers:listAccessibleCustomers", c.Cfg.GoogleAds.URL)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar a requisição")
		return nil, err
	}

	c.setHeaders(req)

	client := &http.Client{
		Timeout: time.Duration(c.Cfg.GoogleAds.RequestTimeoutSeconds) * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		logrus.WithError(err).Error("Erro ao fazer a requisição")
		return nil, err
	}
	defer resp.Body.Close()

	// Usar o manipulador de resposta que verifica tokens expirados
	body, err := c.HandleResponse(resp)
	if err != nil {
		// Se o erro indica que o token foi renovado, tentar novamente
		if err.Error() == "token expirado e renovado, por favor tente novamente" {
			return c.ListAccessibleCustomers(ctx)
		}
		return nil, err
	}

	var response adsdomain.ListAccessibleCustomersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON")
		return nil, err
	}

	if response.ResourceNames == nil {
		return nil, fmt.Errorf("No data found")
	}

	return response.ResourceNames, nil
}

// GetCustomerClients retorna as contas visíveis a partir de uma conta,
// incluindo a própria (nível 0) e os filhos diretos (nível 1)
func (c *AdsClient) GetCustomerClients(ctx context.Context, managerID string) ([]adsdomain.CustomerClient, error) {
	query := `
		SELECT
			customer_client.id,
			customer_client.descriptive_name,
			customer_client.manager,
			customer_client.status,
			customer_client.level
		FROM customer_client
		WHERE customer_client.level <= 1
	`

	results, err := c.Search(ctx, managerID, query)
	if err != nil {
		return nil, err
	}

	clients := make([]adsdomain.CustomerClient, 0, len(results))

	for _, result := range results {
		if result.CustomerClient == nil {
			continue
		}

		clients = append(clients, *result.CustomerClient)
	}

	return clients, nil
}
