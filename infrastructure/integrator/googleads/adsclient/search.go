package adsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	adsdomain "github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/domain"
)

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

// Search executa uma consulta GAQL no endpoint googleAds:search, seguindo a
// paginação até o final. O contexto limita a duração total da chamada. Se uma
// página intermediária falhar, as páginas já recebidas são devolvidas junto
// com o erro.
func (c *AdsClient) Search(ctx context.Context, customerID, query string) ([]adsdomain.SearchResult, error) {
	// Garantir que o token seja válido antes de fazer a requisição
	if err := c.EnsureValidToken(); err != nil {
		return nil, fmt.Errorf("erro ao verificar validade do token: %w", err)
	}

	requestURL := fmt.Sprintf("%s/customers/%s/googleAds:search", c.Cfg.GoogleAds.URL, customerID)

	results := make([]adsdomain.SearchResult, 0)
	pageToken := ""

	for {
		payload, err := json.Marshal(searchRequest{Query: query, PageToken: pageToken})
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar a consulta: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewReader(payload))
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
			return results, err
		}

		body, err := c.HandleResponse(resp)
		resp.Body.Close()
		if err != nil {
			// Se o erro indica que o token foi renovado, tentar novamente
			if err.Error() == "token expirado e renovado, por favor tente novamente" {
				return c.Search(ctx, customerID, query)
			}
			return results, err
		}

		var response adsdomain.SearchResponse
		if err := json.Unmarshal(body, &response); err != nil {
			logrus.WithError(err).Error("Erro ao decodificar JSON")
			return results, err
		}

		results = append(results, response.Results...)

		if response.NextPageToken == "" {
			break
		}

		pageToken = response.NextPageToken
	}

	return results, nil
}

func (c *AdsClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Cfg.GoogleAds.AccessToken)
	req.Header.Set("developer-token", c.Cfg.GoogleAds.DeveloperToken)

	if c.Cfg.GoogleAds.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", c.Cfg.GoogleAds.LoginCustomerID)
	}
}
