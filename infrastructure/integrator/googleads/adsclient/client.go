package adsclient

import (
	"context"
	"net/http"

	adsdomain "github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/metrics-sync-api/internal/config"
)

type Client interface {
	Search(ctx context.Context, customerID, query string) ([]adsdomain.SearchResult, error)
	ListAccessibleCustomers(ctx context.Context) ([]string, error)
	GetCustomerClients(ctx context.Context, managerID string) ([]adsdomain.CustomerClient, error)
	RefreshToken() error
	EnsureValidToken() error
	HandleResponse(resp *http.Response) ([]byte, error)
}

type AdsClient struct {
	Cfg          *config.Config
	TokenManager *TokenManager
}

func NewClient(cfg *config.Config, tokenManager *TokenManager) Client {
	client := &AdsClient{
		Cfg:          cfg,
		TokenManager: tokenManager,
	}
	return client
}

// RefreshToken obtém um novo access token
func (c *AdsClient) RefreshToken() error {
	return c.TokenManager.RefreshToken()
}

// EnsureValidToken verifica se o token atual é válido e tenta renová-lo se necessário
func (c *AdsClient) EnsureValidToken() error {
	return c.TokenManager.EnsureValidToken()
}

// HandleResponse manipula a resposta HTTP e verifica erros de token expirado
func (c *AdsClient) HandleResponse(resp *http.Response) ([]byte, error) {
	return c.TokenManager.HandleResponse(resp)
}
