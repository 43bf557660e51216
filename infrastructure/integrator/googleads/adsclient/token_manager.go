package adsclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	adsdomain "github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/metrics-sync-api/internal/config"

	"github.com/sirupsen/logrus"
)

// TokenManager gerencia os access tokens da API do Google Ads. O refresh
// token é uma credencial durável configurada no ambiente; o access token é
// de curta duração e renovado aqui.
type TokenManager struct {
	cfg               *config.Config
	TokenRefreshMutex sync.Mutex
	stopRefresh       chan struct{}
}

// NewTokenManager cria uma nova instância do gerenciador de tokens
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		cfg:               cfg,
		TokenRefreshMutex: sync.Mutex{},
		stopRefresh:       make(chan struct{}),
	}
}

func (tm *TokenManager) InitToken() {
	// Obtém o primeiro access token na inicialização
	if tm.cfg.GoogleAds.AccessToken == "" {
		logrus.Info("Access token não encontrado. Iniciando processo de obtenção...")
		if err := tm.RefreshToken(); err != nil {
			logrus.Errorf("Falha ao obter access token inicial: %v", err)
			logrus.Warn("A API Google Ads pode ter funcionalidade limitada até que o token seja configurado corretamente")
			return
		}

		logrus.Info("Access token inicializado com sucesso")
		return
	}

	// Garantir que o token seja válido, mesmo que a data de expiração esteja definida
	if err := tm.EnsureValidToken(); err != nil {
		logrus.Errorf("Erro ao verificar validade do token: %v", err)
	}
}

// StartAutoRefresh inicia uma goroutine que atualiza o token periodicamente
func (tm *TokenManager) StartAutoRefresh() {
	// Access tokens do Google duram uma hora; renovamos antes disso
	refreshInterval := 45 * time.Minute
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Tenta renovar o token periodicamente
			logrus.Info("Iniciando renovação periódica do token do Google Ads")
			if err := tm.RefreshToken(); err != nil {
				logrus.Errorf("Erro na renovação periódica do token: %v", err)

				// Se falhar, tente novamente em um intervalo mais curto
				ticker.Reset(5 * time.Minute)
			} else {
				logrus.Info("Renovação periódica do token concluída com sucesso")

				// Restaurar para o intervalo normal
				ticker.Reset(refreshInterval)
			}
		case <-tm.stopRefresh:
			logrus.Info("Encerrando goroutine de renovação periódica do token")
			return
		}
	}
}

// StopAutoRefresh para a goroutine de renovação automática
func (tm *TokenManager) StopAutoRefresh() {
	close(tm.stopRefresh)
}

// RefreshToken obtém um novo access token a partir do refresh token
func (tm *TokenManager) RefreshToken() error {
	return tm.refreshTokenInternal()
}

// refreshTokenInternal é a implementação interna do refresh de token
func (tm *TokenManager) refreshTokenInternal() error {
	tm.TokenRefreshMutex.Lock()
	defer tm.TokenRefreshMutex.Unlock()

	logrus.Info("Iniciando renovação do token...")
	tokenResponse, err := ExchangeRefreshToken(
		tm.cfg.GoogleAds.ClientID,
		tm.cfg.GoogleAds.ClientSecret,
		tm.cfg.GoogleAds.RefreshToken,
		tm.cfg.GoogleAds.OAuthTokenURL,
	)
	if err != nil {
		errMsg := err.Error()

		// invalid_grant indica refresh token revogado ou expirado; não há
		// renovação automática possível nesse caso
		if strings.Contains(errMsg, "invalid_grant") {
			logrus.Error("O refresh token foi revogado ou expirou e não pode ser renovado automaticamente. É necessário reautorizar")

			return fmt.Errorf("o refresh token foi revogado ou expirou. "+
				"É necessário reautorizar o aplicativo através do processo de autenticação OAuth: %w", err)
		}

		// Outros erros
		logrus.Errorf("Erro ao renovar token: %v", err)
		return fmt.Errorf("erro ao obter novo access token: %w", err)
	}

	// Atualizar a configuração
	tm.cfg.GoogleAds.AccessToken = tokenResponse.AccessToken
	tm.cfg.GoogleAds.TokenExpiresAt = CalculateTokenExpiration(tokenResponse.ExpiresIn)

	logrus.Infof("Access token atualizado com sucesso. Expira em: %s",
		tm.cfg.GoogleAds.TokenExpiresAt.Format(time.RFC3339))

	return nil
}

// EnsureValidToken verifica se o token atual é válido e tenta renová-lo se necessário
func (tm *TokenManager) EnsureValidToken() error {
	// Se o token está nulo ou vazio, precisamos inicializá-lo
	if tm.cfg.GoogleAds.AccessToken == "" {
		logrus.Info("Token não inicializado. Inicializando...")
		return tm.RefreshToken()
	}

	// Verificar se o token está prestes a expirar (menos de 5 minutos)
	if time.Until(tm.cfg.GoogleAds.TokenExpiresAt) < 5*time.Minute {
		logrus.Info("Token expira em menos de 5 minutos. Renovando proativamente...")
		return tm.RefreshToken()
	}

	return nil
}

// ParseErrorResponse tenta parsear um erro da API do Google Ads
func ParseErrorResponse(body []byte) (*adsdomain.ErrorResponse, error) {
	var errorResp adsdomain.ErrorResponse
	err := json.Unmarshal(body, &errorResp)
	if err != nil {
		return nil, err
	}
	return &errorResp, nil
}

// HandleResponse manipula a resposta HTTP e verifica erros de token expirado
func (tm *TokenManager) HandleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	// Se a resposta for bem-sucedida, retorna o corpo
	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	// Processa erro na resposta da API
	return tm.handleErrorResponse(resp.StatusCode, body)
}

// handleErrorResponse processa erros nas respostas da API
func (tm *TokenManager) handleErrorResponse(statusCode int, body []byte) ([]byte, error) {
	// Primeiro tentar parsear como JSON
	errorResp, parseErr := ParseErrorResponse(body)

	// Verificar se é erro de token expirado pela estrutura JSON
	if parseErr == nil && errorResp.IsAuthExpired() {
		return tm.handleExpiredToken(errorResp)
	}

	// Verificar pela mensagem de erro em texto
	bodyStr := string(body)
	if containsAuthExpirationMessage(bodyStr) {
		return tm.handleExpiredTokenByMessage(bodyStr)
	}

	return nil, fmt.Errorf("erro na resposta da API. Status: %d, Corpo: %s", statusCode, string(body))
}

// handleExpiredToken trata um token expirado detectado via estrutura de erro
func (tm *TokenManager) handleExpiredToken(errorResp *adsdomain.ErrorResponse) ([]byte, error) {
	logrus.Warnf("Token expirado detectado pela API Google Ads. Código: %d, Status: %s",
		errorResp.Error.Code, errorResp.Error.Status)

	// Tenta renovar o token
	if refreshErr := tm.RefreshToken(); refreshErr != nil {
		if strings.Contains(refreshErr.Error(), "necessário reautorizar") {
			return nil, fmt.Errorf("token expirou permanentemente e requer reautorização manual: %w", refreshErr)
		}
		return nil, fmt.Errorf("erro ao renovar token expirado: %w", refreshErr)
	}

	return nil, fmt.Errorf("token expirado e renovado, por favor tente novamente")
}

// handleExpiredTokenByMessage trata um token expirado detectado via mensagem de texto
func (tm *TokenManager) handleExpiredTokenByMessage(bodyStr string) ([]byte, error) {
	logrus.Warnf("Token expirado detectado pela mensagem de erro: %s", bodyStr)

	// Tenta renovar o token
	if refreshErr := tm.RefreshToken(); refreshErr != nil {
		if strings.Contains(refreshErr.Error(), "necessário reautorizar") {
			return nil, fmt.Errorf("token expirou permanentemente e requer reautorização manual: %w", refreshErr)
		}
		return nil, fmt.Errorf("erro ao renovar token expirado: %w", refreshErr)
	}

	return nil, fmt.Errorf("token expirado e renovado, por favor tente novamente")
}

// containsAuthExpirationMessage verifica se a mensagem contém indicação de token expirado
func containsAuthExpirationMessage(message string) bool {
	return strings.Contains(message, "Request had invalid authentication credentials") ||
		strings.Contains(message, "UNAUTHENTICATED") ||
		strings.Contains(message, "The access token has expired")
}
