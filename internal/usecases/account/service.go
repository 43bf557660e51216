package account

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-sync-api/pkg/utils"
)

type AccountService interface {
	UpdateAccount(request *domain.UpdateAccountRequest) (*domain.UpdateAccountResponse, error)
	ListAccounts(availableStatus []domain.AccountStatus) ([]*domain.AccountResponse, error)
	SyncAccounts(ctx context.Context) (*domain.SyncAccountsResponse, error)
}

type Service struct {
	accountRepository repository.AccountRepository
	adsService        googleads.AdsIntegrator
	cfg               *config.Config
}

func NewService(
	accountRepository repository.AccountRepository,
	adsService googleads.AdsIntegrator,
	cfg *config.Config,
) AccountService {
	return &Service{
		accountRepository: accountRepository,
		adsService:        adsService,
		cfg:               cfg,
	}
}

func (s *Service) ListAccounts(availableStatus []domain.AccountStatus) ([]*domain.AccountResponse, error) {
	accounts, err := s.accountRepository.ListAccounts(availableStatus)
	if err != nil {
		return nil, NewAccountError(ErrFetchAccounts, apiErrors.ErrDatabaseOperation, "Falha ao listar contas no banco de dados")
	}

	// Transforma os accounts para o formato de resposta da API
	accountsResponse := make([]*domain.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		accountsResponse = append(accountsResponse, &domain.AccountResponse{
			ID:         account.ID,
			CustomerID: account.CustomerID,
			Name:       account.Name,
			Nickname:   account.Nickname,
			Status:     account.Status,
		})
	}

	return accountsResponse, nil
}

// SyncAccounts descobre as contas acessíveis na API de anúncios e cadastra as
// que ainda não existem localmente. Contas já cadastradas são mantidas.
func (s *Service) SyncAccounts(ctx context.Context) (*domain.SyncAccountsResponse, error) {
	response := &domain.SyncAccountsResponse{
		Quantity: 0,
		Message:  "Erro ao sincronizar contas",
		Error:    true,
	}

	accounts, err := s.adsService.GetAccounts(ctx)
	if err != nil {
		logrus.Error("Error getting ad accounts from integrator:", err)
		return response, NewAccountError(ErrAdsIntegration, apiErrors.ErrExternalService, "Falha ao obter contas da API de anúncios")
	}

	existingAccounts, err := s.accountRepository.ListAccountsMap()
	if err != nil {
		logrus.WithField("error", err).Error("Error getting ad accounts from database")
		return response, NewAccountError(ErrFetchAccounts, apiErrors.ErrDatabaseOperation, "Falha ao consultar contas existentes no banco de dados")
	}

	managers := make([]*domain.ManagerAccount, 0)
	accountsToCreate := make([]*domain.Account, 0)

	for _, acc := range accounts {
		if _, exists := existingAccounts[acc.CustomerID]; exists {
			continue
		}

		accountID, err := utils.GenerateID()
		if err != nil {
			return response, NewAccountError(ErrGenerateID, apiErrors.ErrInternalServer, "Falha ao gerar identificador único para conta")
		}

		acc.ID = accountID

		managerID, err := utils.GenerateID()
		if err != nil {
			return response, NewAccountError(ErrGenerateID, apiErrors.ErrInternalServer, "Falha ao gerar identificador único para conta gerenciadora")
		}

		accountsToCreate = append(accountsToCreate, acc)

		managers = append(managers, &domain.ManagerAccount{
			ID:         managerID,
			ExternalID: acc.ManagerID,
			Name:       acc.ManagerName,
		})
	}

	managerAccountIDs, err := s.accountRepository.SaveOrUpdateManagerAccounts(managers)
	if err != nil {
		return response, NewAccountError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao salvar contas gerenciadoras")
	}

	// Agora tenta salvar as contas com as gerenciadoras resolvidas
	if len(accountsToCreate) > 0 {
		err = s.accountRepository.SaveOrUpdate(accountsToCreate, managerAccountIDs)
		if err != nil {
			return response, NewAccountError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao salvar contas")
		}
	}

	quantity := len(accountsToCreate)

	logrus.Infof("%d accounts were successfully synced", quantity)

	response.Quantity = quantity
	response.Message = fmt.Sprintf("%d contas foram sincronizadas com sucesso", quantity)
	response.Error = false

	return response, nil
}

func (s *Service) UpdateAccount(request *domain.UpdateAccountRequest) (*domain.UpdateAccountResponse, error) {
	if request.ID == "" {
		return nil, ErrAccountIDRequired
	}

	// Busca a conta para verificar se existe
	account, err := s.accountRepository.GetAccountByID(request.ID)
	if err != nil {
		logrus.Error("Error getting account by id on the repository:", err)
		return nil, NewAccountError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao buscar conta no banco de dados")
	}

	if account == nil {
		return nil, NewAccountErrorWithID(ErrAccountNotFound, apiErrors.ErrInvalidRequest, request.ID, "Conta não encontrada")
	}

	// Atualiza a conta no repositório
	err = s.accountRepository.UpdateAccount(request)
	if err != nil {
		logrus.Error("Error updating account on the repository:", err)
		return nil, NewAccountErrorWithID(ErrUpdateAccount, apiErrors.ErrDatabaseOperation, request.ID, "Falha ao atualizar conta no banco de dados")
	}

	return &domain.UpdateAccountResponse{
		ID:       request.ID,
		Nickname: request.Nickname,
		Status:   request.Status,
	}, nil
}
