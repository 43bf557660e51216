package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	googleadsmocks "github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/mocks"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (AccountService, *mocks.MockAccountRepository, *googleadsmocks.MockAdsIntegrator) {
	ctrl := gomock.NewController(t)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	adsService := googleadsmocks.NewMockAdsIntegrator(ctrl)

	return NewService(accountRepo, adsService, &config.Config{}), accountRepo, adsService
}

func TestListAccounts_TransformaParaResposta(t *testing.T) {
	service, accountRepo, _ := newTestService(t)

	nickname := "Curitiba 01"
	statuses := []domain.AccountStatus{domain.AccountStatusActive}

	accountRepo.EXPECT().ListAccounts(statuses).Return([]*domain.Account{
		{
			ID:         "abc123",
			CustomerID: "4018223765",
			Name:       "Loja Centro Curitiba",
			Nickname:   &nickname,
			Status:     domain.AccountStatusActive,
		},
	}, nil)

	accounts, err := service.ListAccounts(statuses)
	require.NoError(t, err)

	require.Len(t, accounts, 1)
	assert.Equal(t, "abc123", accounts[0].ID)
	assert.Equal(t, "4018223765", accounts[0].CustomerID)
	assert.Equal(t, domain.AccountStatusActive, accounts[0].Status)
}

func TestListAccounts_ErroDeBanco(t *testing.T) {
	service, accountRepo, _ := newTestService(t)

	accountRepo.EXPECT().ListAccounts(gomock.Any()).Return(nil, errors.New("conexão recusada"))

	_, err := service.ListAccounts(nil)

	assert.ErrorIs(t, err, ErrFetchAccounts)
}

func TestSyncAccounts_CadastraApenasContasNovas(t *testing.T) {
	service, accountRepo, adsService := newTestService(t)
	ctx := context.Background()

	nickname := "Loja Centro Recife"
	discovered := []*domain.Account{
		{CustomerID: "4018223765", Name: "Loja Centro Curitiba", ManagerID: "9125048377", ManagerName: "MCC Performance Digital", Status: domain.AccountStatusActive},
		{CustomerID: "1765083924", Name: "Loja Centro Recife", Nickname: &nickname, ManagerID: "5541207893", ManagerName: "MCC Franquias Nordeste", Status: domain.AccountStatusActive},
	}

	adsService.EXPECT().GetAccounts(ctx).Return(discovered, nil)

	// A primeira conta já existe localmente
	accountRepo.EXPECT().ListAccountsMap().Return(map[string]struct{}{
		"4018223765": {},
	}, nil)

	accountRepo.EXPECT().
		SaveOrUpdateManagerAccounts(gomock.Any()).
		DoAndReturn(func(managers []*domain.ManagerAccount) (map[string]string, error) {
			require.Len(t, managers, 1)
			assert.Equal(t, "5541207893", managers[0].ExternalID)
			return map[string]string{"5541207893": "mgr001"}, nil
		})

	accountRepo.EXPECT().
		SaveOrUpdate(gomock.Any(), map[string]string{"5541207893": "mgr001"}).
		DoAndReturn(func(accounts []*domain.Account, _ map[string]string) error {
			require.Len(t, accounts, 1)
			assert.Equal(t, "1765083924", accounts[0].CustomerID)
			assert.NotEmpty(t, accounts[0].ID)
			return nil
		})

	response, err := service.SyncAccounts(ctx)
	require.NoError(t, err)

	assert.False(t, response.Error)
	assert.Equal(t, 1, response.Quantity)
}

func TestSyncAccounts_FalhaDaAPIExterna(t *testing.T) {
	service, _, adsService := newTestService(t)
	ctx := context.Background()

	adsService.EXPECT().GetAccounts(ctx).Return(nil, errors.New("quota excedida"))

	response, err := service.SyncAccounts(ctx)

	assert.ErrorIs(t, err, ErrAdsIntegration)
	require.NotNil(t, response)
	assert.True(t, response.Error)
}

func TestUpdateAccount_ContaInexistente(t *testing.T) {
	service, accountRepo, _ := newTestService(t)

	accountRepo.EXPECT().GetAccountByID("zzz999").Return(nil, nil)

	_, err := service.UpdateAccount(&domain.UpdateAccountRequest{ID: "zzz999"})

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUpdateAccount_AtualizaApelidoEStatus(t *testing.T) {
	service, accountRepo, _ := newTestService(t)

	nickname := "Curitiba Matriz"
	status := "INACTIVE"
	request := &domain.UpdateAccountRequest{ID: "abc123", Nickname: &nickname, Status: &status}

	accountRepo.EXPECT().GetAccountByID("abc123").Return(&domain.Account{ID: "abc123"}, nil)
	accountRepo.EXPECT().UpdateAccount(request).Return(nil)

	response, err := service.UpdateAccount(request)
	require.NoError(t, err)

	assert.Equal(t, "abc123", response.ID)
	assert.Equal(t, &nickname, response.Nickname)
}

func TestUpdateAccount_IDObrigatorio(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.UpdateAccount(&domain.UpdateAccountRequest{})

	assert.ErrorIs(t, err, ErrAccountIDRequired)
}
