package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

const (
	accountsTable        = "accounts a"
	managerAccountsTable = "manager_accounts ma"
)

type AccountRepository interface {
	GetAccountByID(accountID string) (*domain.Account, error)
	GetAccountByCustomerID(customerID string) (*domain.Account, error)
	ListAccounts(availableStatus []domain.AccountStatus) ([]*domain.Account, error)
	ListAccountsMap() (map[string]struct{}, error)
	SaveOrUpdate(accounts []*domain.Account, managerIDs map[string]string) error
	SaveOrUpdateManagerAccounts(managers []*domain.ManagerAccount) (map[string]string, error)
	UpdateAccount(account *domain.UpdateAccountRequest) error
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (a *accountRepository) GetAccountByCustomerID(customerID string) (*domain.Account, error) {
	return a.GetAccount(squirrel.Eq{"a.customer_id": customerID})
}

func (a *accountRepository) GetAccountByID(accountID string) (*domain.Account, error) {
	return a.GetAccount(squirrel.Eq{"a.id": accountID})
}

func (a *accountRepository) GetAccount(whereClause map[string]interface{}) (*domain.Account, error) {
	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id, a.customer_id, a.name, a.nickname, a.status, a.manager_id").
		From(accountsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := a.conn.QueryRow(accountsSQL, accountsArgs...)

	acc, err := a.deserializeAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return acc, err
}

func (a *accountRepository) deserializeAccount(row *sql.Row) (*domain.Account, error) {
	acc := &domain.Account{}

	if err := row.Scan(
		&acc.ID,
		&acc.CustomerID,
		&acc.Name,
		&acc.Nickname,
		&acc.Status,
		&acc.ManagerID,
	); err != nil {
		return nil, err
	}

	return acc, nil
}

func (a *accountRepository) ListAccounts(availableStatus []domain.AccountStatus) ([]*domain.Account, error) {
	queryBuilder := squirrel.
		Select("a.id, a.customer_id, a.name, a.nickname, a.status, ma.id, ma.name").
		From(accountsTable).
		Join("manager_accounts ma ON a.manager_id = ma.id").
		OrderBy("a.nickname ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(availableStatus) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"a.status": availableStatus})
	}

	accountsSQL, accountsArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := a.conn.Query(accountsSQL, accountsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)

	for rows.Next() {
		acc, err := a.deserializeAccountWithManager(rows)
		if err != nil {
			return nil, err
		}

		if acc == nil {
			continue
		}

		accounts = append(accounts, acc)
	}

	if len(accounts) == 0 {
		return nil, nil
	}

	return accounts, err
}

func (r *accountRepository) SaveOrUpdate(accounts []*domain.Account, managerIDs map[string]string) error {
	if len(accounts) == 0 {
		return nil
	}

	// Cria a query de inserção ou atualização
	query := squirrel.StatementBuilder.
		Insert("accounts").
		Columns("id", "customer_id", "name", "nickname", "manager_id", "status").
		PlaceholderFormat(squirrel.Dollar)

	// Adiciona os valores de cada account ao batch
	for _, account := range accounts {
		// Obtém o ID interno da conta gerenciadora pelo ID externo (MCC)
		managerID, exists := managerIDs[account.ManagerID]
		if !exists {
			logrus.Warnf("Conta gerenciadora não encontrada para a chave: %s", account.ManagerID)
			continue
		}

		query = query.Values(
			account.ID,
			account.CustomerID,
			account.Name,
			account.Nickname,
			managerID,
			account.Status,
		)
	}

	// Define o comportamento em caso de conflito (atualiza os campos)
	query = query.Suffix(`
			ON CONFLICT (customer_id) DO UPDATE SET
				name = EXCLUDED.name,
				manager_id = EXCLUDED.manager_id,
				status = EXCLUDED.status,
				nickname = COALESCE(accounts.nickname, EXCLUDED.nickname)
		`)

	// Converte a query para SQL
	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	// Executa a query
	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (r *accountRepository) SaveOrUpdateManagerAccounts(managers []*domain.ManagerAccount) (map[string]string, error) {
	// Inicializa o mapa para armazenar os IDs das contas gerenciadoras
	managerAccountIDs := make(map[string]string, 0)

	// Primeiro, recupera as contas gerenciadoras existentes
	err := r.getExistingManagerAccounts(managerAccountIDs)
	if err != nil {
		return nil, fmt.Errorf("erro ao recuperar contas gerenciadoras existentes: %w", err)
	}

	// Adiciona os valores de cada conta gerenciadora ao batch
	for _, manager := range managers {
		// Verifica se a conta gerenciadora já existe no mapa
		if _, exists := managerAccountIDs[manager.ExternalID]; exists {
			logrus.Infof("Conta gerenciadora já existe: %s", manager.ExternalID)
			continue
		}

		// Cria a query de inserção ou atualização
		query := squirrel.StatementBuilder.
			Insert("manager_accounts").
			Columns("id", "external_id", "name").
			PlaceholderFormat(squirrel.Dollar)

		query = query.Values(
			manager.ID,
			manager.ExternalID,
			manager.Name,
		)

		// Define o comportamento em caso de conflito (atualiza os campos)
		query = query.Suffix(`
			ON CONFLICT (external_id) DO UPDATE SET
				name = EXCLUDED.name RETURNING id
		`)

		// Converte a query para SQL
		sqlQuery, args, err := query.ToSql()
		if err != nil {
			return managerAccountIDs, fmt.Errorf("failed to build query: %w", err)
		}

		// Executa a query
		var ID string
		err = r.conn.QueryRow(sqlQuery, args...).Scan(&ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return managerAccountIDs, fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
			}
			return managerAccountIDs, fmt.Errorf("failed to execute query: %w", err)
		}

		managerAccountIDs[manager.ExternalID] = ID
	}

	return managerAccountIDs, nil
}

func (a *accountRepository) deserializeAccountWithManager(row *sql.Rows) (*domain.Account, error) {
	acc := domain.Account{}

	if err := row.Scan(
		&acc.ID,
		&acc.CustomerID,
		&acc.Name,
		&acc.Nickname,
		&acc.Status,
		&acc.ManagerID,
		&acc.ManagerName,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &acc, nil
}

func (a *accountRepository) UpdateAccount(account *domain.UpdateAccountRequest) error {
	if account.ID == "" {
		return errors.New("ID is required")
	}

	// Constrói a query de atualização
	queryBuilder := squirrel.
		Update("accounts").
		Where(squirrel.Eq{"id": account.ID}).
		PlaceholderFormat(squirrel.Dollar)

	// Adiciona os campos que foram fornecidos para atualização
	if account.Nickname != nil {
		queryBuilder = queryBuilder.Set("nickname", *account.Nickname)
	}

	if account.Status != nil {
		queryBuilder = queryBuilder.Set("status", *account.Status)
	}

	// Converte a query para SQL
	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	// Executa a query
	result, err := a.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	// Verifica se algum registro foi afetado
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.New("account not found")
	}

	return nil
}

func (a *accountRepository) ListAccountsMap() (map[string]struct{}, error) {
	// Query simplificada para buscar apenas os campos essenciais
	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id, a.customer_id").
		From(accountsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := a.conn.Query(accountsSQL, accountsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return make(map[string]struct{}, 0), nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	// Inicializa o mapa para armazenar as contas
	accountsMap := make(map[string]struct{})

	// Itera sobre os resultados
	for rows.Next() {
		account := &domain.Account{}
		err := rows.Scan(
			&account.ID,
			&account.CustomerID,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao deserializar a conta: %w", err)
		}

		// Adiciona a conta ao mapa usando o customer_id como chave
		accountsMap[account.CustomerID] = struct{}{}
	}

	// Verifica se houve erros durante a iteração
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return accountsMap, nil
}

// getExistingManagerAccounts recupera as contas gerenciadoras existentes no
// banco de dados e adiciona os IDs no mapa passado como parâmetro
// (externalID -> id)
func (r *accountRepository) getExistingManagerAccounts(managerIDs map[string]string) error {
	if managerIDs == nil {
		return errors.New("o mapa de contas gerenciadoras não pode ser nulo")
	}

	// Constrói a consulta SQL para buscar todas as contas gerenciadoras
	query, args, err := squirrel.
		Select("id, external_id").
		From("manager_accounts").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	// Executa a consulta
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil // Não há contas gerenciadoras, retorna sem erro
		}
		return fmt.Errorf("erro ao consultar contas gerenciadoras: %w", err)
	}
	defer rows.Close()

	// Processa cada linha do resultado
	for rows.Next() {
		var id, externalID string
		if err := rows.Scan(&id, &externalID); err != nil {
			return fmt.Errorf("erro ao ler conta gerenciadora: %w", err)
		}

		managerIDs[externalID] = id
	}

	// Verifica erros de iteração
	if err = rows.Err(); err != nil {
		return fmt.Errorf("erro durante iteração dos resultados: %w", err)
	}

	return nil
}
