package googleads

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/adsclient"
	adsdomain "github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

type AdsIntegrator interface {
	SearchDailyMetrics(ctx context.Context, job *domain.RefreshJob) ([]*domain.DailyMetricRow, error)
	GetAccounts(ctx context.Context) ([]*domain.Account, error)
}

type GoogleAdsService struct {
	cfg    *config.Config
	Client adsclient.Client
}

func New(cfg *config.Config, client adsclient.Client) AdsIntegrator {
	return &GoogleAdsService{
		cfg:    cfg,
		Client: client,
	}
}

const metricsSelectFields = "segments.date, metrics.impressions, metrics.clicks, metrics.cost_micros, metrics.conversions, metrics.conversions_value"

// SearchDailyMetrics busca as métricas do período do job segmentadas por dia
// de calendário, uma linha por dia por entidade. Quando a busca falha no meio
// da paginação, as linhas já recebidas são devolvidas junto com o erro para o
// chamador decidir o que persistir.
func (s *GoogleAdsService) SearchDailyMetrics(ctx context.Context, job *domain.RefreshJob) ([]*domain.DailyMetricRow, error) {
	query, err := buildDailyMetricsQuery(job)
	if err != nil {
		return nil, err
	}

	results, searchErr := s.Client.Search(ctx, job.CustomerID, query)
	if searchErr != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id":  job.CustomerID,
			"entity_type":  job.EntityType,
			"partial_rows": len(results),
			"error":        searchErr.Error(),
		}).Error("metrics: failed to search daily metrics from API")
	}

	rows := make([]*domain.DailyMetricRow, 0, len(results))

	for i := range results {
		row := FactoryDailyMetricRow(job, &results[i])
		if row == nil {
			continue
		}

		rows = append(rows, row)
	}

	if searchErr != nil {
		return rows, searchErr
	}

	logrus.WithFields(logrus.Fields{
		"customer_id": job.CustomerID,
		"entity_type": job.EntityType,
		"rows":        len(rows),
	}).Debug("metrics: successfully retrieved daily metrics")

	return rows, nil
}

func buildDailyMetricsQuery(job *domain.RefreshJob) (string, error) {
	startDate := job.StartDate.Format(time.DateOnly)
	endDate := job.EndDate.Format(time.DateOnly)

	switch job.EntityType {
	case domain.EntityTypeCampaign:
		return fmt.Sprintf(
			"SELECT campaign.id, campaign.name, %s FROM campaign WHERE segments.date BETWEEN '%s' AND '%s'",
			metricsSelectFields, startDate, endDate,
		), nil
	case domain.EntityTypeAdGroup:
		return fmt.Sprintf(
			"SELECT ad_group.id, ad_group.name, campaign.id, %s FROM ad_group WHERE campaign.id = %s AND segments.date BETWEEN '%s' AND '%s'",
			metricsSelectFields, job.ParentEntityID, startDate, endDate,
		), nil
	case domain.EntityTypeKeyword:
		return fmt.Sprintf(
			"SELECT ad_group_criterion.criterion_id, ad_group.id, %s FROM keyword_view WHERE ad_group.id = %s AND segments.date BETWEEN '%s' AND '%s'",
			metricsSelectFields, job.ParentEntityID, startDate, endDate,
		), nil
	case domain.EntityTypeAd:
		return fmt.Sprintf(
			"SELECT ad_group_ad.ad.id, ad_group.id, %s FROM ad_group_ad WHERE ad_group.id = %s AND segments.date BETWEEN '%s' AND '%s'",
			metricsSelectFields, job.ParentEntityID, startDate, endDate,
		), nil
	}

	return "", fmt.Errorf("tipo de entidade não suportado: %s", job.EntityType)
}

// FactoryDailyMetricRow converte um resultado da API em uma linha diária de
// métricas. Retorna nil quando o resultado não tem os campos esperados.
func FactoryDailyMetricRow(job *domain.RefreshJob, result *adsdomain.SearchResult) *domain.DailyMetricRow {
	entityID, parentEntityID := extractEntityIDs(job.EntityType, result)
	if entityID == "" {
		logrus.WithFields(logrus.Fields{
			"customer_id": job.CustomerID,
			"entity_type": job.EntityType,
		}).Warn("metrics: result without entity identifier, skipping")
		return nil
	}

	if parentEntityID == "" {
		parentEntityID = job.ParentEntityID
	}

	date, err := time.Parse(time.DateOnly, result.Segments.Date)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"date_value": result.Segments.Date,
			"error":      err.Error(),
		}).Warn("metrics: error converting segment date")
		return nil
	}

	impressions, err := strconv.ParseInt(result.Metrics.Impressions, 10, 64)
	if err != nil && result.Metrics.Impressions != "" {
		logrus.WithFields(logrus.Fields{
			"impressions_value": result.Metrics.Impressions,
			"error":             err.Error(),
		}).Warn("metrics: error converting impressions to integer")
	}

	clicks, err := strconv.ParseInt(result.Metrics.Clicks, 10, 64)
	if err != nil && result.Metrics.Clicks != "" {
		logrus.WithFields(logrus.Fields{
			"clicks_value": result.Metrics.Clicks,
			"error":        err.Error(),
		}).Warn("metrics: error converting clicks to integer")
	}

	costMicros, err := strconv.ParseInt(result.Metrics.CostMicros, 10, 64)
	if err != nil && result.Metrics.CostMicros != "" {
		logrus.WithFields(logrus.Fields{
			"cost_micros_value": result.Metrics.CostMicros,
			"error":             err.Error(),
		}).Warn("metrics: error converting cost micros to integer")
	}

	return &domain.DailyMetricRow{
		Date:             domain.DayOf(date),
		CustomerID:       job.CustomerID,
		AccountID:        job.AccountID,
		EntityType:       job.EntityType,
		EntityID:         entityID,
		ParentEntityID:   parentEntityID,
		Impressions:      impressions,
		Clicks:           clicks,
		CostMicros:       costMicros,
		Conversions:      result.Metrics.Conversions,
		ConversionsValue: result.Metrics.ConversionsValue,
	}
}

func extractEntityIDs(entityType domain.EntityType, result *adsdomain.SearchResult) (string, string) {
	switch entityType {
	case domain.EntityTypeCampaign:
		if result.Campaign != nil {
			return result.Campaign.ID, ""
		}
	case domain.EntityTypeAdGroup:
		if result.AdGroup != nil {
			parentID := ""
			if result.Campaign != nil {
				parentID = result.Campaign.ID
			}
			return result.AdGroup.ID, parentID
		}
	case domain.EntityTypeKeyword:
		if result.AdGroupCriterion != nil {
			parentID := ""
			if result.AdGroup != nil {
				parentID = result.AdGroup.ID
			}
			return result.AdGroupCriterion.CriterionID, parentID
		}
	case domain.EntityTypeAd:
		if result.AdGroupAd != nil {
			parentID := ""
			if result.AdGroup != nil {
				parentID = result.AdGroup.ID
			}
			return result.AdGroupAd.Ad.ID, parentID
		}
	}

	return "", ""
}

// GetAccounts descobre as contas de anúncio acessíveis pelas credenciais,
// percorrendo as contas gerenciadoras (MCC) e seus filhos diretos
func (s *GoogleAdsService) GetAccounts(ctx context.Context) ([]*domain.Account, error) {
	resourceNames, err := s.Client.ListAccessibleCustomers(ctx)
	if err != nil {
		logrus.WithError(err).Error("accounts: failed to list accessible customers")
		return nil, err
	}

	allAccounts := make([]*domain.Account, 0)

	for _, resourceName := range resourceNames {
		managerID := strings.TrimPrefix(resourceName, "customers/")

		logrus.WithFields(logrus.Fields{
			"manager_id": managerID,
		}).Debug("accounts: fetching customer clients for manager")

		clients, err := s.Client.GetCustomerClients(ctx, managerID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"manager_id": managerID,
				"error":      err.Error(),
			}).Error("accounts: failed to get customer clients for manager")
			continue
		}

		managerName := managerID
		for _, client := range clients {
			if client.ID == managerID && client.DescriptiveName != "" {
				managerName = client.DescriptiveName
			}
		}

		for _, client := range clients {
			// Contas gerenciadoras não acumulam métricas próprias
			if client.Manager {
				continue
			}

			status := domain.AccountStatusInactive
			if client.Status == "ENABLED" {
				status = domain.AccountStatusActive
			}

			name := client.DescriptiveName

			allAccounts = append(allAccounts, &domain.Account{
				CustomerID:  client.ID,
				Name:        name,
				Nickname:    &name,
				ManagerID:   managerID,
				ManagerName: managerName,
				Status:      status,
			})
		}
	}

	logrus.WithField("total_accounts", len(allAccounts)).Info("accounts: successfully retrieved all ad accounts")

	return allAccounts, nil
}
