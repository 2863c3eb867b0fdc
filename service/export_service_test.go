package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"weathertrack.app/config"
	"weathertrack.app/models"
)

func TestExportService_GetExportData(t *testing.T) {
	cfg := &config.ExportConfig{DefaultLimit: 500, MaxLimit: 1000}

	t.Run("DefaultLimitApplied", func(t *testing.T) {
		repo := new(MockWeatherRequestRepository)
		svc := NewExportService(repo, cfg)

		repo.On("ListWithSnapshots", models.ListFilters{Limit: 500}).
			Return([]models.EnrichedRequest{}, nil)

		rows, err := svc.GetExportData(models.ListFilters{})
		assert.NoError(t, err)
		assert.Empty(t, rows)
		repo.AssertExpectations(t)
	})

	t.Run("RequestedLimitKept", func(t *testing.T) {
		repo := new(MockWeatherRequestRepository)
		svc := NewExportService(repo, cfg)

		repo.On("ListWithSnapshots", models.ListFilters{Limit: 25}).
			Return([]models.EnrichedRequest{}, nil)

		_, err := svc.GetExportData(models.ListFilters{Limit: 25})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("LimitCappedAtMax", func(t *testing.T) {
		repo := new(MockWeatherRequestRepository)
		svc := NewExportService(repo, cfg)

		repo.On("ListWithSnapshots", models.ListFilters{Limit: 1000}).
			Return([]models.EnrichedRequest{}, nil)

		_, err := svc.GetExportData(models.ListFilters{Limit: 50000})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("OffsetAlwaysZero", func(t *testing.T) {
		repo := new(MockWeatherRequestRepository)
		svc := NewExportService(repo, cfg)

		repo.On("ListWithSnapshots", models.ListFilters{LocationName: "paris", Limit: 500}).
			Return([]models.EnrichedRequest{}, nil)

		_, err := svc.GetExportData(models.ListFilters{LocationName: "paris", Offset: 40})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
