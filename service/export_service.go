package service

import (
	"log"

	"weathertrack.app/config"
	"weathertrack.app/models"
)

// ExportService fetches the enriched dataset the export renderer serializes.
// Filters follow the same overlap semantics as the list operation.
type ExportService struct {
	requestRepo WeatherRequestRepositoryInterface
	exportCfg   *config.ExportConfig
}

// NewExportService creates a new export data service
func NewExportService(requestRepo WeatherRequestRepositoryInterface, exportCfg *config.ExportConfig) *ExportService {
	return &ExportService{
		requestRepo: requestRepo,
		exportCfg:   exportCfg,
	}
}

// GetExportData returns enriched requests with snapshots attached, newest
// request first, snapshots ascending within each request
func (s *ExportService) GetExportData(filters models.ListFilters) ([]models.EnrichedRequest, error) {
	log.Printf("[DEBUG] ExportService.GetExportData: %+v\n", filters)

	if filters.Limit <= 0 {
		filters.Limit = s.exportCfg.DefaultLimit
	}
	if filters.Limit > s.exportCfg.MaxLimit {
		filters.Limit = s.exportCfg.MaxLimit
	}
	filters.Offset = 0

	return s.requestRepo.ListWithSnapshots(filters)
}
