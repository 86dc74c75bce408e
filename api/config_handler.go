package api

import (
	"net/http"

	"github.com/utilitycover/debitnote/internal/config"
	"github.com/utilitycover/debitnote/pkg/models"
	"github.com/utilitycover/debitnote/pkg/utils"
)

// ConfigResponse is the data returned by GET /api/v1/config: the running
// settings the form needs, and nothing an operator would consider private.
type ConfigResponse struct {
	PDFEndpoint    string                 `json:"pdf_endpoint"`
	PDFTimeout     string                 `json:"pdf_timeout"`
	SessionTTL     string                 `json:"session_ttl"`
	DefaultRate    float64                `json:"default_rate"`
	Timezone       string                 `json:"timezone"`
	Currency       string                 `json:"currency"`
	InsuranceTypes []models.InsuranceType `json:"insurance_types"`
	Fields         []string               `json:"fields"`
	NumericFields  []string               `json:"numeric_fields"`
}

// handleGetConfig returns the current (running) configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	numeric := make([]string, 0, len(models.NumericFields))
	for _, name := range models.AllFields {
		if models.IsNumericField(name) {
			numeric = append(numeric, name)
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			PDFEndpoint:    config.RedactURL(s.cfg.PDF.Endpoint),
			PDFTimeout:     s.cfg.PDF.Timeout.String(),
			SessionTTL:     s.cfg.Session.TTL.String(),
			DefaultRate:    s.cfg.Form.DefaultRate,
			Timezone:       s.loc.String(),
			Currency:       utils.CurrencyKES,
			InsuranceTypes: models.InsuranceTypes,
			Fields:         models.AllFields,
			NumericFields:  numeric,
		},
	})
}

// handleGetSettings reports where each key setting came from.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckSettings(s.cfg),
	})
}
