// SPDX-License-Identifier: AGPL-3.0-only
package model

import (
	"encoding/json"
	"time"

	"github.com/jolks/mcp-agent/internal/logging"
)

// Exchange records one completed query/answer round trip
type Exchange struct {
	Query      string    `json:"query"`
	Answer     string    `json:"answer,omitempty"`
	Error      string    `json:"error,omitempty"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Iterations int       `json:"iterations"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Duration   string    `json:"duration"`
}

// ExchangeStore persists completed exchanges
type ExchangeStore interface {
	SaveExchange(ex *Exchange) error
	GetExchanges(limit int) ([]*Exchange, error)
	Close() error
}

// PersistAndLogExchange saves an exchange to the store (best-effort) and debug-logs it.
func PersistAndLogExchange(store ExchangeStore, ex *Exchange, logger *logging.Logger) {
	if store != nil {
		if err := store.SaveExchange(ex); err != nil {
			logger.Warnf("Failed to persist exchange: %v", err)
		}
	}

	jsonData, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		logger.Warnf("Failed to marshal exchange: %v", err)
	} else {
		logger.Debugf("Exchange: %s", string(jsonData))
	}
}
