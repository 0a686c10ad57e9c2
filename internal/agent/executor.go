// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jolks/mcp-agent/internal/config"
	"github.com/jolks/mcp-agent/internal/logging"
	"github.com/jolks/mcp-agent/internal/model"
)

// Executor is the caller-facing surface of the agent: it answers queries and
// records each completed exchange.
type Executor struct {
	agent  *Agent
	cfg    *config.Config
	store  model.ExchangeStore
	logger *logging.Logger
}

// NewExecutor creates a new executor. store may be nil to disable history.
func NewExecutor(agent *Agent, cfg *config.Config, store model.ExchangeStore, logger *logging.Logger) *Executor {
	return &Executor{
		agent:  agent,
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// Answer runs one query to completion and returns the final text. It either
// returns a complete answer or an explicit error, never a truncated answer.
// The exchange is persisted best-effort either way.
func (e *Executor) Answer(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("empty query")
	}

	ex := &model.Exchange{
		Query:     query,
		Provider:  e.cfg.AI.Provider,
		Model:     e.cfg.AI.Model,
		StartTime: time.Now(),
	}

	answer, iterations, err := e.agent.Run(ctx, query)

	ex.EndTime = time.Now()
	ex.Duration = ex.EndTime.Sub(ex.StartTime).String()
	ex.Iterations = iterations

	if err != nil {
		ex.Error = err.Error()
	} else {
		ex.Answer = answer
	}

	model.PersistAndLogExchange(e.store, ex, e.logger)

	return answer, err
}
