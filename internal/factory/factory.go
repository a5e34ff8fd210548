// Package factory constructs drivers and providers from configuration.
package factory

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/keepsakelabs/keepsake-memory/internal/collab"
	ollamacollab "github.com/keepsakelabs/keepsake-memory/internal/collab/ollama"
	openaicollab "github.com/keepsakelabs/keepsake-memory/internal/collab/openai"
	"github.com/keepsakelabs/keepsake-memory/internal/config"
	"github.com/keepsakelabs/keepsake-memory/internal/store"
	"github.com/keepsakelabs/keepsake-memory/internal/store/memstore"
	"github.com/keepsakelabs/keepsake-memory/internal/store/sqlite"
)

// NewStore selects the store driver from config.
func NewStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		log.Info().Msg("using in-process store; state is lost on restart")
		return memstore.New(), nil
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("using sqlite store")
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// NewCollaborator selects the generation collaborator provider from config.
func NewCollaborator(cfg *config.Config, log zerolog.Logger) (collab.Collaborator, error) {
	timeout := time.Duration(cfg.CollabTimeoutSeconds) * time.Second
	switch cfg.CollabProvider {
	case "ollama":
		log.Info().Str("url", cfg.OllamaURL).Str("embed_model", cfg.EmbedModel).
			Str("generate_model", cfg.GenerateModel).Msg("using ollama collaborator")
		return ollamacollab.New(cfg.OllamaURL, cfg.EmbedModel, cfg.GenerateModel, timeout), nil
	case "openai":
		log.Info().Str("embed_model", cfg.EmbedModel).Str("generate_model", cfg.GenerateModel).
			Msg("using openai collaborator")
		return openaicollab.New(cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.GenerateModel), nil
	default:
		return nil, fmt.Errorf("unsupported COLLAB_PROVIDER: %s", cfg.CollabProvider)
	}
}
