package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// pingTimeout is the default bound on one connectivity check.
const pingTimeout = 5 * time.Second

// ConfigValidator builds a throwaway embedding service from settings and
// pings it. Used by `settings validate` before anything is saved or indexed.
type ConfigValidator struct {
	timeout time.Duration
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout bounds each ping. Non-positive values are ignored.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	if d > 0 {
		v.timeout = d
	}
	return v
}

func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc, settings.Provider, v.timeout)
}

func ping(ctx context.Context, svc driven.EmbeddingService, provider domain.EmbeddingProvider, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s service unreachable (%w). Run 'alexandria settings' to check the configuration",
			domain.ErrEmbeddingUnavailable, provider, err)
	}
	return nil
}
