package usecase

import (
	"context"

	"github.com/runoshun/tasker/internal/domain"
)

// ShowConfigInput contains the input for the ShowConfig use case.
type ShowConfigInput struct{}

// ShowConfigOutput contains the output of the ShowConfig use case.
type ShowConfigOutput struct {
	Effective      *domain.Config    // Merged configuration actually in use
	GlobalConfig   domain.ConfigInfo // Global config file info
	OverrideConfig domain.ConfigInfo // Override config file info
}

// ShowConfig displays configuration file information.
type ShowConfig struct {
	configManager domain.ConfigManager
	configLoader  domain.ConfigLoader
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(configManager domain.ConfigManager, configLoader domain.ConfigLoader) *ShowConfig {
	return &ShowConfig{
		configManager: configManager,
		configLoader:  configLoader,
	}
}

// Execute retrieves configuration file information and the effective config.
func (uc *ShowConfig) Execute(_ context.Context, _ ShowConfigInput) (*ShowConfigOutput, error) {
	cfg, err := uc.configLoader.Load()
	if err != nil {
		return nil, err
	}
	return &ShowConfigOutput{
		GlobalConfig:   uc.configManager.GetGlobalConfigInfo(),
		OverrideConfig: uc.configManager.GetOverrideConfigInfo(),
		Effective:      cfg,
	}, nil
}
