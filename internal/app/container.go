// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"

	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/infra/apiclient"
	"github.com/runoshun/tasker/internal/infra/config"
	"github.com/runoshun/tasker/internal/infra/jsonstore"
	"github.com/runoshun/tasker/internal/infra/logging"
	"github.com/runoshun/tasker/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	ConfigDir      string // Global config directory (e.g. ~/.config/tasker)
	StateDir       string // State directory (e.g. ~/.local/state/tasker)
	CredentialPath string // Persisted credential file
	LogPath        string // Log file
}

// newConfig resolves the paths under the given directories.
func newConfig(configDir, stateDir string) Config {
	return Config{
		ConfigDir:      configDir,
		StateDir:       stateDir,
		CredentialPath: domain.CredentialPath(stateDir),
		LogPath:        domain.LogPath(stateDir),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	AuthAPI       domain.AuthAPI
	TaskAPI       domain.TaskAPI
	Credentials   domain.CredentialStore
	Clock         domain.Clock
	Logger        domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	AppConfig *domain.Config
	Session   *usecase.SessionStore
	closeLog  func() error

	// Configuration
	Config Config
}

// New creates a new Container using the XDG config and state directories.
func New() (*Container, error) {
	return NewWithDirs(config.DefaultGlobalConfigDir(), config.DefaultStateDir())
}

// NewWithDirs creates a new Container rooted at the given directories.
func NewWithDirs(configDir, stateDir string) (*Container, error) {
	if stateDir == "" {
		return nil, errors.New("cannot resolve state directory (set XDG_STATE_HOME or HOME)")
	}
	cfg := newConfig(configDir, stateDir)

	configLoader := config.NewLoaderWithGlobalDir(configDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(stateDir, logging.ParseLevel(appConfig.Log.Level))

	baseURL := appConfig.Server.APIBaseURL()
	timeout := appConfig.Server.Timeout

	// Auth endpoints are called without a bearer credential.
	authAPI := apiclient.NewAuthClient(apiclient.New(baseURL, timeout, nil, logger))
	credentials := jsonstore.New(cfg.CredentialPath)
	clock := domain.RealClock{}
	session := usecase.NewSessionStore(authAPI, credentials, clock, logger)

	// Task endpoints read the credential from the session on every call.
	taskAPI := apiclient.NewTaskClient(apiclient.New(baseURL, timeout, session, logger))

	return &Container{
		AuthAPI:       authAPI,
		TaskAPI:       taskAPI,
		Credentials:   credentials,
		Clock:         clock,
		Logger:        logger,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManagerWithGlobalDir(configDir),
		AppConfig:     appConfig,
		Session:       session,
		closeLog:      logger.Close,
		Config:        cfg,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, auth domain.AuthAPI, tasks domain.TaskAPI, creds domain.CredentialStore, clock domain.Clock, logger domain.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Container{
		AuthAPI:     auth,
		TaskAPI:     tasks,
		Credentials: creds,
		Clock:       clock,
		Logger:      logger,
		AppConfig:   appConfig,
		Session:     usecase.NewSessionStore(auth, creds, clock, logger),
		Config:      cfg,
	}
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.closeLog == nil {
		return nil
	}
	return c.closeLog()
}

// UseCase factory methods

// TaskSync returns a new TaskSync bound to the container's session.
// confirmer gates removals; nil approves every removal.
func (c *Container) TaskSync(confirmer domain.Confirmer) *usecase.TaskSync {
	return usecase.NewTaskSync(c.Session, c.TaskAPI, confirmer, c.Logger)
}

// ImportTasksUseCase returns a new ImportTasks use case on top of sync.
func (c *Container) ImportTasksUseCase(sync *usecase.TaskSync) *usecase.ImportTasks {
	return usecase.NewImportTasks(sync)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
