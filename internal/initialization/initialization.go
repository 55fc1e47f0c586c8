package initialization

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"mcpchat/internal"
	"mcpchat/internal/config"
	"mcpchat/internal/logger"
)

// Initialize loads .env, the environment and the config file, and starts the
// file logs. The returned config has already been validated.
func Initialize() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Debugf("No .env file found, using the process environment")
	}

	env, err := config.ReadEnvironment()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(env.DataDir); err != nil {
		return nil, err
	}

	logger.Infof("Loading configuration from %s", env.ConfigPath)
	cfg, err := config.LoadConfig(env.ConfigPath)
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	initializeTranscripts(cfg)

	return cfg, nil
}

func initializeTranscripts(cfg *config.Config) {
	if !cfg.UI.TranscriptLog {
		logger.Debugf("Transcript logging disabled")
		return
	}
	logger.SetTranscriptDir(internal.DEFAULT_LOGS_DIR)
	logger.Infof("Transcripts are written to %s", internal.DEFAULT_LOGS_DIR)
}
