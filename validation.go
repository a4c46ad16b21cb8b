package logging

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func validateConfig(cfg *Config) error {
	const op = "logging.validateConfig"
	if cfg == nil {
		return fmt.Errorf("%s: %s", op, errMsgNilConfig)
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%s: %s: %w", op, errMsgConfigInvalid, err)
	}

	if cfg.FileLogging && filepath.IsAbs(cfg.RelLogFileDir) {
		return fmt.Errorf("%s: RelLogFileDir must be relative, got %q", op, cfg.RelLogFileDir)
	}

	if _, err := compilePatterns(cfg.IgnorePatterns); err != nil {
		return fmt.Errorf("%s: invalid ignore pattern: %w", op, err)
	}

	return nil
}
