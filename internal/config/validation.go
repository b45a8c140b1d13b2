package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Duration strings such as "10s" or "1m30s".
	validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
}

// Validate checks cfg for structural problems. It expects defaults to
// have been applied already.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return fmt.Errorf("config: validation failed: %w", err)
	}

	info, err := os.Stat(cfg.Files.BaseDir)
	if err != nil {
		return fmt.Errorf("config: base_dir %s: %w", cfg.Files.BaseDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("config: base_dir %s is not a directory", cfg.Files.BaseDir)
	}
	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "duration":
		return fmt.Sprintf("%s is not a valid duration", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a host:port address", field)
	case "ip|hostname":
		return fmt.Sprintf("%s must be an IP address or hostname", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
