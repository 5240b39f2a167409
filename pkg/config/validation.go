package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cortexfs/ndfs/pkg/ndfs"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for rules that
// cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The umask must parse as an octal permission up front, not at
	// connect time.
	if _, err := ndfs.ParsePermission(cfg.Client.Umask); err != nil {
		return fmt.Errorf("client.umask: %w", err)
	}

	// An explicit name node address must be a valid "host[:port]".
	if cfg.Client.NameNodeAddress != "" {
		if _, _, err := ndfs.ParseRPCAddr(cfg.Client.NameNodeAddress, ndfs.DefaultPort); err != nil {
			return fmt.Errorf("client.namenode_address: %w", err)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
