package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tally/internal/core/entity"
	"github.com/colonyops/tally/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}

	return criterio.ValidateStruct(
		c.validateBackend(),
		c.validateDatabase(),
		c.validateRoles(),
		c.validateEntities(),
		c.validateTUI(),
		c.validateNotifications(),
	)
}

// ValidateDeep performs comprehensive validation of the configuration
// including file accessibility. The configPath argument specifies the config
// file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	for _, role := range sortedKeys(c.Roles) {
		if len(c.Roles[role]) == 0 {
			warnings = append(warnings, ValidationWarning{
				Category: "Roles",
				Item:     role,
				Message:  "role has no grants and cannot see any entity",
			})
		}
	}

	hidden := 0
	for _, e := range c.Entities {
		if e.Hidden {
			hidden++
		}
	}
	if hidden > 0 && hidden == len(entity.All()) {
		warnings = append(warnings, ValidationWarning{
			Category: "Entities",
			Message:  "every entity is hidden; the console will be empty",
		})
	}

	if c.Backend.Kind == BackendDynamoDB && c.Backend.DynamoDB.Region == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Backend",
			Item:     "dynamodb.region",
			Message:  "no region set; falling back to the AWS shared config",
		})
	}

	return warnings
}

func (c *Config) validateBackend() error {
	errs := []error{
		criterio.Run("backend.kind", c.Backend.Kind, oneOf(BackendSQLite, BackendDynamoDB)),
	}
	if c.Backend.Kind == BackendDynamoDB {
		errs = append(errs, criterio.Run("backend.dynamodb.table", c.Backend.DynamoDB.Table, notBlank))
	}
	return criterio.ValidateStruct(errs...)
}

func (c *Config) validateDatabase() error {
	var errs criterio.FieldErrorsBuilder
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", errors.New("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must be between 0 and max_open_conns (%d)", c.Database.MaxOpenConns))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", errors.New("must not be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateRoles() error {
	var errs criterio.FieldErrorsBuilder
	for _, role := range sortedKeys(c.Roles) {
		for i, g := range c.Roles[role] {
			field := fmt.Sprintf("roles[%q][%d].entities", role, i)
			if len(g.Entities) == 0 {
				errs = errs.Append(field, errors.New("at least one entity pattern is required"))
			}
		}
	}
	if err := c.Policy().Validate(); err != nil {
		errs = errs.Append("roles", err)
	}
	return errs.ToError()
}

func (c *Config) validateEntities() error {
	var errs criterio.FieldErrorsBuilder
	for _, kind := range sortedKeys(c.Entities) {
		if _, ok := entity.Lookup(kind); !ok {
			errs = errs.Append(fmt.Sprintf("entities[%q]", kind), fmt.Errorf("unknown entity (known: %v)", entity.Kinds()))
		}
	}
	return errs.ToError()
}

func (c *Config) validateTUI() error {
	var errs criterio.FieldErrorsBuilder
	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		errs = errs.Append("tui.theme", fmt.Errorf("unknown theme %q (available: %v)", c.TUI.Theme, styles.ThemeNames()))
	}
	if c.TUI.RequestTimeout <= 0 {
		errs = errs.Append("tui.request_timeout", errors.New("must be positive"))
	}
	if c.TUI.ToastDuration <= 0 {
		errs = errs.Append("tui.toast_duration", errors.New("must be positive"))
	}
	return errs.ToError()
}

func (c *Config) validateNotifications() error {
	if c.Notifications.Retention < time.Hour {
		return criterio.NewFieldErrors("notifications.retention", errors.New("must be at least 1h"))
	}
	return nil
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return errors.New("exists but is not a directory")
	}
	return nil
}

func notBlank(s string) error {
	if s == "" {
		return errors.New("is required")
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(s string) error {
		if !slices.Contains(allowed, s) {
			return fmt.Errorf("must be one of %v, got %q", allowed, s)
		}
		return nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
