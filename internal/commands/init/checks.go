package initcmd

import (
	"os"

	"github.com/colonyops/tally/internal/core/config"
)

// Status is the outcome of one check.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

// CheckItem is one line of a check result.
type CheckItem struct {
	Label  string
	Status Status
	Detail string
}

// Result groups the items of a check.
type Result struct {
	Name  string
	Items []CheckItem
}

// InitCheck validates the init wizard results.
type InitCheck struct {
	configPath string
	dataDir    string
}

// NewInitCheck creates a new init validation check.
func NewInitCheck(configPath, dataDir string) *InitCheck {
	return &InitCheck{configPath: configPath, dataDir: dataDir}
}

func (c *InitCheck) Name() string {
	return "Init Validation"
}

func (c *InitCheck) Run() Result {
	result := Result{Name: c.Name()}

	result.Items = append(result.Items, c.checkConfigFile())

	cfg, item := c.checkConfigLoads()
	result.Items = append(result.Items, item)
	if cfg == nil {
		return result
	}

	result.Items = append(result.Items, c.checkDataDir(cfg))
	for _, w := range cfg.Warnings() {
		result.Items = append(result.Items, CheckItem{Label: w.Category, Status: StatusWarn, Detail: w.Message})
	}

	return result
}

func (c *InitCheck) checkConfigFile() CheckItem {
	if _, err := os.Stat(c.configPath); err != nil {
		return CheckItem{
			Label:  "Config file",
			Status: StatusFail,
			Detail: c.configPath + " not found",
		}
	}
	return CheckItem{
		Label:  "Config file",
		Status: StatusPass,
		Detail: c.configPath,
	}
}

func (c *InitCheck) checkConfigLoads() (*config.Config, CheckItem) {
	cfg, err := config.Load(c.configPath, c.dataDir)
	if err != nil {
		return nil, CheckItem{Label: "Config valid", Status: StatusFail, Detail: err.Error()}
	}
	return cfg, CheckItem{Label: "Config valid", Status: StatusPass, Detail: "backend " + cfg.Backend.Kind}
}

func (c *InitCheck) checkDataDir(cfg *config.Config) CheckItem {
	if err := cfg.ValidateDeep(c.configPath); err != nil {
		return CheckItem{Label: "Data directory", Status: StatusFail, Detail: err.Error()}
	}
	if _, err := os.Stat(c.dataDir); os.IsNotExist(err) {
		return CheckItem{Label: "Data directory", Status: StatusWarn, Detail: c.dataDir + " will be created on first run"}
	}
	return CheckItem{Label: "Data directory", Status: StatusPass, Detail: c.dataDir}
}
