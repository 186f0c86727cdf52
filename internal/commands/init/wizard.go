package initcmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/printer"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	DataDir    string
	Yes        bool   // skip prompts, use defaults
	Force      bool   // overwrite existing config
	Backend    string // preselected backend ("" = prompt)
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	return &Wizard{opts: opts}
}

// Answers are the choices collected by the wizard.
type Answers struct {
	Backend  string
	Table    string
	Region   string
	Endpoint string
	Theme    string
}

// DefaultAnswers returns the answers used with --yes.
func DefaultAnswers() Answers {
	return Answers{
		Backend: config.BackendSQLite,
		Table:   "tally-records",
		Theme:   styles.DefaultTheme,
	}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	p := printer.Ctx(ctx)

	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			p.Infof("Init cancelled")
			return nil
		}
	}

	answers := DefaultAnswers()
	if w.opts.Backend != "" {
		answers.Backend = w.opts.Backend
	}
	if !w.opts.Yes {
		if err := w.promptUser(&answers); err != nil {
			return err
		}
	}

	if ConfigExists(w.opts.ConfigPath) {
		backupPath, err := BackupConfig(w.opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
		if backupPath != "" {
			p.Successf("Backed up config to: %s", backupPath)
		}
	}

	if err := WriteConfig(GenerateConfig(answers), w.opts.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	p.Successf("Created config: %s", w.opts.ConfigPath)

	p.Printf("")
	result := NewInitCheck(w.opts.ConfigPath, w.opts.DataDir).Run()

	p.Section(result.Name)
	for _, item := range result.Items {
		switch item.Status {
		case StatusPass:
			p.CheckItem(item.Label, item.Detail)
		case StatusWarn:
			p.WarnItem(item.Label, item.Detail)
		case StatusFail:
			p.FailItem(item.Label, item.Detail)
		}
	}

	w.printNextSteps(p, answers)
	return nil
}

func (w *Wizard) promptUser(a *Answers) error {
	themes := make([]huh.Option[string], 0, len(styles.ThemeNames()))
	for _, name := range styles.ThemeNames() {
		themes = append(themes, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where are records stored?").
				Options(
					huh.NewOption("SQLite file in the data directory", config.BackendSQLite),
					huh.NewOption("DynamoDB table", config.BackendDynamoDB),
				).
				Value(&a.Backend),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themes...).
				Value(&a.Theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("DynamoDB table").
				Value(&a.Table),
			huh.NewInput().
				Title("AWS region").
				Description("Leave empty to use the shared AWS config").
				Value(&a.Region),
			huh.NewInput().
				Title("Endpoint override").
				Description("For DynamoDB Local, e.g. http://localhost:8000").
				Value(&a.Endpoint),
		).WithHideFunc(func() bool { return a.Backend != config.BackendDynamoDB }),
	)

	return form.Run()
}

// GenerateConfig builds the config written by the wizard.
func GenerateConfig(a Answers) config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend.Kind = a.Backend
	if a.Backend == config.BackendDynamoDB {
		cfg.Backend.DynamoDB = config.DynamoDBConfig{
			Table:    a.Table,
			Region:   a.Region,
			Endpoint: a.Endpoint,
		}
	}
	if a.Theme != "" {
		cfg.TUI.Theme = a.Theme
	}
	return cfg
}

// WriteConfig writes cfg as YAML, creating parent directories.
func WriteConfig(cfg config.Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	header := "# tally configuration. Run 'tally config validate' after editing.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

func (w *Wizard) printNextSteps(p *printer.Printer, a Answers) {
	p.Printf("")
	p.Section("Next Steps")

	step := 1
	p.Printf("  %d. Edit roles in %s to grant access per entity", step, w.opts.ConfigPath)
	step++

	if a.Backend == config.BackendDynamoDB {
		p.Printf("  %d. Make sure AWS credentials can read and write %s", step, a.Table)
		step++
	}

	p.Printf("  %d. Run 'tally' to open the console", step)
}
