package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/hakanisaksson/githook-seclog/internal/config"
	"github.com/hakanisaksson/githook-seclog/internal/ui"
	"github.com/hakanisaksson/githook-seclog/pkg/models"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration setup",
	Run:   runSetup,
}

func runSetup(cmd *cobra.Command, args []string) {
	fmt.Println("Setting up githook-seclog...")
	fmt.Println()

	if config.Exists() {
		var overwrite bool
		prompt := &survey.Confirm{
			Message: "Configuration already exists. Do you want to overwrite it?",
			Default: false,
		}
		survey.AskOne(prompt, &overwrite)
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return
		}
	}

	cfg := models.Default()

	qs := []*survey.Question{
		{
			Name: "logfile",
			Prompt: &survey.Input{
				Message: "Audit log file path (empty to disable the file sink):",
				Default: "/var/log/githook-seclog.log",
			},
		},
		{
			Name: "journalfile",
			Prompt: &survey.Input{
				Message: "SQLite journal path (empty to disable the journal):",
			},
		},
		{
			Name: "syslog",
			Prompt: &survey.Confirm{
				Message: "Send audit records to syslog?",
				Default: true,
			},
		},
	}

	answers := struct {
		LogFile     string `survey:"logfile"`
		JournalFile string `survey:"journalfile"`
		Syslog      bool   `survey:"syslog"`
	}{}

	if err := survey.Ask(qs, &answers); err != nil {
		ui.ShowError(err)
		return
	}

	cfg.LogFile = answers.LogFile
	cfg.JournalFile = answers.JournalFile
	cfg.Syslog.Enabled = answers.Syslog

	if answers.Syslog {
		facility := cfg.Syslog.Facility
		prompt := &survey.Select{
			Message: "Syslog facility:",
			Options: []string{"authpriv", "auth", "daemon", "user", "local0", "local1", "local2", "local3", "local4", "local5", "local6", "local7"},
			Default: facility,
		}
		survey.AskOne(prompt, &facility)
		cfg.Syslog.Facility = facility
	}

	if err := config.Save(cfg); err != nil {
		ui.ShowError(err)
		return
	}

	ui.ShowSuccess(fmt.Sprintf("Configuration written to %s", config.GetConfigFile()))
	ui.ShowInfo("Run 'githook-seclog install <repository>' to activate the hook.")
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
