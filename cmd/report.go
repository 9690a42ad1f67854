package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hakanisaksson/githook-seclog/internal/audit"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show recent audit records from the journal",
	Long: `Reads the SQLite journal configured as journal_file and prints the
most recent audit records, newest first.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.JournalFile == "" {
		return fmt.Errorf("no journal_file configured, nothing to report on")
	}

	records, err := audit.RecentRecords(cfg.JournalFile, reportLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("Last %d audit records from %s\n\n", len(records), cfg.JournalFile)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "User", "Client", "Commit", "Action", "File"})
	table.SetBorder(false)
	for _, r := range records {
		table.Append([]string{r.LoggedAt, r.User, r.ClientIP, r.Commit, r.Action, r.File})
	}
	table.Render()
	return nil
}

func init() {
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "maximum number of records to show")
	rootCmd.AddCommand(reportCmd)
}
