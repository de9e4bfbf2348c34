package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-tally/internal/analysis"
	"github.com/Veraticus/spice-tally/internal/cli"
	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/config"
	"github.com/Veraticus/spice-tally/internal/service"
	"github.com/Veraticus/spice-tally/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a batch summary to Google Sheets",
		Long: `Analyze a stored batch and write the summary to the "Summary" tab of a
Google Sheets spreadsheet, replacing what was there.

Credentials come from sheets.service_account_path, or from
sheets.client_id, sheets.client_secret and sheets.refresh_token. The
GOOGLE_SHEETS_* environment variables are used for anything not set in
the config file.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("batch", "b", "", "Stored batch to export (default: all stored records)")
	addDBFlag(cmd)

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	batch, _ := cmd.Flags().GetString("batch")

	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return common.NewUserError("Google Sheets is not configured", err)
	}

	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	store, err := initStorage(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	return exportSummary(ctx, cmd.OutOrStdout(), store, writer, batch)
}

func exportSummary(ctx context.Context, w io.Writer, store service.Storage, writer service.SummaryWriter, batch string) error {
	records, err := store.LoadRecords(ctx, batch)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("batch %q does not exist", batch), err)
		}
		common.LogError(err, "Failed to load records for export", common.Fields{"batch": batch})
		return err
	}

	summary := analysis.Analyze(records)
	if summary == nil {
		return common.NewUserError(analysis.NoDataMessage, common.ErrInvalidInput)
	}

	label := batch
	if label == "" {
		label = "all"
	}
	if err := writer.Write(ctx, label, summary); err != nil {
		common.LogError(err, "Failed to export summary", common.Fields{"batch": label})
		return fmt.Errorf("failed to export summary: %w", err)
	}

	_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Exported summary of %d transactions", summary.TransactionCount)))
	return nil
}
