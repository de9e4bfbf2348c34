package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-tally/internal/analysis"
	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/ingest"
	"github.com/Veraticus/spice-tally/internal/model"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Summarize transactions from files or the database",
		Long: `Summarize a set of transactions.

With file arguments the files are read directly and nothing is stored.
Without arguments the records come from the database: one batch with
--batch, or everything that has been imported.

Records with an unknown type or a missing, zero, or negative amount are
skipped. If nothing valid remains, "No transactions to analyze" is printed.`,
		Example: `  # Summarize an export without importing it
  tally analyze ~/Downloads/transactions.json

  # Summarize every QFX file in a directory as JSON
  tally analyze ~/Downloads/*.qfx --output json

  # Summarize a stored batch
  tally analyze --batch 2024-01`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("batch", "b", "", "Stored batch to analyze (default: all stored records)")
	cmd.Flags().StringP("output", "o", outputText, "Output format (text, json)")
	addDBFlag(cmd)

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	batch, _ := cmd.Flags().GetString("batch")

	if output != outputText && output != outputJSON {
		return common.NewUserError(fmt.Sprintf("unknown output format %q, use text or json", output), common.ErrInvalidInput)
	}
	if len(args) > 0 && batch != "" {
		return common.NewUserError("pass either files or --batch, not both", common.ErrInvalidInput)
	}

	records, err := loadForAnalysis(cmd, args, batch)
	if err != nil {
		return err
	}

	summary := analysis.Analyze(records)
	common.LogDebug("Analyzed records", common.Fields{"records": len(records), "has_summary": summary != nil})

	return writeSummary(cmd.OutOrStdout(), output, summary)
}

func loadForAnalysis(cmd *cobra.Command, args []string, batch string) ([]*model.TransactionRecord, error) {
	ctx := commandContext(cmd)

	if len(args) > 0 {
		files, err := ingest.ExpandPatterns(args)
		if err != nil {
			if errors.Is(err, common.ErrNoFiles) {
				return nil, common.NewUserError("no files matched", err)
			}
			return nil, err
		}
		return ingest.LoadFiles(ctx, files, nil)
	}

	store, err := initStorage(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.LoadRecords(ctx, batch)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(fmt.Sprintf("batch %q does not exist", batch), err)
	}
	return records, err
}

func writeSummary(w io.Writer, output string, summary *analysis.Summary) error {
	if output == outputJSON {
		data, err := analysis.FormatJSON(summary)
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	_, err := fmt.Fprintln(w, analysis.NewCLIFormatter().FormatSummary(summary))
	return err
}
