package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-tally/internal/cli"
	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/ingest"
	"github.com/Veraticus/spice-tally/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Store transactions from JSON or OFX/QFX files",
		Long: `Import transaction files into the local database under a batch name.

Records are stored as they are, including ones analysis will skip, so a
batch can be re-analyzed later. Importing the same record into the same
batch again stores nothing new. A file that repeats a record keeps every
copy.`,
		Example: `  # Import a month of exports into one batch
  tally import ~/Downloads/chase_jan_2024.qfx ~/Downloads/ally_jan.ofx --batch 2024-01

  # Preview what would be imported
  tally import ~/Downloads/*.json --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("batch", "b", "", "Batch name (default: a generated id)")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().Bool("no-progress", false, "Do not draw a progress bar")
	addDBFlag(cmd)

	return cmd
}

type fileResult struct {
	path     string
	records  []*model.TransactionRecord
	inserted int
	valid    int
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	batch, _ := cmd.Flags().GetString("batch")
	if batch == "" {
		batch = uuid.NewString()
	}

	files, err := ingest.ExpandPatterns(args)
	if err != nil {
		if errors.Is(err, common.ErrNoFiles) {
			return common.NewUserError("no files matched", err)
		}
		return err
	}

	slog.Info("Importing files", "file_count", len(files), "batch", batch, "dry_run", dryRun)

	var progress *cli.Progress
	if !noProgress {
		progress = cli.NewProgress(cmd.ErrOrStderr(), len(files), "Importing")
	}

	results := make([]fileResult, 0, len(files))
	for _, path := range files {
		records, loadErr := ingest.LoadFile(ctx, path)
		if loadErr != nil {
			progress.Finish()
			common.LogError(loadErr, "Failed to load import file", common.Fields{"file": path})
			return loadErr
		}
		results = append(results, fileResult{path: path, records: records, valid: countValid(records)})
		progress.Step(filepath.Base(path))
	}
	progress.Finish()

	if !dryRun {
		if err := saveResults(cmd, batch, results); err != nil {
			return err
		}
	}

	printImportSummary(cmd, batch, dryRun, results)
	return nil
}

func saveResults(cmd *cobra.Command, batch string, results []fileResult) error {
	ctx := commandContext(cmd)

	store, err := initStorage(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	for i := range results {
		if len(results[i].records) == 0 {
			slog.Warn("No records found in file", "file", filepath.Base(results[i].path))
			continue
		}

		source := filepath.Base(results[i].path)
		inserted, err := store.SaveRecordsFrom(ctx, batch, source, results[i].records)
		if err != nil {
			common.LogError(err, "Failed to save records", common.Fields{"batch": batch, "file": source})
			return fmt.Errorf("failed to save %s: %w", source, err)
		}
		results[i].inserted = inserted
		common.LogInfo("Saved records", common.Fields{
			"batch":    batch,
			"file":     source,
			"inserted": inserted,
			"skipped":  len(results[i].records) - inserted,
		})
	}
	return nil
}

func printImportSummary(cmd *cobra.Command, batch string, dryRun bool, results []fileResult) {
	w := cmd.OutOrStdout()

	var total, valid, inserted int
	for _, r := range results {
		total += len(r.records)
		valid += r.valid
		inserted += r.inserted

		line := fmt.Sprintf("%s %s: %d records (%d valid)", cli.FileIcon, filepath.Base(r.path), len(r.records), r.valid)
		if !dryRun {
			line += fmt.Sprintf(", %d new", r.inserted)
		}
		_, _ = fmt.Fprintln(w, line)
	}

	if dryRun {
		_, _ = fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Dry run: %d records (%d valid) would be imported into batch %s", total, valid, batch)))
		return
	}
	_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Imported %d new records into batch %s (%d already present)", inserted, batch, total-inserted)))
}

func countValid(records []*model.TransactionRecord) int {
	n := 0
	for _, r := range records {
		if r.Valid() {
			n++
		}
	}
	return n
}
