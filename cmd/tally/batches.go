package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-tally/internal/cli"
	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/model"
)

func batchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List imported batches",
		RunE:  runListBatches,
	}
	addDBFlag(cmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a batch and its records",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteBatch,
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	addDBFlag(deleteCmd)

	cmd.AddCommand(deleteCmd)
	return cmd
}

func runListBatches(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	store, err := initStorage(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	batches, err := store.ListBatches(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(batches) == 0 {
		_, _ = fmt.Fprintln(w, cli.FormatInfo("No batches imported yet"))
		return nil
	}

	return printBatches(cmd, batches)
}

func printBatches(cmd *cobra.Command, batches []model.Batch) error {
	var table strings.Builder
	tw := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BATCH\tRECORDS\tIMPORTED\tSOURCES")
	for _, b := range batches {
		sources := strings.Join(b.Sources, ", ")
		if sources == "" {
			sources = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			b.Name, b.RecordCount, b.ImportedAt.Local().Format("2006-01-02 15:04"), sources)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	title := fmt.Sprintf("Batches (%d)", len(batches))
	_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(title, strings.TrimRight(table.String(), "\n")))
	return err
}

func runDeleteBatch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	name := args[0]
	yes, _ := cmd.Flags().GetBool("yes")

	if !yes {
		reader := cli.NewNonBlockingReader(cmd.InOrStdin())
		ok, err := cli.Confirm(ctx, reader, cmd.OutOrStdout(), fmt.Sprintf("Delete batch %s and all of its records?", name))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
			return nil
		}
	}

	store, err := initStorage(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteBatch(ctx, name); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("batch %q does not exist", name), err)
		}
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted batch "+name))
	return nil
}

