package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"weread-sync/core/config"
	"weread-sync/core/logger"
	"weread-sync/core/reconcile"
	"weread-sync/feature/notes"
	"weread-sync/feature/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile notes command
	applyNotes  bool
	dryRunNotes bool
	yesConfirm  bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Inspect and repair the synced content of a single book",
	Long: `Reconcile one book at a time: report which highlights, notes and chapter
headers are new or stale, and optionally apply the changes.`,
}

// notesReconcileCmd reports the note diff of one book and optionally applies it.
var notesReconcileCmd = &cobra.Command{
	Use:   "notes <bookId>",
	Short: "Reconcile the notes of one book (report + optionally apply)",
	Long: `Reconcile the highlights, notes and chapter headers of one book.

Reports the entries already synced, the new ones and the stale ones.
Optionally apply the changes, which prunes stale content.

Examples:
  # Report only
  reconcile notes 822995

  # Apply with interactive confirmation
  reconcile notes 822995 --apply

  # Apply with auto-confirm (non-interactive)
  reconcile notes 822995 --apply --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runNotesReconcile,
}

func init() {
	reconcileCmd.AddCommand(notesReconcileCmd)

	notesReconcileCmd.Flags().BoolVar(&applyNotes, "apply", false, "Apply the changes (create new entries, prune stale ones)")
	notesReconcileCmd.Flags().BoolVar(&dryRunNotes, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	notesReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runNotesReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	bookID := args[0]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	runner, err := pipeline.Build(cfg, l)
	if err != nil {
		return err
	}
	svc, err := runner.Notes(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare workspace: %w", err)
	}

	l.Info("Planning reconciliation...", zap.String("book_id", bookID))
	preview, err := svc.Preview(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	printNotesReport(l, preview)

	if !applyNotes {
		l.Info("No actions requested. Use --apply to create new entries and prune stale ones.")
		return nil
	}
	if dryRunNotes {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	if stale(preview.Diffs) > 0 && !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Applying changes...")
	res, err := svc.SyncBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}
	l.Info("Successfully reconciled book",
		zap.Int("created", res.Created),
		zap.Int("pruned", res.Pruned),
		zap.Int("matched", res.Matched),
	)
	return nil
}

func stale(d *reconcile.Diffs) int {
	return len(d.Highlights.Stale) + len(d.Notes.Stale) + len(d.Chapters.Stale)
}

// printNotesReport prints a formatted reconciliation report using logger.
func printNotesReport(l *zap.Logger, p *notes.Preview) {
	d := p.Diffs

	l.Info("Reconciliation report",
		zap.String("book_id", p.BookID),
		zap.String("page_id", p.PageID),
		zap.Int("highlights_matched", d.Highlights.Matched),
		zap.Int("highlights_new", d.Highlights.New),
		zap.Int("notes_matched", d.Notes.Matched),
		zap.Int("notes_new", d.Notes.New),
		zap.Int("chapters_matched", d.Chapters.Matched),
		zap.Int("chapters_new", d.Chapters.New),
		zap.Int("stale", stale(d)),
	)

	var refs []reconcile.Ref
	refs = append(refs, d.Highlights.Stale...)
	refs = append(refs, d.Notes.Stale...)
	refs = append(refs, d.Chapters.Stale...)

	// Show sample of stale keys (max 5 for logger)
	maxShow := min(5, len(refs))
	for _, ref := range refs[:maxShow] {
		l.Info("Stale entry",
			zap.String("key", ref.Key),
			zap.String("block_id", ref.BlockID),
		)
	}
	if len(refs) > maxShow {
		l.Info("Additional stale entries not shown", zap.Int("count", len(refs)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm pruning stale content: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
