package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sigacad/matriculas/internal/importer"
	"github.com/sigacad/matriculas/internal/persistence"
	"github.com/sigacad/matriculas/pkg/configuration"
)

type importOptions struct {
	csvPath string
	dryRun  bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <csv_file>",
		Short: "Destructively import matrículas from a CSV file",
		Long: "Deletes every existing matrícula and re-creates the collection from the CSV.\n" +
			"Rows whose student or course group cannot be resolved are skipped and\n" +
			"reported; the delete and the bulk insert run inside one transaction, so a\n" +
			"failed insert leaves the table exactly as it was.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.csvPath = args[0]
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and resolve rows without touching the matriculas table")
	return cmd
}

type importSummary struct {
	Status  string          `json:"status"`
	RunID   string          `json:"run_id"`
	File    string          `json:"file"`
	Deleted int64           `json:"deleted"`
	Created int             `json:"created"`
	Skipped []importer.Skip `json:"skipped,omitempty"`
}

func runImport(ctx context.Context, opts importOptions) error {
	if _, err := os.Stat(opts.csvPath); err != nil {
		if os.IsNotExist(err) {
			return withCode(exitValidation, fmt.Errorf("csv file not found: %s", opts.csvPath))
		}
		return withCode(exitValidation, fmt.Errorf("stat %s: %w", opts.csvPath, err))
	}

	conf := configuration.Use()
	runID := uuid.New()
	log := conf.Logger().WithField("run_id", runID)

	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	svc := importer.NewService(
		persistence.NewStudentRepository(pool),
		persistence.NewCourseGroupRepository(pool),
		persistence.NewMatriculaRepository(pool),
		log,
	)

	log.WithField("file", opts.csvPath).Info("starting destructive matrícula import")

	created, skipped, err := svc.Transform(ctx, opts.csvPath)
	if err != nil {
		return withCode(exitValidation, fmt.Errorf("%s: %w", opts.csvPath, err))
	}

	if opts.dryRun {
		return writeJSONLine(importSummary{
			Status:  "dry_run",
			RunID:   runID.String(),
			File:    opts.csvPath,
			Created: len(created),
			Skipped: skipped,
		})
	}

	deleted, err := svc.Replace(ctx, created)
	if err != nil {
		return withCode(exitDBWrite, fmt.Errorf("replace matriculas: %w", err))
	}

	return writeJSONLine(importSummary{
		Status:  "applied",
		RunID:   runID.String(),
		File:    opts.csvPath,
		Deleted: deleted,
		Created: len(created),
		Skipped: skipped,
	})
}
