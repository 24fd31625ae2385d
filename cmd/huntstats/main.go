package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"huntstats/internal/app"
	"huntstats/internal/config"
	"huntstats/internal/dataprocessing"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/exporter"
	"huntstats/internal/infrastructure"
	"huntstats/internal/operations"
	"huntstats/internal/services"
	"huntstats/pkg/contracts/domain"
)

// options holds the command line settings. Defaults come from the config.
type options struct {
	monsters   string
	characters string
	outDir     string
	threshold  int64
}

// Report is written to summary.json in the output directory
type Report struct {
	GeneratedAt          time.Time                     `json:"generated_at"`
	Source               string                        `json:"source"`
	Description          dataprocessing.DatasetSummary `json:"description"`
	EDA                  dataprocessing.EDASummary     `json:"eda"`
	KillsByRegion        map[string]float64            `json:"kills_by_region"`
	AvgRewardByRegion    map[string]float64            `json:"avg_reward_by_region"`
	MostDangerousMonster string                        `json:"most_dangerous_monster"`
	RareThreshold        int64                         `json:"rare_threshold"`
	RareMonsters         int                           `json:"rare_monsters"`
	Pipeline             *operations.RunState          `json:"pipeline"`
	Characters           *CharacterReport              `json:"characters,omitempty"`
	Files                []string                      `json:"files"`
}

// CharacterReport describes the is_monster balance of the roster
type CharacterReport struct {
	Source            string         `json:"source"`
	Rows              int            `json:"rows"`
	ClassDistribution map[string]int `json:"class_distribution"`
	Balanced          map[string]int `json:"balanced_distribution"`
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		return 1
	}
	defer func() { _ = infrastructure.CloseLogFile() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, cfg, logger, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		logger.Error("Report failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func parseFlags(args []string, cfg *config.Config, usage io.Writer) (options, error) {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(usage)

	var opts options
	fs.StringVar(&opts.monsters, "monsters", cfg.Data.MonsterFile, "monster dataset (.csv, .tsv or .xlsx)")
	fs.StringVar(&opts.characters, "characters", cfg.Data.CharacterFile, "optional character dataset")
	fs.StringVar(&opts.outDir, "out", cfg.Data.OutputDir, "output directory")
	fs.Int64Var(&opts.threshold, "threshold", cfg.Processing.RareThreshold, "monsters with fewer kills are rare")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, apperrors.NewAppValidationError(fmt.Sprintf("unexpected argument %q", fs.Arg(0)))
	}
	if opts.monsters == "" {
		return options{}, apperrors.NewAppValidationError("a monster dataset is required (-monsters)")
	}
	if opts.threshold < 0 {
		return options{}, apperrors.NewAppValidationError(fmt.Sprintf("threshold must not be negative, got %d", opts.threshold))
	}
	if opts.outDir == "" {
		opts.outDir = "."
	}
	return opts, nil
}

// run loads the datasets, logs the analysis and writes the cleaned,
// encoded and rare exports plus the JSON report
func run(ctx context.Context, base *config.Config, logger *slog.Logger, args []string, usage io.Writer) (*Report, error) {
	cfg := *base
	opts, err := parseFlags(args, &cfg, usage)
	if err != nil {
		return nil, err
	}
	cfg.Processing.RareThreshold = opts.threshold

	application, err := app.New(&cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = application.OTelProviders.Shutdown(context.Background()) }()

	svc := application.DatasetService
	paths := []string{opts.monsters}
	if opts.characters != "" {
		paths = append(paths, opts.characters)
	}

	start := time.Now()
	datasets, err := svc.LoadFiles(ctx, paths...)
	if err != nil {
		return nil, err
	}
	monsters := datasets[0]
	logger.InfoContext(ctx, "datasets loaded",
		slog.Int("files", len(datasets)),
		slog.Duration("duration", time.Since(start)))

	report := &Report{
		GeneratedAt:   time.Now().UTC(),
		Source:        monsters.Name,
		RareThreshold: opts.threshold,
	}
	if err := analyse(ctx, svc, monsters.ID, report); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "exploratory summary",
		slog.Any("eda", report.EDA),
		slog.Any("shape", report.Description.Shape))
	logger.InfoContext(ctx, "aggregations",
		slog.Any("kills_by_region", report.KillsByRegion),
		slog.Any("avg_reward_by_region", report.AvgRewardByRegion),
		slog.String("most_dangerous_monster", report.MostDangerousMonster))

	if err := writeExports(ctx, svc, application.Pipeline, &cfg, opts, monsters, logger, report); err != nil {
		return nil, err
	}

	if len(datasets) > 1 {
		chars, err := characterReport(ctx, svc, datasets[1], cfg.Processing.SamplingSeed)
		if err != nil {
			return nil, err
		}
		report.Characters = chars
		logger.InfoContext(ctx, "character classes",
			slog.Any("class_distribution", chars.ClassDistribution),
			slog.Any("balanced_distribution", chars.Balanced))
	}

	if err := exporter.WriteJSONReport(opts.outDir, config.SummaryFile, report); err != nil {
		return nil, err
	}
	report.Files = append(report.Files, config.SummaryFile)

	logger.InfoContext(ctx, "report complete",
		slog.String("out", opts.outDir),
		slog.Any("files", report.Files),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

func analyse(ctx context.Context, svc *services.DatasetService, id string, report *Report) error {
	var err error
	if report.Description, err = svc.Describe(ctx, id); err != nil {
		return err
	}
	if report.EDA, err = svc.EDA(ctx, id); err != nil {
		return err
	}
	if report.KillsByRegion, err = svc.KillsByRegion(ctx, id); err != nil {
		return err
	}
	if report.AvgRewardByRegion, err = svc.AvgRewardByRegion(ctx, id); err != nil {
		return err
	}
	report.MostDangerousMonster, err = svc.MostDangerousMonster(ctx, id)
	return err
}

func writeExports(ctx context.Context, svc *services.DatasetService, pipeline *operations.Pipeline, cfg *config.Config, opts options, monsters *services.Dataset, logger *slog.Logger, report *Report) error {
	procOpts, err := dataprocessing.OptionsFromConfig(cfg.Processing)
	if err != nil {
		return err
	}

	clean, state, err := svc.Transform(ctx, monsters.ID, operations.DefaultSteps(procOpts))
	report.Pipeline = state
	if err != nil {
		return err
	}
	csvWriter := exporter.NewCSVWriter(opts.outDir, logger)
	if err := csvWriter.WriteTable(config.CleanedDatasetFile, clean.Table, false); err != nil {
		return err
	}
	report.Files = append(report.Files, config.CleanedDatasetFile)

	// The encoded table is only exported, never stored
	encoded, err := pipeline.Run(ctx, clean.Table, []operations.StepSpec{
		{ID: operations.StepIDLabelEncode, Params: operations.Params{operations.ParamColumn: domain.ColMonsterName}},
		{ID: operations.StepIDOneHotEncode, Params: operations.Params{operations.ParamColumn: domain.ColRegion}},
	})
	if err != nil {
		return err
	}
	if err := exporter.NewXLSXWriter(opts.outDir, logger).WriteTable(config.EncodedDatasetFile, exporter.DefaultSheet, encoded.Table); err != nil {
		return err
	}
	report.Files = append(report.Files, config.EncodedDatasetFile)

	rare, _, err := svc.Transform(ctx, monsters.ID, []operations.StepSpec{
		{ID: operations.StepIDFilterRare, Params: operations.Params{operations.ParamThreshold: opts.threshold}},
	})
	if err != nil {
		return err
	}
	if err := writeRows(csvWriter, config.RareDatasetFile, rare.Table); err != nil {
		return err
	}
	report.RareMonsters = rare.Table.Len()
	report.Files = append(report.Files, config.RareDatasetFile)
	return nil
}

// writeRows streams a table row by row
func writeRows(w *exporter.CSVWriter, name string, t *domain.Table) error {
	stream, err := w.CreateStreamWriter(name, t.Columns())
	if err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		if err := stream.WriteRow(t.Row(i)); err != nil {
			_ = stream.Close()
			return apperrors.NewStorageError(fmt.Sprintf("failed to write row %d", i), err)
		}
	}
	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError("failed to flush CSV", err)
	}
	return nil
}

func characterReport(ctx context.Context, svc *services.DatasetService, chars *services.Dataset, seed uint64) (*CharacterReport, error) {
	dist, err := svc.ClassDistribution(ctx, chars.ID, domain.ColIsMonster)
	if err != nil {
		return nil, err
	}

	params := operations.Params{operations.ParamLabel: domain.ColIsMonster}
	if seed != 0 {
		params[operations.ParamSeed] = seed
	}
	balanced, _, err := svc.Transform(ctx, chars.ID, []operations.StepSpec{{ID: operations.StepIDUpSample, Params: params}})
	if err != nil {
		return nil, err
	}
	balancedDist, err := svc.ClassDistribution(ctx, balanced.ID, domain.ColIsMonster)
	if err != nil {
		return nil, err
	}

	return &CharacterReport{
		Source:            chars.Name,
		Rows:              chars.Table.Len(),
		ClassDistribution: dist,
		Balanced:          balancedDist,
	}, nil
}
