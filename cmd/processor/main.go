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
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"classpulse/internal/config"
	"classpulse/internal/dataprocessing"
	"classpulse/internal/exporter"
	"classpulse/internal/grading"
	"classpulse/internal/infrastructure"
	"classpulse/internal/services"
	"classpulse/internal/validation"
	"classpulse/pkg/contracts"
	"classpulse/pkg/contracts/domain"
)

const formatTable = "table"

// errUsage is returned for invalid command lines; main exits with status 2
var errUsage = errors.New("usage error")

type options struct {
	format     string
	outDir     string
	workers    int
	sample     bool
	seed       int64
	configFile string
	envFile    string
	version    bool
	files      []string
}

// job is one score sheet, or the generated sample cohort, to grade
type job struct {
	name string
	run  func(ctx context.Context) (*domain.AnalyticsResult, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Processing failed", slog.String("error", err.Error()))
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.format, "format", formatTable, "output format: table, json, csv or xlsx")
	fs.StringVar(&opts.outDir, "out", "", "output directory for exports (defaults to the configured reports directory)")
	fs.IntVar(&opts.workers, "workers", 4, "number of files graded concurrently")
	fs.BoolVar(&opts.sample, "sample", false, "grade a generated sample cohort")
	fs.Int64Var(&opts.seed, "seed", 1, "seed for the sample cohort")
	fs.StringVar(&opts.configFile, "config", "", "path to config.yaml")
	fs.StringVar(&opts.envFile, "env", config.DefaultEnvFile, "path to a .env file with CLASSPULSE_* overrides")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: processor [flags] <score sheet or directory>...\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	opts.files = fs.Args()
	if opts.version {
		return opts, nil
	}

	opts.format = strings.ToLower(opts.format)
	if opts.format != formatTable {
		if _, ok := exporter.ParseFormat(opts.format); !ok {
			return nil, fmt.Errorf("%w: unknown format %q", errUsage, opts.format)
		}
	}
	if opts.workers < 1 {
		return nil, fmt.Errorf("%w: -workers must be at least 1", errUsage)
	}
	if !opts.sample && len(opts.files) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: no input files", errUsage)
	}
	return opts, nil
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, contracts.GetFullVersionString())
	fmt.Fprintf(w, "grading scale %s, API %s\n", contracts.GradingScaleVersion, contracts.APIVersion)
	if !contracts.IsStable() {
		fmt.Fprintln(w, "pre-release build")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// run grades every input concurrently, then reports results in input order
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		printVersion(stdout)
		return nil
	}

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	paths := config.NewPaths(wd, cfg.Paths)
	if opts.outDir != "" {
		out, err := filepath.Abs(opts.outDir)
		if err != nil {
			return err
		}
		paths.ReportsDir = out
	}

	validator := validation.NewFileValidator(logger)
	opts.files, err = validator.ExpandInputs(opts.files)
	if err != nil {
		return err
	}
	if !opts.sample && len(opts.files) == 0 {
		return errors.New("no score sheets found in the given inputs")
	}
	if opts.format != formatTable {
		if err := validator.ValidateOutputDirectory(paths.ReportsDir); err != nil {
			return err
		}
	}

	engine, err := dataprocessing.NewEngine(logger, dataprocessing.EngineConfig{
		Subjects:             cfg.Analytics.Subjects,
		Scale:                grading.KJSEA(),
		TopN:                 cfg.Analytics.TopN,
		RemediationMinFailed: cfg.Analytics.RemediationMinFailed,
	})
	if err != nil {
		return fmt.Errorf("failed to create grading engine: %w", err)
	}

	csvWriter := exporter.NewCSVWriter(paths, logger)
	workbook := exporter.NewWorkbookWriter(engine.Scale(), paths, logger)
	svc := services.NewAnalyticsService(engine, services.AnalyticsOptions{
		SampleSize: cfg.Analytics.SampleSize,
		CSV:        csvWriter,
		Workbook:   workbook,
	}, logger)

	jobs := buildJobs(opts, svc)
	logger.Info("Starting score processing",
		slog.Int("jobs", len(jobs)),
		slog.Int("workers", opts.workers),
		slog.String("format", opts.format),
		slog.String("output_dir", paths.ReportsDir))

	results := make([]*domain.AnalyticsResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for i, j := range jobs {
		g.Go(func() error {
			result, err := j.run(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", j.name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.format == formatTable {
		for i, j := range jobs {
			printReport(stdout, j.name, engine.Scale(), results[i])
		}
		logger.Info("Score processing complete", slog.Int("jobs", len(jobs)))
		return nil
	}

	format, _ := exporter.ParseFormat(opts.format)
	names := summaryNames(jobs, format)
	for i, j := range jobs {
		result, name := results[i], names[i]

		var written string
		switch format {
		case exporter.FormatCSV:
			written, err = csvWriter.WriteFile(name, result)
		case exporter.FormatXLSX:
			written, err = workbook.WriteFile(name, result)
		default:
			written, err = writeJSON(ctx, svc, paths.GetReportPath(name), result)
		}
		if err != nil {
			return fmt.Errorf("%s: export failed: %w", j.name, err)
		}
		fmt.Fprintf(stdout, "%s -> %s (%d students)\n", j.name, written, result.TotalStudents)
	}

	logger.Info("Score processing complete", slog.Int("jobs", len(jobs)))
	return nil
}

func buildJobs(opts *options, svc *services.AnalyticsService) []job {
	jobs := make([]job, 0, len(opts.files)+1)
	if opts.sample {
		seed := opts.seed
		jobs = append(jobs, job{
			name: "sample-" + strconv.FormatInt(seed, 10),
			run: func(ctx context.Context) (*domain.AnalyticsResult, error) {
				return svc.Sample(ctx, seed, 0)
			},
		})
	}
	for _, path := range opts.files {
		jobs = append(jobs, job{
			name: path,
			run: func(ctx context.Context) (*domain.AnalyticsResult, error) {
				return svc.ProcessFile(ctx, path)
			},
		})
	}
	return jobs
}

// summaryName derives the export name: grade8_suswa.xlsx becomes
// grade8_suswa_summary.csv
func summaryName(source string, format exporter.Format) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "classpulse"
	}
	return base + "_summary" + format.Ext()
}

// summaryNames gives every job its own export name. Inputs sharing a base
// name, such as a/x.csv and b/x.csv or x.csv and x.xlsx, are numbered in
// input order: x_summary.csv, x_summary_2.csv.
func summaryNames(jobs []job, format exporter.Format) []string {
	names := make([]string, len(jobs))
	taken := make(map[string]bool, len(jobs))
	for i, j := range jobs {
		name := summaryName(j.name, format)
		stem := strings.TrimSuffix(name, format.Ext())
		for n := 2; taken[name]; n++ {
			name = stem + "_" + strconv.Itoa(n) + format.Ext()
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func writeJSON(ctx context.Context, svc *services.AnalyticsService, path string, result *domain.AnalyticsResult) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := svc.Export(ctx, result, exporter.FormatJSON, f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// printReport renders the ranked class list and the cohort summary
func printReport(w io.Writer, name string, scale *grading.Scale, result *domain.AnalyticsResult) {
	fmt.Fprintf(w, "\n%s: %d students, overall mean %s\n\n", name, result.TotalStudents, formatScore(result.OverallMean))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pos", "Student ID", "Name", "Stream", "Average", "Points", "Failed", "Grade"})
	for _, s := range result.ProcessedData {
		table.Append([]string{
			strconv.Itoa(s.Position),
			s.StudentID,
			s.Name,
			s.Stream,
			formatScore(s.Average),
			strconv.Itoa(s.TotalPoints),
			strconv.Itoa(s.FailedSubjects),
			s.OverallGrade,
		})
	}
	table.Render()

	subjects := tablewriter.NewWriter(w)
	subjects.SetHeader([]string{"Subject", "Mean", "Pass Rate", "Min", "Max"})
	for _, st := range result.SubjectStats {
		subjects.Append([]string{
			st.Name,
			formatScore(st.Mean),
			formatScore(st.PassRate) + "%",
			formatScore(st.Min),
			formatScore(st.Max),
		})
	}
	subjects.Render()

	insights := dataprocessing.BuildInsights(scale, result)
	fmt.Fprintf(w, "Strongest subject: %s (%s)\n", insights.StrongestSubject.Name, formatScore(insights.StrongestSubject.Mean))
	fmt.Fprintf(w, "Weakest subject:   %s (%s)\n", insights.WeakestSubject.Name, formatScore(insights.WeakestSubject.Mean))
	fmt.Fprintf(w, "Passing students:  %d of %d\n", insights.PassingStudents, result.TotalStudents)
	fmt.Fprintf(w, "Needs remediation: %d\n", len(insights.Remediation))
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
