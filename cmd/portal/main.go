package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Black-And-White-Club/dojo-portal/app"
	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam"
	examservice "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application"
	"github.com/Black-And-White-Club/dojo-portal/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCLI().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "portal",
		Usage: "belt examination portal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			importCommand(),
			templateCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := app.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the event router",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			a, err := app.NewApp(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			return a.Start(c.Context)
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a results or registrations sheet and print the report",
		ArgsUsage: "<file.csv|file.xlsx>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: string(examservice.KindExamResults), Usage: "exam_results or test_registrations"},
			&cli.Int64Flag{Name: "test-id", Usage: "test id for rows that leave it empty"},
			&cli.StringFlag{Name: "requested-by", Value: "cli"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one file", 2)
			}
			kind, err := examservice.ParseImportKind(c.String("kind"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := app.OpenDB(c.Context, cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			module, err := exam.NewExamModule(c.Context, exam.Deps{Config: cfg, Logger: logger, DB: db})
			if err != nil {
				return err
			}

			return runImport(c.Context, module.ExamService, examservice.ImportRequest{
				Kind:          kind,
				DefaultTestID: c.Int64("test-id"),
				RequestedBy:   c.String("requested-by"),
			}, c.Args().First(), c.App.Writer)
		},
	}
}

func templateCommand() *cli.Command {
	return &cli.Command{
		Name:      "template",
		Usage:     "write an empty import workbook",
		ArgsUsage: "<out.xlsx>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected an output path", 2)
			}
			f, err := os.Create(c.Args().First())
			if err != nil {
				return err
			}
			svc := examservice.NewExamService(nil, examservice.Directories{}, nil, nil, nil, nil, nil, examservice.Config{})
			if err := svc.WriteTemplate(c.Context, f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
}

// runImport imports path and writes the JSON report to out. A report with failed rows
// exits with status 1 after printing.
func runImport(ctx context.Context, svc examservice.Service, req examservice.ImportRequest, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	req.FileName = filepath.Base(path)
	req.Data = f

	report, err := svc.Import(ctx, req)
	if err != nil {
		if examservice.IsUploadError(err) {
			return cli.Exit(err.Error(), 2)
		}
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.Success {
		return cli.Exit(fmt.Sprintf("%d of %d rows failed", report.Failed, report.Total), 1)
	}
	return nil
}
