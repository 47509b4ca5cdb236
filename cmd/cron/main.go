package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"

	"barterhub/internal/config"
	"barterhub/internal/container"
	"barterhub/internal/logger"
	"barterhub/internal/telemetry"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg.Log)

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.OTLPServiceName+"-cron", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal(err)
	}

	injector := container.New(cfg)

	app := &cli.App{
		Name: "cronjob",
		After: func(*cli.Context) error {
			// nolint:errcheck
			defer injector.Shutdown()
			return shutdownTracing(context.Background())
		},
		Commands: []*cli.Command{
			commandCronjob(injector),
			commandOnce(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "cron",
		Usage: "run the lifecycle reconciler on its configured schedule",
		Action: func(c *cli.Context) error {
			job, err := NewLifecycleJob(injector)
			if err != nil {
				return err
			}

			cronRunner := cron.New()
			if err := job.Start(c.Context, cronRunner); err != nil {
				return err
			}
			logger.L().Info("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}

func commandOnce(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "once",
		Usage: "run a single lifecycle reconcile and exit",
		Action: func(c *cli.Context) error {
			job, err := NewLifecycleJob(injector)
			if err != nil {
				return err
			}
			return job.run(c.Context)
		},
	}
}
