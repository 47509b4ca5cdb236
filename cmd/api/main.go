package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"barterhub/internal/api/handler"
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

	app := &cli.App{
		Name: "api",
		Commands: []*cli.Command{
			commandServer(cfg, container.New(cfg)),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServer(cfg *config.Env, injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "0.0.0.0:8080",
				Usage: "serve address",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPServiceName, cfg.OTLPEndpoint)
			if err != nil {
				return err
			}
			// nolint:errcheck
			defer shutdownTracing(context.Background())

			router, err := handler.New(&handler.Config{
				Container:      injector,
				Mode:           cfg.Mode,
				Origins:        cfg.Origins,
				TrustedProxies: cfg.TrustedProxies,
				CronSecret:     cfg.CronSecret,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    c.String("addr"),
				Handler: router,
			}

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				logger.L().Infof("ListenAndServe: %s (%s)", c.String("addr"), cfg.Mode)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				// nolint:errcheck
				defer injector.Shutdown()
				return srv.Shutdown(context.TODO())
			})

			return errWg.Wait()
		},
	}
}
