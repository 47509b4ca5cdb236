package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"

	"barterhub/internal/container"
	"barterhub/internal/datastore"
	"barterhub/internal/models"
	"barterhub/internal/services"
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
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSetConfig(),
			commandListConfig(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			err = datastore.CreateTables(c.Context, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")
			return nil
		},
	}
}

// insert default configs to db, keeping values an operator already changed
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			for _, config := range services.DefaultConfigs() {
				inserted, err := datastore.SeedConfig(ctx, db, &config)
				if err != nil {
					log.Println(config.Key, err)
					continue
				}
				if !inserted {
					fmt.Println("kept", config.Key)
				}
			}

			fmt.Println("Migration success")
			return nil
		},
	}
}

func commandSetConfig() *cli.Command {
	return &cli.Command{
		Name:      "set-config",
		Usage:     "overwrite one config value",
		ArgsUsage: "<key> <value>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.ShowSubcommandHelp(c)
			}

			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			return datastore.UpsertConfig(c.Context, db, &models.Config{
				Key:   c.Args().Get(0),
				Value: c.Args().Get(1),
			})
		},
	}
}

func commandListConfig() *cli.Command {
	return &cli.Command{
		Name:  "list-config",
		Usage: "print every config value",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			configs, err := datastore.ListConfigs(c.Context, db)
			if err != nil {
				return err
			}
			for _, config := range configs {
				fmt.Printf("%s=%s\n", config.Key, config.Value)
			}
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	vs, err := env.EnvsRequired("DB_DSN")
	if err != nil {
		return nil, err
	}
	return container.OpenDB(vs["DB_DSN"], os.Getenv("DB_PASSWORD")), nil
}
