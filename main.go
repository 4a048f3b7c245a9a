package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/internal"
	"github.com/wrdo/mailrouter/internal/database"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/repository"
	"github.com/wrdo/mailrouter/server"
)

func main() {
	app := &cli.App{
		Name:  "mailrouter",
		Usage: "routes inbound email to mailboxes, external addresses and push channels",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: migrate,
			},
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, cli.Exit("Config initialization failed: "+err.Error(), 1)
	}
	return cfg, nil
}

func migrate(c *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return cli.Exit("Database initialization failed: "+err.Error(), 1)
	}

	if err := repository.MigrateDB(db); err != nil {
		return cli.Exit("Database migration failed: "+err.Error(), 1)
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()
	if _, err := internal.InitSystemConfigs(c.Context, repository.InitRepositories(db), appLogger); err != nil {
		return cli.Exit("System config initialization failed: "+err.Error(), 1)
	}

	log.Println("Database migration completed successfully")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return cli.Exit("Database initialization failed: "+err.Error(), 1)
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Mailrouter starting up...")

	srv, err := server.NewServer(context.Background(), cfg, db)
	if err != nil {
		return cli.Exit("Server setup failed: "+err.Error(), 1)
	}

	if err := srv.Run(); err != nil {
		return cli.Exit("Server startup failed: "+err.Error(), 1)
	}

	log.Println("Shutdown complete")
	return nil
}
