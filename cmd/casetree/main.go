package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/casetree/internal/cli"
	"github.com/alexanderramin/casetree/internal/config"
	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/alexanderramin/casetree/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	app := &cli.App{
		Config:    cfg,
		Logger:    logger,
		OpenLocal: openLocal,
	}
	defer app.Close()

	return cli.NewRootCmd(app).Execute()
}

// openLocal opens the database and wires the services on it. The database
// is only opened by commands that need it, so --remote never touches it.
func openLocal(cfg config.Config) (*cli.Services, io.Closer, error) {
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(cfg.Logger(os.Stderr)))
	}

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	return &cli.Services{
		Projects: service.NewProjectService(repository.NewSQLiteProjectRepo(database)),
		Trees: service.NewTreeService(
			repository.NewSQLiteSuiteRepo(database),
			repository.NewSQLiteSectionRepo(database),
			repository.NewSQLiteTestCaseRepo(database),
			uow,
			observers...,
		),
		Reorders: service.NewReorderService(uow, observers...),
		Imports:  service.NewImportService(uow, observers...),
	}, database, nil
}
