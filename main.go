package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "internship-service",
		Usage: "Internship management for interns, supervisors and admins",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			adminCmd(),
			usersCmd(),
		},
	}
}

func main() {
	app := newApp()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("internship-service: %v", err)
	}
}
