package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/config"
	"github.com/shaderl/internship-service/internal/handlers"
	"github.com/shaderl/internship-service/internal/metrics"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/pkg"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web application",
		Action: func(cctx *cli.Context) error {
			rt, err := bootstrap(cctx.Context, os.Stdout)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				rt.Close(ctx)
			}()
			return serve(cctx.Context, rt)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	cfg := rt.cfg
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	cookie := pkg.SessionOptions(cfg)

	authenticator, err := auth.NewAuthenticator(auth.AuthenticatorConfig{
		Users:     rt.repo.GetRepository().User(),
		Passwords: rt.passwords,
		Validator: rt.validator.GetBusinessValidator(),
		Cookie:    cookie,
		Logger:    rt.slog,
		Metrics:   m,
	})
	if err != nil {
		return err
	}

	router, err := handlers.NewRouter(handlers.HandlerConfig{
		Services:       rt.services,
		Authenticator:  authenticator,
		Logger:         rt.logger,
		Metrics:        m,
		SessionStore:   pkg.NewSessionStore(cfg, rt.db),
		CookieName:     cfg.Session.CookieName,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	rt.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		rt.logger.Error("Server forced to shutdown", "error", err)
	}

	rt.logger.Info("Server exited")
	return nil
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database tables",
		Action: func(cctx *cli.Context) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer pkg.CloseDatabase(db)

			if err := pkg.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cctx.App.Writer, "Migrations applied")
			return nil
		},
	}
}

func adminCmd() *cli.Command {
	var name, email string
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage admin accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create the first admin (password is read from stdin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name", Destination: &name, Required: true},
					&cli.StringFlag{Name: "email", Usage: "Login email", Destination: &email, Required: true},
				},
				Action: withRuntime(func(cctx *cli.Context, rt *runtime) error {
					password, err := readPassword(cctx.App.Reader)
					if err != nil {
						return err
					}
					user, err := rt.services.User().CreateFirstAdmin(cctx.Context, name, email, password)
					if err != nil {
						return cliError(err)
					}
					fmt.Fprintf(cctx.App.Writer, "Admin %s created with id %d\n", user.Email, user.ID)
					return nil
				}),
			},
		},
	}
}

func usersCmd() *cli.Command {
	var role, status, email string
	emailFlag := &cli.StringFlag{Name: "email", Usage: "Account email", Destination: &email, Required: true}

	return &cli.Command{
		Name:  "users",
		Usage: "List, approve and reset user accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "role", Usage: "admin, supervisor or intern", Destination: &role},
					&cli.StringFlag{Name: "status", Usage: "all, pending or approved", Value: string(services.UserStatusAll), Destination: &status},
				},
				Action: withRuntime(func(cctx *cli.Context, rt *runtime) error {
					users, err := rt.services.User().List(cctx.Context, services.UserListFilters{
						Role:   role,
						Status: services.UserStatus(status),
					})
					if err != nil {
						return err
					}

					tw := tabwriter.NewWriter(cctx.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tAPPROVED\tCREATED")
					for _, u := range users {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
							u.ID, u.Name, u.Email, u.Role, u.ApprovedForLogin(), u.CreatedAt.Format(time.DateOnly))
					}
					return tw.Flush()
				}),
			},
			{
				Name:  "approve",
				Usage: "Approve a pending intern",
				Flags: []cli.Flag{emailFlag},
				Action: withRuntime(func(cctx *cli.Context, rt *runtime) error {
					if err := rt.services.User().ApproveByEmail(cctx.Context, email); err != nil {
						return cliError(err)
					}
					fmt.Fprintf(cctx.App.Writer, "Approved %s\n", email)
					return nil
				}),
			},
			{
				Name:  "reset-password",
				Usage: "Set a new password (read from stdin)",
				Flags: []cli.Flag{emailFlag},
				Action: withRuntime(func(cctx *cli.Context, rt *runtime) error {
					password, err := readPassword(cctx.App.Reader)
					if err != nil {
						return err
					}
					if err := rt.services.User().ResetPassword(cctx.Context, email, password); err != nil {
						return cliError(err)
					}
					fmt.Fprintf(cctx.App.Writer, "Password updated for %s\n", email)
					return nil
				}),
			},
		},
	}
}

// withRuntime runs action against a bootstrapped runtime, logging to stderr
// so command output stays clean.
func withRuntime(action func(*cli.Context, *runtime) error) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		rt, err := bootstrap(cctx.Context, os.Stderr)
		if err != nil {
			return err
		}
		defer rt.Close(context.Background())
		return action(cctx, rt)
	}
}

func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	password := strings.TrimRight(sc.Text(), "\r")
	if password == "" {
		return "", errors.New("missing password from stdin")
	}
	return password, nil
}

// cliError turns service errors into the message an operator should see.
func cliError(err error) error {
	if msg, ok := services.UserMessage(err); ok {
		return errors.New(msg)
	}
	return err
}
