package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/portfolio-hub/gateway/internal/config"
	"github.com/portfolio-hub/gateway/internal/store"
	"github.com/portfolio-hub/gateway/pkg/models"
	"github.com/spf13/cobra"
)

// adminStore is the read access gatewayctl needs.
type adminStore interface {
	ListTokens(ctx context.Context) ([]*models.APIToken, error)
	ListCallLogs(ctx context.Context, tokenID uuid.UUID, limit int) ([]*models.CallLog, error)
}

// env resolves configuration and external resources lazily, so subcommands
// only touch what they use.
type env struct {
	loadConfig func() (*config.Config, error)
	openStore  func(ctx context.Context, cfg *config.Config) (adminStore, func(), error)
	now        func() time.Time
}

func defaultEnv() *env {
	return &env{
		loadConfig: func() (*config.Config, error) {
			_ = godotenv.Load()
			return config.Load()
		},
		openStore: func(ctx context.Context, cfg *config.Config) (adminStore, func(), error) {
			pool, err := store.Connect(ctx, cfg.Database)
			if err != nil {
				return nil, nil, err
			}
			return store.NewPostgresStore(pool), pool.Close, nil
		},
		now: time.Now,
	}
}

func newRootCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Operate the portfolio API gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCommand(e))
	cmd.AddCommand(newTokensCommand(e))
	cmd.AddCommand(newLogsCommand(e))
	return cmd
}

func newMigrateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			if err := store.RollbackMigrations(cfg.Database.URL, cfg.Database.MigrationsDir, steps); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "reverted %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			version, dirty, err := store.MigrationVersion(cfg.Database.URL, cfg.Database.MigrationsDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func newTokensCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Inspect API tokens",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List API tokens without secrets",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return e.withStore(c.Context(), func(s adminStore) error {
				tokens, err := s.ListTokens(c.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(c.OutOrStdout(), tokens)
				}
				return writeTokens(c.OutOrStdout(), tokens, e.now())
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.AddCommand(list)
	return cmd
}

func newLogsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect gateway call logs",
	}

	var (
		tokenFlag string
		limit     int
		asJSON    bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent calls made with a token",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			tokenID, err := uuid.Parse(tokenFlag)
			if err != nil {
				return fmt.Errorf("--token must be a token id: %w", err)
			}
			return e.withStore(c.Context(), func(s adminStore) error {
				entries, err := s.ListCallLogs(c.Context(), tokenID, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(c.OutOrStdout(), entries)
				}
				return writeCallLogs(c.OutOrStdout(), entries)
			})
		},
	}
	list.Flags().StringVar(&tokenFlag, "token", "", "Token id")
	list.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries")
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	_ = list.MarkFlagRequired("token")
	cmd.AddCommand(list)
	return cmd
}

func (e *env) withStore(ctx context.Context, fn func(adminStore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	s, closeFn, err := e.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTokens(w io.Writer, tokens []*models.APIToken, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tEXPIRES\tLAST USED\tSCOPE")
	for _, t := range tokens {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Name, tokenStatus(t, now), formatTime(t.ExpiresAt), formatTime(t.LastUsedAt), describeScope(t.Scopes))
	}
	return tw.Flush()
}

func writeCallLogs(w io.Writer, entries []*models.CallLog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMETHOD\tENDPOINT\tSTATUS\tMS\tIP\tUSER AGENT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.CreatedAt.UTC().Format(time.RFC3339), e.Method, e.Endpoint, e.StatusCode,
			e.ResponseTimeMS, e.IPAddress, e.UserAgent)
	}
	return tw.Flush()
}

func tokenStatus(t *models.APIToken, now time.Time) string {
	switch {
	case !t.IsActive:
		return "inactive"
	case !t.UsableAt(now):
		return "expired"
	default:
		return "active"
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// describeScope summarizes the restricted dimensions of s.
func describeScope(s models.Scope) string {
	var parts []string
	add := func(name string, ids []string) {
		if ids != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", name, len(ids)))
		}
	}
	add("poles", s.PoleIDs)
	add("directions", s.DirectionIDs)
	add("services", s.ServiceIDs)
	add("projects", s.ProjectIDs)
	if s.DataTypes != nil {
		parts = append(parts, "data="+strings.Join(s.DataTypes, ","))
	}
	if len(parts) == 0 {
		return "unrestricted"
	}
	return strings.Join(parts, " ")
}
