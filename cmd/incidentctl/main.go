// Command incidentctl exports incidents and mints development tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dagapurva3/senior-care-incidents/internal/config"
	"github.com/dagapurva3/senior-care-incidents/internal/controllers"
	"github.com/dagapurva3/senior-care-incidents/internal/db"
	"github.com/dagapurva3/senior-care-incidents/internal/logger"
	"github.com/dagapurva3/senior-care-incidents/internal/middleware"
	"github.com/dagapurva3/senior-care-incidents/internal/services"
)

const appName = "incidentctl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Incident record service tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(exportCmd(), tokenCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, controllers.Version)
		},
	})

	return cmd
}

func exportCmd() *cobra.Command {
	var (
		owner  string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all incidents of an owner as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}

			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			logger.Initialize(logger.Options{Level: cfg.LogLevel})

			recordStore, closeStore, err := db.OpenStore(cfg, false)
			if err != nil {
				return fmt.Errorf("open incident store: %w", err)
			}
			defer db.CloseStore(closeStore)

			service := services.NewIncidentService(recordStore, services.DisabledSummarizer{}, services.IncidentServiceOptions{})
			result, err := service.Export(cmd.Context(), owner, format)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeExport(w, result)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner id whose incidents are exported")
	cmd.Flags().StringVar(&format, "format", services.ExportFormatCSV, "Export format (csv, json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func writeExport(w io.Writer, result *services.ExportResult) error {
	if result.Format == services.ExportFormatCSV {
		_, err := io.WriteString(w, result.CSV+"\n")
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Incidents)
}

func tokenCmd() *cobra.Command {
	var (
		owner string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET must be set")
			}

			token, expiresAt, err := middleware.NewJWTVerifier(cfg.JWTSecret).IssueToken(owner, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner id placed in the sub claim")
	cmd.Flags().StringVar(&email, "email", "", "Optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
