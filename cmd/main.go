package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"TmhnaDash/api/dash"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/appmanager"
	"TmhnaDash/internal/logger"
)

const (
	Version = "0.1.0"
	appName = "tmhna-dash"
)

func main() {
	// Load .env for local dev
	for _, f := range []string{".env", "../.env"} {
		_ = godotenv.Load(f)
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var servicesPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Multi-brand financial and vendor harmonization dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(servicesPath)
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&servicesPath, "services", "services.yaml", "Service sequence file")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and its supporting services",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(servicesPath)
		},
	})
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func serve(servicesPath string) error {
	shared, err := appmanager.NewShared()
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}
	manager := appmanager.NewAppManager(shared)

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence(servicesPath)
	if err != nil {
		return fmt.Errorf("failed to load service sequence: %w", err)
	}
	if err := manager.AutoRegisterServices(servicesCfg); err != nil {
		return err
	}
	if err := manager.StartAll(); err != nil {
		_ = manager.StopAll()
		return err
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.WithFields(logrus.Fields{"signal": sig.String()}).Info("shutting down")

	return manager.StopAll()
}

// exportCmd writes one download to disk without a browser, fetching the
// rows fresh for the given role.
func exportCmd() *cobra.Command {
	var (
		roleKey  string
		brandKey string
		format   string
		outDir   string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Write a CSV or XLSX export",
		Long: `Resources: raw-data, brand-approved, corporate-unified, raw-vendors, unified-vendors.
A controller role exports its own brand; --brand selects the brand for the corporate role.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rl := role.Parse(roleKey)
			var brand role.Brand
			if own, ok := rl.Brand(); ok {
				brand = own
			} else if brandKey != "" {
				parsed, err := role.ParseBrand(brandKey)
				if err != nil {
					return err
				}
				brand = parsed
			} else if dash.NeedsBrand(args[0]) {
				return fmt.Errorf("--brand is required to export %s as %s", args[0], rl.Label())
			}
			shared, err := appmanager.NewShared()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			srv := dash.NewServer(shared.DashDeps())
			d, err := srv.Export(ctx, rl, args[0], brand, format)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, d.Filename)
			if err := os.WriteFile(path, d.Body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(d.Body))
			return nil
		},
	}
	cmd.Flags().StringVar(&roleKey, "role", role.Default.String(), "Role key: maya, liam or ethan")
	cmd.Flags().StringVar(&brandKey, "brand", "", "Brand for brand-scoped resources")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Overall timeout")
	return cmd
}
