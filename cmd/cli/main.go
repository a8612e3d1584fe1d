package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/infrastructure/config"
	"github.com/iho/minibank/internal/infrastructure/logger"
	"github.com/iho/minibank/internal/infrastructure/postgres"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

var errInconsistent = errors.New("ledger is inconsistent")

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "minibank-cli",
		Short:         "MiniBank CLI tool",
		Long:          `A command line interface for operating a MiniBank ledger service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the MiniBank API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MINIBANK_TOKEN"), "Bearer token for authenticated calls")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd(opts))

	rootCmd.AddCommand(
		ledgerCmd,
		healthCmd(opts),
		loginCmd(opts),
		hashPasswordCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func consistencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that balances match the transaction log (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := doRequest(opts, http.MethodGet, "/api/v1/ledger/consistency", nil)
			if err != nil {
				return err
			}

			// 409 still carries the report.
			if status != http.StatusOK && status != http.StatusConflict {
				return fmt.Errorf("consistency check failed (status %d): %s", status, truncate(string(body), 200))
			}

			var report dto.ConsistencyResponse
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			printJSON(out, report)

			if !report.Consistent {
				for _, d := range report.Discrepancies {
					fmt.Fprintf(out, "account %s: recorded %s, computed %s\n",
						truncate(d.AccountID, 26), d.RecordedBalance, d.ComputedBalance)
				}
				return errInconsistent
			}

			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	}
}

func healthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := doRequest(opts, http.MethodGet, "/ready", nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(body)))
			if status != http.StatusOK {
				return fmt.Errorf("server not ready (status %d)", status)
			}
			return nil
		},
	}
}

func loginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(dto.TokenRequest{Username: username, Password: password})
			if err != nil {
				return err
			}

			status, body, err := doRequest(opts, http.MethodPost, "/api/v1/auth/token", payload)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("login failed (status %d): %s", status, truncate(string(body), 200))
			}

			var resp dto.TokenResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if path == "" {
				path = cfg.MigrationsPath
			}

			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "minibank-cli"}, cmd.ErrOrStderr())

			if args[0] == "down" {
				return postgres.RunMigrationsDown(databaseURL, path, log)
			}
			return postgres.RunMigrations(databaseURL, path, log)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")
	return cmd
}

func doRequest(opts *options, method, path string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, strings.TrimRight(opts.baseURL, "/")+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	client := &http.Client{Timeout: opts.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
