// Command fleetctl is the operator CLI: tenant provisioning against the
// master database and dev-mode JWT minting.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fleetops/internal/db"
	"fleetops/internal/db/repository"
	"fleetops/internal/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Fleet operations admin CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			applyEnvOverrides(cmd)
		},
	}
	root.AddCommand(newTenantCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants in the master database",
	}
	cmd.AddCommand(newTenantCreateCmd())
	cmd.AddCommand(newTenantListCmd())
	return cmd
}

func newTenantCreateCmd() *cobra.Command {
	var (
		master      string
		name        string
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new tenant",
		Long:  "Register a tenant in the master database. The tenant's own database file is created and migrated on first use by the server.",
		Example: `  # Register the acme tenant
  fleetctl tenant create --name acme --display-name "Acme Logistics"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeDB, _, err := db.OpenSQLitePair(master, 1)
			if err != nil {
				return err
			}
			defer writeDB.Close() //nolint:errcheck
			if err := db.RunMasterMigrations(writeDB); err != nil {
				return err
			}

			if displayName == "" {
				displayName = name
			}
			t := &domain.Tenant{
				ID:          uuid.NewString(),
				Name:        name,
				DisplayName: displayName,
				DBName:      dbFileName(name),
			}
			created, err := repository.NewTenantRepo(writeDB).Create(cmd.Context(), t)
			if err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created tenant %s (id=%s, db=%s)\n", created.Name, created.ID, created.DBName)
			return nil
		},
	}

	cmd.Flags().StringVar(&master, "master", "fleetops_master.sqlite", "Path to the master database")
	cmd.Flags().StringVar(&name, "name", "", "Unique tenant name")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable tenant name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTenantListCmd() *cobra.Command {
	var master string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tenants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeDB, readDB, err := db.OpenSQLitePair(master, 1)
			if err != nil {
				return err
			}
			defer writeDB.Close() //nolint:errcheck
			defer readDB.Close()  //nolint:errcheck
			if err := db.RunMasterMigrations(writeDB); err != nil {
				return err
			}

			tenants, err := repository.NewTenantRepo(readDB).List(context.Background())
			if err != nil {
				return err
			}
			if len(tenants) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tenants registered")
				return nil
			}
			for _, t := range tenants {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.DisplayName, t.DBName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&master, "master", "fleetops_master.sqlite", "Path to the master database")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		tenantID string
		sub      string
		roles    []string
		secret   string
		expires  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a dev-mode JWT token",
		Long:  "Generate an HS256 JWT token for development and testing against a local server.",
		Example: `  # Mint a dispatcher token for the acme tenant
  fleetctl token --tenant <tenant-id> --sub jane --role dispatcher

  # Mint a driver token with a custom secret and expiry
  fleetctl token --tenant <tenant-id> --sub <driver-id> --role driver --secret mysecret --expires 48h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			claims := jwt.MapClaims{
				"sub":    sub,
				"tenant": tenantID,
				"roles":  roles,
				"iat":    now.Unix(),
				"exp":    now.Add(expires).Unix(),
			}

			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(secret))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID (JWT tenant claim)")
	cmd.Flags().StringVar(&sub, "sub", "", "Principal name (JWT sub claim)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role to include (repeatable): dispatcher, driver, manager")
	cmd.Flags().StringVar(&secret, "secret", "dev-secret-change-in-production", "JWT signing secret (HS256)")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "Token expiry duration")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}

// applyEnvOverrides fills unset flags from FLEETCTL_* environment
// variables, so secrets and paths need not appear on the command line.
func applyEnvOverrides(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		key := "FLEETCTL_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(key); ok {
			_ = cmd.Flags().Set(f.Name, v)
		}
	})
}

// dbFileName derives a filesystem-safe database file name from the tenant name.
func dbFileName(name string) string {
	s := strings.ToLower(name)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String() + ".sqlite"
}
