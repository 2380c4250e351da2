package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/sbm/internal/dbtask"
)

var backupDir string

var dbCmd = &cobra.Command{
	Use:     "db",
	Aliases: []string{"database"},
	Short:   "Database maintenance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a verified copy of the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		dir := backupDir
		if dir == "" {
			dir = filepath.Join(r.Cfg.Path, "backup")
		}

		dest, err := dbtask.Backup(ctx, r, dir, time.Now())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), dest)

		return nil
	},
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the SQLite integrity check",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		if err := dbtask.Check(ctx, r); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", r.Cfg.Fullpath())

		return nil
	},
}

var dbVacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Rebuild the database file to reclaim space",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		return r.Vacuum(ctx)
	},
}

func init() {
	dbBackupCmd.Flags().StringVarP(&backupDir, "dir", "d", "", "backup directory (default: <db dir>/backup)")

	dbCmd.AddCommand(dbBackupCmd, dbCheckCmd, dbVacuumCmd)
	Root.AddCommand(dbCmd)
}
