package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/sbm/internal/service"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"exp"},
	Short:   "Export bookmarks as a Netscape bookmark file",
	Long: `Export bookmarks as a Netscape bookmark file.

Writes to stdout unless -o is given. A directory given to -o gets
a dated file name, like the web export.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		u, err := defaultUser(ctx, r)
		if err != nil {
			return err
		}

		port := service.NewPort(r, serviceOpts()...)
		if exportOutput == "" {
			return port.ExportTo(ctx, cmd.OutOrStdout(), u.ID)
		}

		name := exportOutput
		if fi, err := os.Stat(name); err == nil && fi.IsDir() {
			name = filepath.Join(name, service.ExportFilename(time.Now()))
		}

		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("closing export file", "file", name, "error", err)
			}
		}()

		if err := port.ExportTo(ctx, f, u.ID); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "bookmarks exported to %s\n", name)

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")

	Root.AddCommand(exportCmd)
}
