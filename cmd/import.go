package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mateconpizza/rotato"
	"github.com/spf13/cobra"

	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/pkg/bookio"
)

// ErrNothingImported is returned when every link in the file was skipped or
// the file could not be parsed.
var ErrNothingImported = errors.New("nothing imported")

var importCmd = &cobra.Command{
	Use:     "import FILE",
	Aliases: []string{"imp"},
	Short:   "Import bookmarks from a Netscape bookmark file",
	Long:    "Import bookmarks from a Netscape bookmark file. Use - to read from stdin.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}

		if !bookio.LooksNetscape(data) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", bookio.ErrNoNetscapeFile)
		}

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

		sp := rotato.New(
			rotato.WithSpinnerColor(rotato.ColorGray),
			rotato.WithMesg("importing bookmarks..."),
			rotato.WithMesgColor(rotato.ColorBrightGreen, rotato.ColorStyleItalic),
			rotato.WithDoneColorMesg(rotato.ColorBrightGreen, rotato.ColorStyleItalic),
		)
		sp.Start()
		res := service.NewPort(r, serviceOpts()...).Import(ctx, u.ID, data)
		sp.Done("Import done")

		return printResult(cmd.OutOrStdout(), res)
	},
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading bookmarks: %w", err)
	}

	return data, nil
}

func printResult(w io.Writer, res bookio.Result) error {
	fmt.Fprintf(w, "imported: %d\nskipped:  %d\n", res.Imported, res.Skipped)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}

	if res.Imported == 0 && len(res.Errors) > 0 {
		return fmt.Errorf("%w: %d errors, first: %s", ErrNothingImported, len(res.Errors), res.Errors[0])
	}

	return nil
}

func init() {
	Root.AddCommand(importCmd)
}
