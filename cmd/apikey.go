package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/pkg/db"
)

var ErrCopyToClipboard = errors.New("copy error")

var apikeyCopy bool

var apikeyCmd = &cobra.Command{
	Use:     "apikey",
	Aliases: []string{"key", "keys"},
	Short:   "Manage API keys",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var apikeyNewCmd = &cobra.Command{
	Use:   "new NAME",
	Short: "Generate a new API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKeys(cmd, func(s *service.APIKeys, userID int64) error {
			k, err := s.Create(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), k.Key)
			fmt.Fprintln(cmd.ErrOrStderr(), "store it now, it will not be shown again")

			if apikeyCopy {
				if err := copyToClipboard(k.Key); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "key copied to clipboard")
			}

			return nil
		})
	},
}

var apikeyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List API keys",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withKeys(cmd, func(s *service.APIKeys, userID int64) error {
			keys, err := s.List(cmd.Context(), userID)
			if err != nil {
				return err
			}

			return printKeys(cmd.OutOrStdout(), keys)
		})
	},
}

var apikeyRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"del"},
	Short:   "Delete an API key",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		return withKeys(cmd, func(s *service.APIKeys, userID int64) error {
			if err := s.Delete(cmd.Context(), userID, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "api key %d deleted\n", id)

			return nil
		})
	},
}

// withKeys opens the database and calls fn with the key service and the
// default user's ID.
func withKeys(cmd *cobra.Command, fn func(*service.APIKeys, int64) error) error {
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

	return fn(service.NewAPIKeys(r, serviceOpts()...), u.ID)
}

func printKeys(w io.Writer, keys []*db.APIKey) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "no api keys")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKEY\tCREATED\tLAST USED")
	for _, k := range keys {
		last := "never"
		if k.LastUsed != nil {
			last = *k.LastUsed
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", k.ID, k.Name, k.Preview, k.CreatedAt, last)
	}

	return tw.Flush()
}

// copyToClipboard copies a string to the clipboard.
func copyToClipboard(s string) error {
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("%w: %w", ErrCopyToClipboard, err)
	}

	return nil
}

func init() {
	apikeyNewCmd.Flags().BoolVarP(&apikeyCopy, "copy", "C", false, "copy the new key to the clipboard")

	apikeyCmd.AddCommand(apikeyNewCmd, apikeyListCmd, apikeyRmCmd)
	Root.AddCommand(apikeyCmd)
}
