package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/internal/summary"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"info"},
	Short:   "Show bookmark statistics",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withBookmarks(cmd, func(s *service.Bookmarks, userID int64, path string) error {
			st, err := s.Statistics(cmd.Context(), userID)
			if err != nil {
				return err
			}

			return summary.Repo(cmd.OutOrStdout(), path, st)
		})
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags, most used first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withBookmarks(cmd, func(s *service.Bookmarks, userID int64, _ string) error {
			tags, err := s.TagCloud(cmd.Context(), userID)
			if err != nil {
				return err
			}

			return summary.Tags(cmd.OutOrStdout(), tags)
		})
	},
}

func withBookmarks(cmd *cobra.Command, fn func(*service.Bookmarks, int64, string) error) error {
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

	return fn(service.NewBookmarks(r, serviceOpts()...), u.ID, r.Cfg.Fullpath())
}

func init() {
	Root.AddCommand(statsCmd, tagsCmd)
}
