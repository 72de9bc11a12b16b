package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"image-tagger/internal/tagstore"
	"image-tagger/internal/workspace"
)

func newImagesCmd(opts *rootOptions) *cobra.Command {
	var showTags bool

	cmd := &cobra.Command{
		Use:   "images [query...]",
		Short: "List images, optionally filtered by a query",
		Long: `List the images of the directory in natural order.

Arguments are joined with spaces into one filter query, for example:
  image-tagger images 'cat, *.jpg !(outdoor)'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				out := cmd.OutOrStdout()
				for _, image := range ws.Filter(query) {
					if !showTags {
						fmt.Fprintln(out, image)
						continue
					}
					tags, err := ws.Tags(image)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\t%s\n", image, strings.Join(tags, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&showTags, "tags", "t", false, "Print each image's tags")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <image>",
		Short: "Show the tags and file details of one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				detail, err := ws.Image(args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Image:\t%s\n", detail.Name)
				fmt.Fprintf(w, "Position:\t%d\n", detail.Index+1)
				fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(detail.Tags, ", "))
				fmt.Fprintf(w, "Type:\t%s\n", detail.Info.MimeType)
				fmt.Fprintf(w, "Size:\t%d bytes\n", detail.Info.Size)
				if detail.Info.Width > 0 {
					fmt.Fprintf(w, "Dimensions:\t%dx%d\n", detail.Info.Width, detail.Info.Height)
				}
				return w.Flush()
			})
		},
	}
}

func newTagsCmd(opts *rootOptions) *cobra.Command {
	var (
		contains string
		counts   bool
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tag vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				out := cmd.OutOrStdout()

				if counts {
					tagCounts, err := ws.TagCounts(cmd.Context())
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					for _, tc := range tagCounts {
						if contains != "" && !strings.Contains(strings.ToLower(tc.Name), strings.ToLower(contains)) {
							continue
						}
						fmt.Fprintf(w, "%s\t%d\n", tc.Name, tc.Count)
					}
					return w.Flush()
				}

				tags := ws.Vocabulary()
				if contains != "" {
					tags = ws.MatchVocabulary(contains)
				}
				for _, tag := range tags {
					fmt.Fprintln(out, tag)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&contains, "contains", "", "Only tags containing this text, ignoring case")
	cmd.Flags().BoolVar(&counts, "counts", false, "Show usage counts from the catalog")
	return cmd
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <text>",
		Short: "Suggest vocabulary tags fuzzily matching text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				for _, tag := range ws.Suggest(args[0], limit) {
					fmt.Fprintln(cmd.OutOrStdout(), tag)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of suggestions (0 = all)")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <image> <tag> [tag...]",
		Short: "Add tags to an image",
		Long: `Add one or more tags to an image. Tags the image already carries are
reported and skipped.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			image := args[0]
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				for _, tag := range args[1:] {
					if err := ws.AddTag(image, tag); err != nil {
						if isTagExists(err) {
							fmt.Fprintf(cmd.ErrOrStderr(), "%s already tagged %q\n", image, tag)
							continue
						}
						return fmt.Errorf("add %q to %s: %w", tag, image, err)
					}
				}
				return printTags(cmd, ws, image)
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <image> <tag> [tag...]",
		Short: "Remove tags from an image",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			image := args[0]
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				for _, tag := range args[1:] {
					removed, err := ws.RemoveTag(image, tag)
					if err != nil {
						return fmt.Errorf("remove %q from %s: %w", tag, image, err)
					}
					if !removed {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s is not tagged %q\n", image, tag)
					}
				}
				return printTags(cmd, ws, image)
			})
		},
	}
}

func newRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a tag on every image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				affected, err := ws.RenameTag(args[0], args[1])
				if err != nil {
					return fmt.Errorf("rename %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q on %d images\n", args[0], args[1], len(affected))
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a tag from every image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				affected, err := ws.DeleteTag(args[0])
				if err != nil {
					return fmt.Errorf("delete %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q from %d images\n", args[0], len(affected))
				return nil
			})
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show directory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withWorkspace(cmd.Context(), func(ws *workspace.Workspace) error {
				stats := ws.Stats()

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Directory:\t%s\n", stats.Dir)
				fmt.Fprintf(w, "Images:\t%d\n", stats.TotalImages)
				fmt.Fprintf(w, "Tagged:\t%d\n", stats.TaggedImages)
				fmt.Fprintf(w, "Untagged:\t%d\n", stats.TotalImages-stats.TaggedImages)
				fmt.Fprintf(w, "Vocabulary:\t%d\n", stats.VocabularySize)
				return w.Flush()
			})
		},
	}
}

func printTags(cmd *cobra.Command, ws *workspace.Workspace, image string) error {
	tags, err := ws.Tags(image)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", image, strings.Join(tags, ", "))
	return nil
}

func isTagExists(err error) bool {
	return errors.Is(err, tagstore.ErrTagExists)
}
