package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/shelver/internal/app"
	"github.com/five82/shelver/internal/collections"
	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/library"
)

// listFlags control a headless listing.
type listFlags struct {
	sort   string
	desc   bool
	pages  int
	output string
	match  string
}

func (f *listFlags) register(cmd *cobra.Command, sortable, matchable bool) {
	if sortable {
		cmd.Flags().StringVar(&f.sort, "sort", "", "sort order (default from prefs)")
	}
	if matchable {
		cmd.Flags().StringVar(&f.match, "match", "", "only print entries whose title or author contains this text")
	}
	cmd.Flags().BoolVar(&f.desc, "desc", false, "descending order")
	cmd.Flags().IntVar(&f.pages, "pages", 0, "stop after this many pages (0 = all)")
	cmd.Flags().StringVarP(&f.output, "output", "o", formatText, "output format: text, json, yaml")
}

func newListCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a collection of the library",
		Example: `  shelver list audiobooks --sort authorName
  shelver list series --sort numBooks --desc --output json
  shelver list podcasts --library Podcasts --pages 1
  shelver list audiobooks --match tolkien`,
	}
	cmd.AddCommand(
		newListAudiobooksCmd(flags),
		newListSeriesCmd(flags),
		newListPodcastsCmd(flags),
	)
	return cmd
}

func newListAudiobooksCmd(flags *globalFlags) *cobra.Command {
	lf := &listFlags{}
	cmd := &cobra.Command{
		Use:   "audiobooks",
		Short: "List the audiobooks of a book library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validFormat(lf.output); err != nil {
				return err
			}
			session, userPrefs, log, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			shelf := app.NewShelf(session.Client, session.Library, userPrefs, log)
			if shelf.Audiobooks == nil {
				return fmt.Errorf("library %q holds podcasts", session.Library.Name)
			}

			order := userPrefs.AudiobookOrder()
			if lf.sort != "" {
				if order, err = library.ParseAudiobookSortOrder(lf.sort); err != nil {
					return err
				}
			}
			ascending := userPrefs.AudiobooksAscending
			if cmd.Flags().Changed("desc") {
				ascending = !lf.desc
			}
			shelf.Audiobooks.SetCriteria(order, ascending)

			books, total, err := app.Collect(commandContext(cmd), shelf.Audiobooks, lf.pages)
			if err != nil {
				return err
			}
			return writeAudiobooks(cmd.OutOrStdout(), lf.output, books, counts{loaded: len(books), total: total, match: lf.match})
		},
	}
	lf.register(cmd, true, true)
	return cmd
}

func newListSeriesCmd(flags *globalFlags) *cobra.Command {
	lf := &listFlags{}
	cmd := &cobra.Command{
		Use:   "series",
		Short: "List the series of a book library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validFormat(lf.output); err != nil {
				return err
			}
			session, userPrefs, log, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			shelf := app.NewShelf(session.Client, session.Library, userPrefs, log)
			if shelf.Series == nil {
				return fmt.Errorf("library %q holds podcasts", session.Library.Name)
			}

			order := userPrefs.SeriesOrder()
			if lf.sort != "" {
				if order, err = library.ParseSeriesSortOrder(lf.sort); err != nil {
					return err
				}
			}
			ascending := userPrefs.SeriesAscending
			if cmd.Flags().Changed("desc") {
				ascending = !lf.desc
			}
			shelf.Series.SetCriteria(order, ascending)

			series, total, err := app.Collect(commandContext(cmd), shelf.Series, lf.pages)
			if err != nil {
				return err
			}
			return writeSeries(cmd.OutOrStdout(), lf.output, series, total)
		},
	}
	lf.register(cmd, true, false)
	return cmd
}

func newListPodcastsCmd(flags *globalFlags) *cobra.Command {
	lf := &listFlags{}
	cmd := &cobra.Command{
		Use:   "podcasts",
		Short: "List the podcasts of a podcast library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validFormat(lf.output); err != nil {
				return err
			}
			session, userPrefs, log, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			shelf := app.NewShelf(session.Client, session.Library, userPrefs, log)
			if shelf.Podcasts == nil {
				return fmt.Errorf("library %q holds books; pick a podcast library with --library", session.Library.Name)
			}

			ascending := userPrefs.PodcastsAscending
			if cmd.Flags().Changed("desc") {
				ascending = !lf.desc
			}
			shelf.Podcasts.SetAscending(ascending)

			podcasts, total, err := app.Collect(commandContext(cmd), shelf.Podcasts, lf.pages)
			if err != nil {
				return err
			}
			return writePodcasts(cmd.OutOrStdout(), lf.output, podcasts, counts{loaded: len(podcasts), total: total, match: lf.match})
		},
	}
	lf.register(cmd, false, true)
	return cmd
}

func newSeriesBooksCmd(flags *globalFlags) *cobra.Command {
	lf := &listFlags{}
	cmd := &cobra.Command{
		Use:   "series-books <series-id>",
		Short: "List the audiobooks of one series in series order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(lf.output); err != nil {
				return err
			}
			session, _, log, err := connect(cmd, flags)
			if err != nil {
				return err
			}

			books := collections.NewAudiobooksInSeries(session.Client, args[0], lazyload.WithLogger(log))
			books.SetScope(session.Library)
			if cmd.Flags().Changed("desc") {
				books.SetAscending(!lf.desc)
			}

			items, total, err := app.Collect(commandContext(cmd), books, lf.pages)
			if err != nil {
				return err
			}
			return writeAudiobooks(cmd.OutOrStdout(), lf.output, items, counts{loaded: len(items), total: total, match: lf.match})
		},
	}
	lf.register(cmd, false, true)
	return cmd
}

func newLibrariesCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "List the libraries on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validFormat(output); err != nil {
				return err
			}
			session, _, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			libs, err := session.Client.FetchLibraries(commandContext(cmd))
			if err != nil {
				return err
			}
			return writeLibraries(cmd.OutOrStdout(), output, libs, session.Library.ID)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format: text, json, yaml")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
