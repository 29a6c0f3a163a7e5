package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/relay/internal/chatclient"
	relayerrors "github.com/yourusername/relay/internal/errors"
	"github.com/yourusername/relay/internal/irc"
	"github.com/yourusername/relay/internal/ircformat"
	"github.com/yourusername/relay/internal/output"
	"github.com/yourusername/relay/internal/transcript"
)

var (
	searchMin     int
	searchMax     int
	searchPattern string
	searchLimit   int
	searchSaved   bool
	searchTimeout time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List the server's channels that match a user range and name pattern",
	Long: `Connect, run a LIST and print the channels whose user count lies strictly
between --min and --max and whose name matches --pattern (glob, case
insensitive). Results are saved when the transcript is enabled.

With --saved the results of the last saved search are printed without
connecting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchSaved {
			return printSavedSearch()
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.shutdown.Stop()

		criteria := irc.SearchCriteria{
			NamePattern: searchPattern,
			MinUsers:    searchMin,
			MaxUsers:    searchMax,
		}
		search := s.engine.NewChannelSearch(criteria)
		var recorder *transcript.Recorder
		if s.db != nil {
			recorder = transcript.NewRecorder(s.db, s.engine.SessionID, s.logger)
		}

		search.AddListener(irc.SearchFuncs{
			Started: func(total int) {
				s.logger.Info("Server lists %d channels", total)
			},
			Ended: func() {
				printSearchResults(s.logger, search.Results(), searchLimit)
				if recorder != nil {
					if id, err := recorder.SaveSearch(search); err != nil {
						s.errs.LogError(err, "saving search results")
					} else {
						s.logger.Info("Saved as search %s", id)
					}
				}
				s.shutdown.Request()
			},
		})

		var searchErr error
		s.client.Connect(chatclient.ConnectionListenerFunc(func() {
			if err := search.Start(); err != nil {
				searchErr = err
				s.shutdown.Request()
			}
		}))

		ctx := cmd.Context()
		if searchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, searchTimeout)
			defer cancel()
		}
		s.shutdown.Wait(ctx)

		if searchErr != nil {
			return s.fail(searchErr)
		}
		if !search.Complete() {
			return fmt.Errorf("search did not finish within %s", searchTimeout)
		}
		return nil
	},
}

// printSearchResults prints channels by user count, largest first
func printSearchResults(logger output.Logger, found []*irc.Channel, limit int) {
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].UserCount() > found[j].UserCount()
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	if len(found) == 0 {
		logger.Info("No channels matched")
		return
	}
	for _, ch := range found {
		fmt.Printf("%-30s %6d  %s\n", ch.Target(), ch.UserCount(), ircformat.Strip(ch.Topic()))
	}
	logger.Success("%d channels matched", len(found))
}

// printSavedSearch prints the last saved search from the transcript
func printSavedSearch() error {
	cfg, out, err := loadOutput()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg, out.Logger)
	if err != nil {
		return err
	}
	if db == nil {
		return relayerrors.NewConfigError("database.transcript must be enabled to read saved searches", nil)
	}
	defer func() { _ = db.Close() }()

	results, err := db.LatestSearchResults(searchLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		out.Logger.Info("No saved searches")
		return nil
	}
	out.Logger.Info("Search %s from %s", results[0].SearchID, results[0].Timestamp.Format(time.RFC3339))
	for _, r := range results {
		fmt.Printf("%-30s %6d  %s\n", r.Channel, r.Users, ircformat.Strip(r.Topic))
	}
	return nil
}

func init() {
	searchCmd.Flags().IntVar(&searchMin, "min", 0, "Only channels with more users than this")
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "Only channels with fewer users than this (0 for no limit)")
	searchCmd.Flags().StringVar(&searchPattern, "pattern", "", "Glob the channel name must match, e.g. \"go*\"")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Print at most this many channels (0 for all)")
	searchCmd.Flags().BoolVar(&searchSaved, "saved", false, "Print the last saved search instead of connecting")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 2*time.Minute, "Give up if the listing takes longer")
	rootCmd.AddCommand(searchCmd)
}
