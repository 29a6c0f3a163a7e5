package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/relay/internal/database"
	relayerrors "github.com/yourusername/relay/internal/errors"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <channel>",
	Short: "Print the recorded messages of a channel",
	Long: `Print the last messages recorded for a channel, oldest first. Private
conversations are stored under the other user's nick.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, out, err := loadOutput()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg, out.Logger)
		if err != nil {
			return err
		}
		if db == nil {
			return relayerrors.NewConfigError("database.transcript must be enabled to read history", nil)
		}
		defer func() { _ = db.Close() }()

		messages, err := db.RecentMessages(args[0], historyLimit)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			out.Logger.Info("Nothing recorded for %s", args[0])
			return nil
		}
		for _, msg := range messages {
			fmt.Println(formatHistoryLine(msg))
		}
		return nil
	},
}

func formatHistoryLine(msg *database.Message) string {
	stamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	if msg.EventType == database.EventTypeAction {
		return fmt.Sprintf("[%s] * %s %s", stamp, msg.Nick, msg.Content)
	}
	return fmt.Sprintf("[%s] <%s> %s", stamp, msg.Nick, msg.Content)
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Number of messages to print")
	rootCmd.AddCommand(historyCmd)
}
