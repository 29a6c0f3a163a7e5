package main

import (
	"bufio"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/relay/internal/chatclient"
	"github.com/yourusername/relay/internal/database"
	"github.com/yourusername/relay/internal/irc"
	"github.com/yourusername/relay/internal/maintenance"
	"github.com/yourusername/relay/internal/transcript"
)

var (
	runRollback bool
	runNoInput  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect, join the configured channels and print the traffic",
	Long: `Connect to the configured server, join every channel listed under
client.channels and print what happens there.

Lines typed on stdin are sent to the channel joined last: "/me text" sends an
action, "/COMMAND args" is sent to the server as is, anything else is a message.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runRollback {
			return rollbackTranscript()
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.shutdown.Stop()

		attachConsole(s.engine, s.logger)
		if s.db != nil {
			recorder := transcript.NewRecorder(s.db, s.engine.SessionID, s.logger)
			recorder.Attach(s.engine)

			sched := maintenance.New(s.db, s.logger, s.cfg.Database.GetVacuumIntervalDuration(), s.cfg.Database.RetentionDays)
			if err := sched.Start(); err != nil {
				return s.fail(err)
			}
			s.shutdown.Register("maintenance", sched.Stop)
		}

		var current atomic.Pointer[irc.Channel]
		s.engine.AddListener(irc.EngineListenerFunc(func(ev irc.EngineEvent) {
			switch ev.Kind {
			case irc.EventChannelJoin:
				current.Store(ev.Channel)
			case irc.EventChannelPart:
				current.CompareAndSwap(ev.Channel, nil)
			}
		}))

		s.client.Connect(chatclient.ConnectionListenerFunc(func() {
			for _, name := range s.cfg.Client.Channels {
				s.client.Channel(name)
			}
		}))

		if !runNoInput {
			go readInput(s.engine, &current)
		}

		s.shutdown.Wait(cmd.Context())
		return nil
	},
}

// readInput feeds stdin lines to the engine until stdin closes
func readInput(engine *irc.Engine, current *atomic.Pointer[irc.Channel]) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		engine.ProcessInput(line, current.Load())
	}
}

// rollbackTranscript undoes the last transcript schema migration
func rollbackTranscript() error {
	cfg, out, err := loadOutput()
	if err != nil {
		return err
	}
	logger := out.Logger

	db, err := database.New(cfg.Database.Path, cfg.Database.WALMode)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logger.Info("Rolling back last migration...")
	undone, err := db.Rollback()
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	logger.Success("Rolled back migration %03d_%s (applied %s)", undone.Version, undone.Name, undone.AppliedAt.Format(time.RFC3339))
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&runRollback, "rollback", false, "Roll back the last applied transcript migration and exit")
	runCmd.Flags().BoolVar(&runNoInput, "no-input", false, "Do not read input from stdin")
	rootCmd.AddCommand(runCmd)
}
