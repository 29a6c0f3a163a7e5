package main

import (
	"errors"
	"time"

	"github.com/yourusername/relay/internal/config"
	"github.com/yourusername/relay/internal/database"
	relayerrors "github.com/yourusername/relay/internal/errors"
	"github.com/yourusername/relay/internal/irc"
	"github.com/yourusername/relay/internal/output"
	"github.com/yourusername/relay/internal/shutdown"
)

// session is everything a connected subcommand needs
type session struct {
	cfg      *config.Config
	out      *output.Output
	logger   output.Logger
	errs     *relayerrors.ErrorHandler
	db       *database.DB // nil when the transcript is disabled
	engine   *irc.Engine
	client   *irc.Client
	shutdown *shutdown.Handler
}

// loadOutput reads the configuration and sets up terminal and file logging
func loadOutput() (*config.Config, *output.Output, error) {
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, nil, err
	}

	out, err := output.NewOutput(cfg.Logging.ErrorLog, cfg.Logging.MaxLogSizeMB, cfg.Logging.MaxLogFiles)
	if err != nil {
		return nil, nil, relayerrors.NewConfigError("cannot set up logging", err)
	}
	return cfg, out, nil
}

// openDatabase opens the transcript store, or returns nil if it is disabled
func openDatabase(cfg *config.Config, logger output.Logger) (*database.DB, error) {
	if !cfg.Database.Transcript {
		return nil, nil
	}
	db, err := database.New(cfg.Database.Path, cfg.Database.WALMode)
	if err != nil {
		return nil, err
	}
	logger.Success("Transcript database %s ready", cfg.Database.Path)
	return db, nil
}

// newSession builds the engine and the shutdown sequence around it. The
// session ends when the engine disconnects; there is no reconnect.
func newSession() (*session, error) {
	cfg, out, err := loadOutput()
	if err != nil {
		return nil, err
	}
	logger := out.Logger
	logger.Info("relay %s - starting", Version)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	engine, err := irc.NewEngine(irc.ConfigFrom(cfg), logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		out:      out,
		logger:   logger,
		errs:     relayerrors.NewErrorHandler(out),
		db:       db,
		engine:   engine,
		client:   irc.NewClient(engine),
		shutdown: shutdown.NewHandler(logger, cfg.Limits.GetCloseTimeoutDuration()+2*time.Second),
	}

	if db != nil {
		s.shutdown.Register("database", db.Close)
	}
	s.shutdown.Register("engine", func() error {
		if state := engine.State(); state == irc.StateDisconnected {
			return nil
		}
		err := engine.Close()
		if errors.Is(err, irc.ErrNotOpen) {
			return nil
		}
		return err
	})

	engine.AddListener(irc.EngineListenerFunc(s.handleEngineEvent))
	return s, nil
}

func (s *session) handleEngineEvent(ev irc.EngineEvent) {
	switch ev.Kind {
	case irc.EventStatus:
		if ev.Err == nil {
			s.logger.Info("%s", ev.Message)
			return
		}
		if relayerrors.IsFatal(ev.Err) {
			s.logSessionError(ev.Err)
		}
	case irc.EventDisconnected:
		if ev.Err != nil {
			s.logSessionError(ev.Err)
		}
		s.shutdown.Request()
	}
}

// logSessionError writes a fatal engine error to the error log file. The
// engine has already reported it on the terminal.
func (s *session) logSessionError(err error) {
	if s.out.ErrorLogger == nil {
		return
	}
	errorType := string(relayerrors.ErrorTypeUnknown)
	message := err.Error()
	cause := err
	if engineErr, ok := relayerrors.AsEngineError(err); ok {
		errorType = string(engineErr.Type)
		message = engineErr.Message
		cause = engineErr.Err
	}
	if logErr := s.out.ErrorLogger.LogSessionError(errorType, message, cause, s.engine.SessionID()); logErr != nil {
		s.logger.Error("Failed to write to error log: %v", logErr)
	}
}

// fail reports err through the error handler and returns it for cobra
func (s *session) fail(err error) error {
	return errors.New(s.errs.Handle(err))
}
