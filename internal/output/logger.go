package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger defines the interface for colored terminal output
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	ChannelMessage(channel, nick, message string)
	ChannelAction(channel, nick, action string)
	PrivateMessage(nick, message string)
}

// ColorLogger implements Logger with colored terminal output
type ColorLogger struct {
	out          io.Writer
	infoColor    *color.Color
	successColor *color.Color
	warningColor *color.Color
	errorColor   *color.Color
	channelColor *color.Color
	pmColor      *color.Color
	nickColor    *color.Color
}

// NewColorLogger creates a ColorLogger writing to stdout
func NewColorLogger() *ColorLogger {
	return NewColorLoggerTo(color.Output)
}

// NewColorLoggerTo creates a ColorLogger writing to w
func NewColorLoggerTo(w io.Writer) *ColorLogger {
	if w == nil {
		w = os.Stdout
	}
	return &ColorLogger{
		out:          w,
		infoColor:    color.New(color.FgCyan),
		successColor: color.New(color.FgGreen, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		errorColor:   color.New(color.FgRed, color.Bold),
		channelColor: color.New(color.FgBlue, color.Bold),
		pmColor:      color.New(color.FgMagenta, color.Bold),
		nickColor:    color.New(color.FgGreen),
	}
}

func (l *ColorLogger) line(c *color.Color, level, format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = c.Fprintf(l.out, "[%s] %s: %s\n", timestamp, level, message)
}

// Info prints an informational message in cyan
func (l *ColorLogger) Info(format string, args ...interface{}) {
	l.line(l.infoColor, "INFO", format, args...)
}

// Success prints a success message in bold green
func (l *ColorLogger) Success(format string, args ...interface{}) {
	l.line(l.successColor, "SUCCESS", format, args...)
}

// Warning prints a warning message in bold yellow
func (l *ColorLogger) Warning(format string, args ...interface{}) {
	l.line(l.warningColor, "WARNING", format, args...)
}

// Error prints an error message in bold red
func (l *ColorLogger) Error(format string, args ...interface{}) {
	l.line(l.errorColor, "ERROR", format, args...)
}

// ChannelMessage prints a channel message
// Format: [HH:MM:SS] #channel <nick> message
func (l *ColorLogger) ChannelMessage(channel, nick, message string) {
	timestamp := time.Now().Format("15:04:05")
	_, _ = fmt.Fprintf(l.out, "[%s] ", timestamp)
	_, _ = l.channelColor.Fprintf(l.out, "%s ", channel)
	_, _ = l.nickColor.Fprintf(l.out, "<%s> ", nick)
	_, _ = fmt.Fprintf(l.out, "%s\n", message)
}

// ChannelAction prints a /me action
// Format: [HH:MM:SS] #channel * nick action
func (l *ColorLogger) ChannelAction(channel, nick, action string) {
	timestamp := time.Now().Format("15:04:05")
	_, _ = fmt.Fprintf(l.out, "[%s] ", timestamp)
	_, _ = l.channelColor.Fprintf(l.out, "%s ", channel)
	_, _ = l.nickColor.Fprintf(l.out, "* %s ", nick)
	_, _ = fmt.Fprintf(l.out, "%s\n", action)
}

// PrivateMessage prints a private message with distinct color formatting
// Format: [HH:MM:SS] PM from nick: message
func (l *ColorLogger) PrivateMessage(nick, message string) {
	timestamp := time.Now().Format("15:04:05")
	_, _ = fmt.Fprintf(l.out, "[%s] ", timestamp)
	_, _ = l.pmColor.Fprintf(l.out, "PM from ")
	_, _ = l.nickColor.Fprintf(l.out, "%s: ", nick)
	_, _ = fmt.Fprintf(l.out, "%s\n", message)
}

// NopLogger discards everything. Used by tests and library callers that
// bring their own listeners.
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{}) {}
func (NopLogger) Success(string, ...interface{}) {}
func (NopLogger) Warning(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) ChannelMessage(string, string, string) {}
func (NopLogger) ChannelAction(string, string, string) {}
func (NopLogger) PrivateMessage(string, string) {}
