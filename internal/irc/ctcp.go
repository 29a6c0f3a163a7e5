package irc

import (
	"fmt"
	"runtime"
	"strings"

	"gopkg.in/irc.v4"
)

const ctcpDelim = "\x01"

// clientInfoReply lists the client-info queries the engine answers
const clientInfoReply = "Supported queries are VERSION and SOURCE"

// answerClientQuery writes the NOTICE reply for a VERSION, SOURCE or
// CLIENTINFO request. Replies bypass the flood limiter.
func (e *Engine) answerClientQuery(ev ClientQueryEvent) {
	var response string
	switch ev.Query {
	case "VERSION":
		response = e.versionString()
	case "SOURCE":
		response = ":" + e.cfg.SourceURL
	case "CLIENTINFO":
		response = ":" + clientInfoReply
	default:
		return
	}

	e.logger.Info("CTCP %s request from %s", ev.Query, ev.Nick)
	e.sendCTCPReply(ev.Nick, ev.Query, response)
}

// versionString formats the VERSION reply as name:version:environment
func (e *Engine) versionString() string {
	return fmt.Sprintf("%s:%s:Go %s %s/%s",
		e.cfg.AppName,
		e.cfg.AppVersion,
		strings.TrimPrefix(runtime.Version(), "go"),
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// sendCTCPReply sends a CTCP reply via NOTICE
func (e *Engine) sendCTCPReply(target, command, response string) {
	e.conn.WriteMessage(&irc.Message{
		Command: "NOTICE",
		Params:  []string{target, FormatCTCPMessage(command, response)},
	})
}

// FormatCTCPMessage formats a CTCP message with proper delimiters
func FormatCTCPMessage(command, args string) string {
	if args == "" {
		return ctcpDelim + command + ctcpDelim
	}
	return ctcpDelim + command + " " + args + ctcpDelim
}

// IsCTCPMessage checks if a message is a CTCP message
func IsCTCPMessage(message string) bool {
	return len(message) >= 2 && strings.HasPrefix(message, ctcpDelim) && strings.HasSuffix(message, ctcpDelim)
}

// ParseCTCPMessage extracts the command and arguments from a CTCP message
func ParseCTCPMessage(message string) (command, args string, ok bool) {
	if !IsCTCPMessage(message) {
		return "", "", false
	}

	content := message[1 : len(message)-1]
	parts := strings.SplitN(content, " ", 2)
	command = strings.ToUpper(parts[0])
	if command == "" {
		return "", "", false
	}

	if len(parts) > 1 {
		args = parts[1]
	}

	return command, args, true
}
