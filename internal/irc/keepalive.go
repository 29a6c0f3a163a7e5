package irc

import (
	"context"
	"net"
	"strconv"
	"time"

	"gopkg.in/irc.v4"
)

// keepalive PINGs the server every KeepaliveInterval. If nothing at all has
// been read for KeepaliveTimeout the socket is closed, which the read loop
// reports as a lost connection.
func (c *Connection) keepalive(ctx context.Context, conn net.Conn) {
	ticker := time.NewTicker(c.cfg.KeepaliveInterval)
	defer ticker.Stop()

	timeout := c.cfg.KeepaliveTimeout
	if timeout <= 0 {
		timeout = 2 * c.cfg.KeepaliveInterval
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if idle := c.sinceLastRead(); idle > timeout {
				c.logger.Error("Ping timeout: nothing received for %v", idle.Round(time.Second))
				_ = conn.Close()
				return
			}
			c.WriteMessage(&irc.Message{
				Command: "PING",
				Params:  []string{strconv.FormatInt(time.Now().Unix(), 10)},
			})
		}
	}
}
