package requestor

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config defines requestor connection settings.
type Config struct {
	Host string
	Port int
	// Timeout bounds the connect phase only.
	Timeout          time.Duration
	MaxResponseBytes int64
}

func DefaultConfig() Config {
	return Config{
		Host:             "127.0.0.1",
		Port:             9090,
		Timeout:          5000 * time.Millisecond,
		MaxResponseBytes: 16 * 1024 * 1024,
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if strings.TrimSpace(c.Host) == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = d.MaxResponseBytes
	}
	return c
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
