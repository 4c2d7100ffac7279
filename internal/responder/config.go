package responder

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the responder runtime configuration.
type Config struct {
	Host        string
	Port        int
	ContentRoot string
	Routes      RouteTable

	NodeID          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRequestBytes int64

	// AdminAddr enables the admin HTTP listener when non-empty.
	AdminAddr   string
	CorsOrigins []string
}

func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            9090,
		ContentRoot:     ".",
		Routes:          RouteTable{},
		NodeID:          "mctpd.local",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		MaxRequestBytes: 8 * 1024,
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
	if strings.TrimSpace(c.ContentRoot) == "" {
		c.ContentRoot = d.ContentRoot
	}
	if c.Routes == nil {
		c.Routes = d.Routes
	}
	if strings.TrimSpace(c.NodeID) == "" {
		c.NodeID = d.NodeID
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = d.MaxRequestBytes
	}
	return c
}

// Addr is the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
