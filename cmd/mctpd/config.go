package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/mctp/internal/responder"
)

// mctpd config.toml key mapping to responder settings.
type fileConfig struct {
	ID              string            `toml:"id"`
	Host            string            `toml:"host"`
	Port            int               `toml:"port"`
	ContentRoot     string            `toml:"content_root"`
	ReadTimeout     string            `toml:"read_timeout"`
	WriteTimeout    string            `toml:"write_timeout"`
	MaxRequestBytes int64             `toml:"max_request_bytes"`
	AdminAddr       string            `toml:"admin_addr"`
	CorsOrigins     []string          `toml:"cors_origins"`
	Routes          map[string]string `toml:"routes"`
}

// mctpd loader for TOML config with default overlay. A relative
// content_root resolves against the config file's directory.
func loadServiceConfig(path string) (responder.Config, error) {
	cfg := responder.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return responder.Config{}, fmt.Errorf("load mctpd config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return responder.Config{}, fmt.Errorf("load mctpd config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("id") {
		if id := strings.TrimSpace(raw.ID); id != "" {
			cfg.NodeID = id
		}
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		if raw.Port <= 0 || raw.Port > 65535 {
			return responder.Config{}, fmt.Errorf("load mctpd config: port %d out of range", raw.Port)
		}
		cfg.Port = raw.Port
	}
	if meta.IsDefined("content_root") {
		root := strings.TrimSpace(raw.ContentRoot)
		if root != "" && !filepath.IsAbs(root) {
			root = filepath.Join(filepath.Dir(path), root)
		}
		cfg.ContentRoot = root
	}
	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return responder.Config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if meta.IsDefined("write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteTimeout))
		if err != nil {
			return responder.Config{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.WriteTimeout = d
	}
	if meta.IsDefined("max_request_bytes") {
		cfg.MaxRequestBytes = raw.MaxRequestBytes
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("routes") {
		routes, err := normalizeRoutes(raw.Routes)
		if err != nil {
			return responder.Config{}, err
		}
		cfg.Routes = routes
	}

	return cfg.WithDefaults(), nil
}

func normalizeRoutes(in map[string]string) (responder.RouteTable, error) {
	out := make(responder.RouteTable, len(in))
	for route, doc := range in {
		r := strings.TrimSpace(route)
		d := strings.TrimSpace(doc)
		if !strings.HasPrefix(r, "/") {
			return nil, fmt.Errorf("load mctpd config: route %q must start with /", route)
		}
		if d == "" {
			return nil, fmt.Errorf("load mctpd config: route %q has empty document", route)
		}
		out[r] = d
	}
	return out, nil
}
