package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/mctp/internal/logging"
	"github.com/danmuck/mctp/internal/responder"
)

func main() {
	configPath := flag.String("config", "", "path to mctpd config.toml (defaults apply when empty)")
	initPath := flag.String("init", "", "write a config template to this path and exit")
	force := flag.Bool("force", false, "overwrite an existing file with -init")
	validate := flag.Bool("validate", false, "validate -config and exit")
	flag.Parse()

	if *initPath != "" {
		if err := writeTemplate(*initPath, *force); err != nil {
			fail(err)
		}
		fmt.Printf("wrote config template to %s\n", *initPath)
		return
	}

	logging.ConfigureRuntime()

	cfg := responder.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			fail(err)
		}
		cfg = loaded
	}
	if *validate {
		fmt.Printf("config ok: addr=%s content_root=%s routes=%d\n", cfg.Addr(), cfg.ContentRoot, len(cfg.Routes))
		return
	}

	svc := responder.NewServiceWithConfig(cfg)
	if err := svc.Run(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "mctpd: %v\n", err)
	os.Exit(1)
}
