package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danmuck/mctp/internal/logging"
	"github.com/danmuck/mctp/internal/protocol"
	"github.com/danmuck/mctp/internal/requestor"
)

func main() {
	defaults := requestor.DefaultConfig()
	host := flag.String("host", defaults.Host, "responder host")
	port := flag.Int("port", defaults.Port, "responder port")
	timeout := flag.Duration("timeout", defaults.Timeout, "connect timeout")
	headersOnly := flag.Bool("head", false, "print status and headers only")
	flag.Parse()

	logging.ConfigureRuntime()

	path := protocol.DefaultPath
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	cfg := requestor.Config{Host: *host, Port: *port, Timeout: *timeout}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout+30*time.Second)
	defer cancel()

	resp, err := requestor.Get(ctx, cfg, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mctpget: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %s\n", resp.Status)
	for _, h := range resp.Headers {
		fmt.Printf("%s: %s\n", h.Name, h.Value)
	}
	if !*headersOnly {
		fmt.Println()
		_, _ = os.Stdout.Write(resp.Body)
	}
	if !resp.OK() {
		os.Exit(2)
	}
}
