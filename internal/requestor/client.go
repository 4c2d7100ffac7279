package requestor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/danmuck/mctp/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidPort = errors.New("requestor: port out of range")
	ErrTimeout     = errors.New("requestor: connection timed out")
	ErrTransport   = errors.New("requestor: transport failure")
)

// CallPhase names one step of a Get call.
type CallPhase string

const (
	PhaseConnecting CallPhase = "connecting"
	PhaseSending    CallPhase = "sending"
	PhaseReceiving  CallPhase = "receiving"
	PhaseParsed     CallPhase = "parsed"
	PhaseFailed     CallPhase = "failed"
)

// Dialer opens the transport connection for one call.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Client struct {
	cfg    Config
	dialer Dialer
}

func NewClient(cfg Config) (*Client, error) {
	return NewClientWithDialer(cfg, &net.Dialer{})
}

func NewClientWithDialer(cfg Config, dialer Dialer) (*Client, error) {
	cfg = cfg.WithDefaults()
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	return &Client{cfg: cfg, dialer: dialer}, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// Get issues one request for path and returns the parsed response. A
// non-200 status is a normal response, not an error. Errors match
// ErrTimeout, ErrTransport or *protocol.ParseError.
func (c *Client) Get(ctx context.Context, path string) (protocol.Response, error) {
	req := protocol.NewRequest(path)
	logger := log.With().Str("addr", c.cfg.Addr()).Str("path", req.Path).Logger()
	fail := func(err error) (protocol.Response, error) {
		logger.Debug().Str("phase", string(PhaseFailed)).Err(err).Msg("mctp.requestor")
		return protocol.Response{}, err
	}

	logger.Debug().Str("phase", string(PhaseConnecting)).Msg("mctp.requestor")
	conn, err := c.dial(ctx)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	// the caller's context stays able to abort the exchange after connect
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	logger.Debug().Str("phase", string(PhaseSending)).Msg("mctp.requestor")
	if err := protocol.WriteRequest(conn, req.Path); err != nil {
		return fail(c.transportError(ctx, "write request", err))
	}

	logger.Debug().Str("phase", string(PhaseReceiving)).Msg("mctp.requestor")
	resp, err := protocol.ReadResponse(conn, c.cfg.MaxResponseBytes)
	if err != nil {
		var perr *protocol.ParseError
		if errors.As(err, &perr) {
			return fail(err)
		}
		return fail(c.transportError(ctx, "read response", err))
	}

	logger.Debug().
		Str("phase", string(PhaseParsed)).
		Str("status", resp.Status).
		Int("bytes", len(resp.Body)).
		Msg("mctp.requestor")
	return resp, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(dialCtx, "tcp", c.cfg.Addr())
	if err == nil {
		return conn, nil
	}
	if ctx.Err() == nil && (errors.Is(dialCtx.Err(), context.DeadlineExceeded) || isTimeout(err)) {
		return nil, fmt.Errorf("%w: %s after %s: %w", ErrTimeout, c.cfg.Addr(), c.cfg.Timeout, err)
	}
	return nil, c.transportError(ctx, "dial "+c.cfg.Addr(), err)
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransport, op, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Get is a one-shot helper using cfg.
func Get(ctx context.Context, cfg Config, path string) (protocol.Response, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return protocol.Response{}, err
	}
	return c.Get(ctx, path)
}
