package check

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/verimail/verimail/types"
)

// SMTPConfig is the SMTP prober configuration.
type SMTPConfig struct {
	// FromDomain is presented in HELO and as the MAIL FROM domain.
	FromDomain string
	// Timeout covers the whole dialogue: connect plus every
	// command/response round trip. Default: 5s.
	Timeout time.Duration
	// Port is the SMTP port. Default: "25".
	Port string
	// ProxyAddr optionally routes the probe through a SOCKS5 proxy
	// (host:port). Probes fail rather than fall back to a direct
	// connection when the proxy is unreachable.
	ProxyAddr string
	// Dial is injectable for testing. Defaults to net.DialTimeout or
	// the SOCKS5 dialer when ProxyAddr is set.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

// ProbeResult is the outcome of one envelope dialogue.
type ProbeResult struct {
	Deliverable  types.Deliverability `json:"deliverable"`
	CatchAll     bool                 `json:"catch_all"`
	Banner       string               `json:"banner,omitempty"`
	Response     string               `json:"response,omitempty"`
	TLSSupported bool                 `json:"tls_supported"`
	Reason       string               `json:"reason,omitempty"`
}

// SMTPProber drives a remote mail server through the envelope dialogue
// (HELO, MAIL FROM, RCPT TO, never DATA) to test whether the target
// recipient is accepted, and optionally whether the server is a
// catch-all. Each probe opens its own connection; connections are
// never reused across validations.
type SMTPProber struct {
	cfg SMTPConfig
}

func NewSMTPProber(cfg SMTPConfig) *SMTPProber {
	if cfg.FromDomain == "" {
		cfg.FromDomain = "verimail.local"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.Dial == nil {
		if cfg.ProxyAddr != "" {
			cfg.Dial = socks5Dial(cfg.ProxyAddr)
		} else {
			cfg.Dial = net.DialTimeout
		}
	}
	return &SMTPProber{cfg: cfg}
}

// Probe runs the envelope dialogue against mxHost for email at domain.
// checkCatchAll additionally probes a random recipient after the
// target is accepted.
func (p *SMTPProber) Probe(email, domain, mxHost string, checkCatchAll bool) ProbeResult {
	conn, err := p.cfg.Dial("tcp", net.JoinHostPort(mxHost, p.cfg.Port), p.cfg.Timeout)
	if err != nil {
		return failure(err)
	}
	defer conn.Close()

	// One deadline covers the whole dialogue.
	if err := conn.SetDeadline(time.Now().Add(p.cfg.Timeout)); err != nil {
		return failure(err)
	}

	var res ProbeResult
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	code, banner, err := readResponse(r)
	if err != nil {
		return failure(err)
	}
	res.Banner = banner
	res.TLSSupported = sniffTLS(banner)
	if code != 220 {
		res.Deliverable = types.DeliverableUnknown
		res.Reason = fmt.Sprintf("unexpected banner: %s", banner)
		return res
	}

	code, msg, err := command(r, w, "HELO "+p.cfg.FromDomain)
	if err != nil {
		return failure(err)
	}
	if code/100 != 2 {
		res.Deliverable = types.DeliverableUnknown
		res.Reason = fmt.Sprintf("HELO rejected: %s", msg)
		return res
	}
	if !res.TLSSupported {
		res.TLSSupported = sniffTLS(msg)
	}

	code, msg, err = command(r, w, fmt.Sprintf("MAIL FROM:<verify@%s>", p.cfg.FromDomain))
	if err != nil {
		return failure(err)
	}
	if code/100 != 2 {
		res.Deliverable = types.DeliverableUnknown
		res.Reason = fmt.Sprintf("MAIL FROM rejected: %s", msg)
		return res
	}

	code, msg, err = command(r, w, fmt.Sprintf("RCPT TO:<%s>", email))
	if err != nil {
		return failure(err)
	}
	res.Response = msg
	switch {
	case code/100 == 2:
		res.Deliverable = types.DeliverableYes
	case code/100 == 5:
		res.Deliverable = types.DeliverableNo
		res.Reason = fmt.Sprintf("recipient rejected: %s", msg)
	default:
		// Greylisting and other temporary conditions: the dialogue
		// completed without a definitive accept or reject.
		res.Deliverable = types.DeliverableUnknown
		res.Reason = msg
	}

	if res.Deliverable == types.DeliverableYes && checkCatchAll {
		probe := fmt.Sprintf("nonexistent-%d@%s", time.Now().UnixMilli(), domain)
		if code, _, err = command(r, w, "RCPT TO:<"+probe+">"); err == nil && code/100 == 2 {
			res.CatchAll = true
		}
	}

	// Best-effort QUIT; the verdict is already decided.
	_, _ = w.WriteString("QUIT\r\n")
	_ = w.Flush()

	return res
}

// failure maps transport-level errors onto the no verdict, with the
// timeout class called out separately.
func failure(err error) ProbeResult {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ProbeResult{Deliverable: types.DeliverableNo, Reason: "timeout"}
	}
	return ProbeResult{Deliverable: types.DeliverableNo, Reason: fmt.Sprintf("connection error: %v", err)}
}

func command(r *bufio.Reader, w *bufio.Writer, cmd string) (int, string, error) {
	if _, err := w.WriteString(cmd + "\r\n"); err != nil {
		return 0, "", err
	}
	if err := w.Flush(); err != nil {
		return 0, "", err
	}
	return readResponse(r)
}

// readResponse reads a (possibly multi-line) SMTP response and returns
// its code and the joined text.
func readResponse(r *bufio.Reader) (int, string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, "", fmt.Errorf("read SMTP response: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", errors.New("SMTP response line too short")
		}
		lines = append(lines, line)
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}
	last := lines[len(lines)-1]
	var code int
	if _, err := fmt.Sscanf(last[:3], "%d", &code); err != nil {
		return 0, "", fmt.Errorf("invalid SMTP response code %q: %w", last[:3], err)
	}
	return code, strings.Join(lines, " "), nil
}

// sniffTLS is a hint only: the banner advertising STARTTLS does not
// prove a negotiable session, and no upgrade is attempted.
func sniffTLS(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "starttls") || strings.Contains(s, "tls")
}

// socks5Dial adapts a SOCKS5 proxy into the prober's dial shape.
// There is no fallback to a direct connection.
func socks5Dial(addr string) func(network, address string, timeout time.Duration) (net.Conn, error) {
	return func(network, address string, timeout time.Duration) (net.Conn, error) {
		d, err := proxy.SOCKS5("tcp", addr, nil, &net.Dialer{Timeout: timeout})
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		conn, err := d.Dial(network, address)
		if err != nil {
			return nil, fmt.Errorf("socks5 connect %s: %w", address, err)
		}
		return conn, nil
	}
}
