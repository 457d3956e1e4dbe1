// Package probe diagnoses connectivity to HTTP endpoints step by step: proxy
// selection, DNS, TCP, TLS and finally an HTTP GET.
package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpproxy"

	"github.com/Alia5/studiogen/internal/codegen/common"
	"github.com/Alia5/studiogen/internal/collab"
)

const (
	DefaultTimeout = 5 * time.Second
	maxRedirects   = 10
)

// Step is the outcome of one check.
type Step struct {
	Name    string
	OK      bool
	Detail  string
	Elapsed time.Duration
}

// Report is everything learned about one target.
type Report struct {
	Target      string
	Proxy       string
	FinalURL    string
	Status      int
	ContentType string
	Redirects   int
	Steps       []Step
}

// OK reports whether every step succeeded.
func (r Report) OK() bool {
	for _, s := range r.Steps {
		if !s.OK {
			return false
		}
	}
	return len(r.Steps) > 0
}

// LooksLikeFeed reports whether the response declared an XML content type.
func (r Report) LooksLikeFeed() bool {
	ct := strings.ToLower(r.ContentType)
	return strings.Contains(ct, "xml") || strings.Contains(ct, "rss")
}

func (r Report) Record() collab.Record {
	steps := make([]map[string]any, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, map[string]any{
			"name":       s.Name,
			"ok":         s.OK,
			"detail":     s.Detail,
			"elapsed_ms": s.Elapsed.Milliseconds(),
		})
	}
	return collab.Record{
		"target":          r.Target,
		"ok":              r.OK(),
		"proxy":           r.Proxy,
		"final_url":       r.FinalURL,
		"status":          r.Status,
		"content_type":    r.ContentType,
		"redirects":       r.Redirects,
		"looks_like_feed": r.LooksLikeFeed(),
		"steps":           steps,
	}
}

// Prober runs the checks. The zero value is not usable; call New.
type Prober struct {
	Timeout   time.Duration
	Resolver  *net.Resolver
	TLSConfig *tls.Config
	// ProxyFunc picks the proxy for a URL, nil meaning direct.
	ProxyFunc func(*url.URL) (*url.URL, error)
	Logger    *slog.Logger
}

// New builds a Prober that takes its proxy settings from the HTTP_PROXY,
// HTTPS_PROXY and NO_PROXY environment variables.
func New(logger *slog.Logger, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		Timeout:   timeout,
		Resolver:  net.DefaultResolver,
		ProxyFunc: httpproxy.FromEnvironment().ProxyFunc(),
		Logger:    logger,
	}
}

// ProxyEnv returns the proxy settings seen in the environment.
func ProxyEnv() map[string]string {
	cfg := httpproxy.FromEnvironment()
	return map[string]string{
		"http_proxy":  cfg.HTTPProxy,
		"https_proxy": cfg.HTTPSProxy,
		"no_proxy":    cfg.NoProxy,
	}
}

// ProxyFor names the proxy used for target, or "direct".
func (p *Prober) ProxyFor(target *url.URL) (string, error) {
	if p.ProxyFunc == nil {
		return "direct", nil
	}
	u, err := p.ProxyFunc(target)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "direct", nil
	}
	return u.Redacted(), nil
}

// Probe checks target. Every step runs even when an earlier one failed, so
// the report shows the whole picture.
func (p *Prober) Probe(ctx context.Context, target string) Report {
	rep := Report{Target: target}

	u, err := url.Parse(target)
	if err == nil && ((u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "") {
		err = errors.New("expected an absolute http or https URL")
	}
	if err != nil {
		rep.Steps = append(rep.Steps, Step{Name: "parse", Detail: err.Error()})
		return rep
	}

	rep.Steps = append(rep.Steps, p.step("proxy", func() (string, error) {
		proxy, err := p.ProxyFor(u)
		rep.Proxy = proxy
		return proxy, err
	}))

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	addr := net.JoinHostPort(host, port)

	rep.Steps = append(rep.Steps, p.step("dns", func() (string, error) {
		ctx, cancel := context.WithTimeout(ctx, p.Timeout)
		defer cancel()
		addrs, err := p.Resolver.LookupHost(ctx, host)
		if err != nil {
			return "", err
		}
		return strings.Join(addrs, ", "), nil
	}))

	rep.Steps = append(rep.Steps, p.step("tcp", func() (string, error) {
		d := net.Dialer{Timeout: p.Timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return "", err
		}
		defer conn.Close()
		return conn.RemoteAddr().String(), nil
	}))

	if u.Scheme == "https" {
		rep.Steps = append(rep.Steps, p.step("tls", func() (string, error) {
			return p.handshake(ctx, host, addr)
		}))
	}

	rep.Steps = append(rep.Steps, p.step("http", func() (string, error) {
		return p.get(ctx, u, &rep)
	}))
	return rep
}

func (p *Prober) step(name string, fn func() (string, error)) Step {
	start := time.Now()
	detail, err := fn()
	s := Step{Name: name, OK: err == nil, Detail: detail, Elapsed: time.Since(start)}
	if err != nil {
		s.Detail = err.Error()
	}
	if p.Logger != nil {
		p.Logger.Debug("Probe step", "step", name, "ok", s.OK, "detail", s.Detail)
	}
	return s
}

func (p *Prober) tlsConfig(host string) *tls.Config {
	cfg := &tls.Config{}
	if p.TLSConfig != nil {
		cfg = p.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

func (p *Prober) handshake(ctx context.Context, host, addr string) (string, error) {
	d := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.Timeout},
		Config:    p.tlsConfig(host),
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return tls.VersionName(state.Version), nil
	}
	leaf := state.PeerCertificates[0]
	return fmt.Sprintf("%s; subject=%s; issuer=%s", tls.VersionName(state.Version), leaf.Subject, leaf.Issuer), nil
}

func (p *Prober) get(ctx context.Context, u *url.URL, rep *Report) (string, error) {
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if p.ProxyFunc == nil {
				return nil, nil
			}
			return p.ProxyFunc(req.URL)
		},
		TLSClientConfig: p.tlsConfig(u.Hostname()),
	}
	defer transport.CloseIdleConnections()

	client := &http.Client{
		Timeout:   p.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			rep.Redirects = len(via)
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", common.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	rep.FinalURL = resp.Request.URL.String()
	rep.Status = resp.StatusCode
	rep.ContentType = resp.Header.Get("Content-Type")
	detail := fmt.Sprintf("%s from %s", resp.Status, rep.FinalURL)
	if resp.StatusCode >= 400 {
		return "", errors.New(detail)
	}
	return detail, nil
}

// Fetch probes q.Target and returns its report as a single record.
func (p *Prober) Fetch(ctx context.Context, q collab.Query) ([]collab.Record, error) {
	if q.Target == "" {
		return nil, collab.Fatal("probe", errors.New("missing target"))
	}
	return []collab.Record{p.Probe(ctx, q.Target).Record()}, nil
}
