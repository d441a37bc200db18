// Package proxy forwards requests from the gateway to a backend. Outgoing
// requests never carry client-supplied identity metadata or the session
// cookie; the only identity a backend sees is the one the gateway resolved.
package proxy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
)

type Options struct {
	DialTimeout           time.Duration
	ResponseHeaderTimeout time.Duration
	// SessionCookie is removed from forwarded requests.
	SessionCookie string
	// Signer, when set, adds an X-User-Assertion next to the bare headers.
	Signer *identity.Signer
}

type Proxy struct {
	name   string
	rp     *httputil.ReverseProxy
	opts   Options
	logger logging.Logger
}

// New builds a proxy to target. name labels log lines.
func New(name string, target *url.URL, opts Options, logger logging.Logger) *Proxy {
	p := &Proxy{name: name, opts: opts, logger: logger.With("module", "proxy", "backend", name)}

	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			p.rewriteHeaders(pr.In, pr.Out)
		},
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: opts.DialTimeout}).DialContext,
			ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
			MaxIdleConnsPerHost:   32,
			IdleConnTimeout:       90 * time.Second,
		},
		ErrorHandler: p.handleError,
	}
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

func (p *Proxy) rewriteHeaders(in, out *http.Request) {
	identity.Strip(out.Header)

	if p.opts.SessionCookie != "" {
		out.Header.Del("Cookie")
		for _, c := range in.Cookies() {
			if c.Name != p.opts.SessionCookie {
				out.AddCookie(c)
			}
		}
	}

	ctx := in.Context()
	httpx.PropagateRequestID(ctx, out.Header)

	id, ok := identity.FromContext(ctx)
	if !ok {
		return
	}
	identity.Attach(out.Header, id)

	if p.opts.Signer != nil {
		token, err := p.opts.Signer.Sign(id)
		if err != nil {
			p.logger.Error(ctx, "identity assertion not signed", "user_id", id.UserID, "error", err)
			return
		}
		out.Header.Set(common.HeaderUserAssertion, token)
	}
}

// handleError answers 502 with a generic body. When the client went away
// there is nobody to answer; the in-flight backend call was already
// cancelled through the request context.
func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		p.logger.Info(ctx, "client disconnected", "path", r.URL.Path)
		return
	}

	p.logger.Warn(ctx, "backend unavailable", "path", r.URL.Path, "error", err)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte("Bad Gateway"))
}
