package reddit

import (
	"net/http"
	"net/url"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProxyDoer routes every request through a prefix-style proxy such as
// "https://corsproxy.io/?", appending the escaped target URL to the prefix.
type ProxyDoer struct {
	Prefix string
	Next   Doer
}

// Do rewrites the request URL and forwards it to the wrapped Doer.
func (p *ProxyDoer) Do(req *http.Request) (*http.Response, error) {
	target := req.URL.String()

	proxied, err := url.Parse(p.Prefix + url.QueryEscape(target))
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.URL = proxied
	out.Host = proxied.Host

	next := p.Next
	if next == nil {
		next = http.DefaultClient
	}
	return next.Do(out)
}
