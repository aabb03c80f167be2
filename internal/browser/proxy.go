package browser

import (
	"fmt"
	"net/url"
	"os"

	"github.com/playwright-community/playwright-go"
)

// NewProxy builds the launch proxy for the browser. With no configured
// proxy it falls back to HTTPS_PROXY, HTTP_PROXY and NO_PROXY; nil means
// connect directly.
func NewProxy(httpProxy, bypass string) (*playwright.Proxy, error) {
	if httpProxy == "" {
		httpProxy = firstEnv("HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy")
		if bypass == "" {
			bypass = firstEnv("NO_PROXY", "no_proxy")
		}
	}
	if httpProxy == "" {
		return nil, nil
	}

	parsed, err := url.Parse(httpProxy)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q", httpProxy)
	}

	proxy := &playwright.Proxy{Server: parsed.Scheme + "://" + parsed.Host}
	if parsed.User != nil {
		proxy.Username = playwright.String(parsed.User.Username())
		if pw, ok := parsed.User.Password(); ok {
			proxy.Password = playwright.String(pw)
		}
	}
	if bypass != "" {
		proxy.Bypass = playwright.String(bypass)
	}
	return proxy, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
