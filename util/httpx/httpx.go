// Package httpx holds the shared outbound HTTP client used by the
// Xendit and push-notification integrations.
package httpx

import (
	"net"
	"net/http"
	"time"
)

// Xendit invoice creation is on the booking request path, so the
// overall timeout stays short enough to fail the request instead of
// hanging it.
const requestTimeout = 10 * time.Second

var defaultClient = &http.Client{
	Timeout: requestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        64,
		MaxConnsPerHost:     64,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	},
}

func Client() *http.Client { return defaultClient }
