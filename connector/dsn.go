package connector

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

var errNoHost = errors.New("host is required")

// connURL renders cfg as a postgres:// URL. url.Userinfo escapes the
// credentials for the userinfo component, where '+' and ' ' differ.
func (cfg Config) connURL() (*url.URL, error) {
	if cfg.Host == "" {
		return nil, errNoHost
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	switch {
	case cfg.Username != "" && cfg.Password != "":
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	case cfg.Username != "":
		u.User = url.User(cfg.Username)
	}
	if cfg.Database != "" {
		u.Path = "/" + cfg.Database
	}

	q := url.Values{}
	for k, v := range cfg.Params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", wholeSeconds(cfg.ConnectTimeout))
	}
	// Encode sorts by key.
	u.RawQuery = q.Encode()
	return u, nil
}

// connect_timeout is whole seconds; anything shorter rounds up to one.
func wholeSeconds(d time.Duration) string {
	return strconv.FormatInt(max(int64(d/time.Second), 1), 10)
}
