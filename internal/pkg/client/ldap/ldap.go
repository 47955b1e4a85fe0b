package ldap

import (
    "crypto/tls"
    "crypto/x509"
    "fmt"
    "net"
    "os"
    "time"

    gldap "github.com/go-ldap/ldap/v3"

    "gridtools/config"
)

// Client wraps an established LDAP connection.
type Client struct {
    Conn         *gldap.Conn
    BaseDN       string
    UsernameAttr string
}

// Close closes the underlying LDAP connection.
func (c *Client) Close() {
    if c != nil && c.Conn != nil {
        c.Conn.Close()
    }
}

// Package-level default client for convenience wiring.
var defaultClient *Client

// SetDefault sets the package-level default LDAP client.
func SetDefault(c *Client) { defaultClient = c }

// Default returns the package-level default LDAP client.
func Default() *Client { return defaultClient }

// New creates and binds an LDAP client connection based on the provided config.
// It supports plain LDAP, LDAPS, and STARTTLS, optional custom CAs and client certs,
// and connect/read timeouts.
func New(cfg config.LDAP) (*Client, error) {
	// Build TLS config if any TLS-related options are set.
	tlsCfg, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, err
	}

	// Determine scheme and address.
	scheme := "ldap"
	if cfg.UseTLS {
		scheme = "ldaps"
	}
	addr := fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)

	// Build dial options with optional TLS and timeouts.
	var opts []gldap.DialOpt
	if tlsCfg != nil {
		opts = append(opts, gldap.DialWithTLSConfig(tlsCfg))
	}
	if d := connectDialer(cfg); d != nil {
		opts = append(opts, gldap.DialWithDialer(d))
	}

	// Dial the server.
	conn, err := gldap.DialURL(addr, opts...)
	if err != nil {
		return nil, err
	}

	// If requested, upgrade to TLS via STARTTLS (not needed when using LDAPS).
	if cfg.StartTLS && !cfg.UseTLS {
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			return nil, err
		}
	}

	// Apply read timeout if provided.
	if rt := parseDuration(cfg.ReadTimeout); rt > 0 {
		conn.SetTimeout(rt)
	}

	// Perform bind if credentials are provided.
	if cfg.BindDN != "" || cfg.BindPassword != "" {
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			conn.Close()
			return nil, err
		}
	}

    usernameAttr := "uid"
    return &Client{Conn: conn, BaseDN: cfg.BaseDN, UsernameAttr: usernameAttr}, nil
}

// buildTLSConfig constructs a tls.Config based on config.LDAP.
// Returns nil if no TLS options are needed and UseTLS/StartTLS are false.
func buildTLSConfig(cfg config.LDAP) (*tls.Config, error) {
	needsTLS := cfg.UseTLS || cfg.StartTLS || cfg.InsecureSkipVerify || cfg.RootCAFile != "" || cfg.ClientCertFile != "" || cfg.ClientKeyFile != "" || cfg.ServerName != ""
	if !needsTLS {
		return nil, nil
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // configurable for testing/non-prod
	}
	if cfg.ServerName != "" {
		tlsCfg.ServerName = cfg.ServerName
	}

	// Load custom Root CA if provided.
	if cfg.RootCAFile != "" {
		pem, err := os.ReadFile(cfg.RootCAFile)
		if err != nil {
			return nil, err
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if ok := pool.AppendCertsFromPEM(pem); !ok {
			return nil, fmt.Errorf("failed to append Root CA from %s", cfg.RootCAFile)
		}
		tlsCfg.RootCAs = pool
	}

	// Load client certificate if provided.
	if cfg.ClientCertFile != "" && cfg.ClientKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertFile, cfg.ClientKeyFile)
		if err != nil {
			return nil, err
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	return tlsCfg, nil
}

// connectDialer builds a net.Dialer with the configured timeout.
func connectDialer(cfg config.LDAP) *net.Dialer {
	to := parseDuration(cfg.ConnectTimeout)
	if to <= 0 {
		return nil
	}
	return &net.Dialer{Timeout: to}
}

// parseDuration returns 0 on empty or invalid duration strings.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// FindUserDN resolves a username to its entry DN below BaseDN.
func (c *Client) FindUserDN(username string) (string, error) {
    if c == nil || c.Conn == nil {
        return "", fmt.Errorf("ldap client not initialized")
    }
    filter := fmt.Sprintf("(%s=%s)", c.UsernameAttr, gldap.EscapeFilter(username))
    req := gldap.NewSearchRequest(
        c.BaseDN,
        gldap.ScopeWholeSubtree,
        gldap.NeverDerefAliases,
        0, 0, false,
        filter,
        []string{"dn"},
        nil,
    )
    resp, err := c.Conn.Search(req)
    if err != nil {
        return "", err
    }
    if len(resp.Entries) == 0 {
        return "", fmt.Errorf("user %s not found under %s", username, c.BaseDN)
    }
    if len(resp.Entries) > 1 {
        return "", fmt.Errorf("user %s is ambiguous: %d entries", username, len(resp.Entries))
    }
    return resp.Entries[0].DN, nil
}

// SetUserPassword resets a user's password via the password modify extended
// operation. The bind identity must have write access to userPassword.
func (c *Client) SetUserPassword(username, newPassword string) error {
    if c == nil || c.Conn == nil {
        return fmt.Errorf("ldap client not initialized")
    }
    dn, err := c.FindUserDN(username)
    if err != nil {
        return err
    }
    req := gldap.NewPasswordModifyRequest(dn, "", newPassword)
    if _, err := c.Conn.PasswordModify(req); err != nil {
        return fmt.Errorf("password modify for %s failed: %w", dn, err)
    }
    return nil
}
