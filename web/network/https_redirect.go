// Package network provides listener helpers for the web server, including
// redirection of plain HTTP requests that arrive on the HTTPS port.
package network

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
)

// tlsHandshakeRecord is the first byte of every TLS client hello.
const tlsHandshakeRecord = 0x16

// RedirectListener wraps the raw listener below a TLS listener. Connections
// that start with a plain HTTP request get a redirect to https and are
// closed; TLS connections pass through untouched.
type RedirectListener struct {
	net.Listener
}

func NewRedirectListener(listener net.Listener) net.Listener {
	return &RedirectListener{Listener: listener}
}

func (l *RedirectListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &redirectConn{Conn: conn, r: bufio.NewReader(conn)}, nil
}

// redirectConn sniffs the protocol on the first read.
type redirectConn struct {
	net.Conn
	r *bufio.Reader

	once      sync.Once
	plainHTTP bool
}

func (c *redirectConn) Read(b []byte) (int, error) {
	c.once.Do(func() {
		first, err := c.r.Peek(1)
		if err == nil && first[0] != tlsHandshakeRecord {
			c.plainHTTP = true
			c.redirect()
		}
	})
	if c.plainHTTP {
		return 0, io.EOF
	}
	return c.r.Read(b)
}

func (c *redirectConn) redirect() {
	defer c.Close()
	req, err := http.ReadRequest(c.r)
	if err != nil {
		return
	}
	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", fmt.Sprintf("https://%v%v", req.Host, req.RequestURI))
	resp.Write(c.Conn)
}
