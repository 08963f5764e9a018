package transport

import (
	"net"
	"time"

	"github.com/indigo-web/restcore/config"
)

// Client wraps a connection with a reusable read buffer and the ability to return
// an unconsumed tail of a read back to the stream.
type Client interface {
	Read() ([]byte, error)
	Pushback([]byte)
	Write([]byte) (int, error)
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn         net.Conn
	buff         []byte
	pending      []byte
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewClient(conn net.Conn, cfg config.NET, buff []byte) Client {
	return &client{
		buff:         buff,
		conn:         conn,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. The returned
// slice is valid only until the next call. Every read is limited by the read timeout.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buff)
	return c.buff[:n], err
}

// Pushback preserves a chunk of data from previous read for the next read.
func (c *client) Pushback(b []byte) {
	c.pending = b
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Write writes data into the underlying connection. The whole write must complete
// within the write timeout.
func (c *client) Write(b []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return 0, err
	}

	return c.conn.Write(b)
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
