package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/restcore/transport"
)

var _ transport.Client = new(Client)

// Client returns the pieces it was initialised with one by one and io.EOF afterwards,
// unless set to loop them. It also tracks all the written data, making it thereby
// a universal mock suitable for most of the tests.
type Client struct {
	closed  bool
	loop    bool
	err     error
	pointer int
	tmp     []byte
	written []byte
	data    [][]byte
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

// LoopReads makes the client start over after the last piece instead of returning io.EOF.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailWith replaces the io.EOF returned after the last piece with a custom error.
func (c *Client) FailWith(err error) *Client {
	c.err = err
	return c
}

func (c *Client) Read() (data []byte, err error) {
	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.closed {
		return nil, io.EOF
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			if c.err != nil {
				return nil, c.err
			}

			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.tmp = takeback
}

func (c *Client) Write(p []byte) (int, error) {
	c.written = append(c.written, p...)
	return len(p), nil
}

// Written returns everything that was written so far.
func (c *Client) Written() string {
	return string(c.written)
}

func (c *Client) Conn() net.Conn {
	return nil
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}
