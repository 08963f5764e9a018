//go:build !unix

package transport

import (
	"net"
	"strconv"
)

// listen falls back to the standard listener. The backlog can't be controlled there,
// the system default is used instead.
func listen(port uint16, _ int) (net.Listener, error) {
	return net.Listen("tcp4", ":"+strconv.Itoa(int(port)))
}
