//go:build unix

package transport

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listen opens an IPv4 TCP socket on all interfaces and puts it into the listening state
// with the exact backlog. The standard library always uses the system maximum for it,
// so the socket is set up manually and only then wrapped into a net.Listener.
func listen(port uint16, backlog int) (net.Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	unix.CloseOnExec(fd)

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("setsockopt", err)
	}

	if err = unix.Bind(fd, &unix.SockaddrInet4{Port: int(port)}); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("bind", err)
	}

	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("listen", err)
	}

	// FileListener duplicates the descriptor, so the original one is closed either way.
	file := os.NewFile(uintptr(fd), fmt.Sprintf("tcp4:%d", port))
	l, err := net.FileListener(file)
	_ = file.Close()

	return l, err
}
