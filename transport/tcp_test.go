package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/indigo-web/restcore/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func bind(t *testing.T) *TCP {
	tcp := NewTCP(zerolog.Nop())
	require.NoError(t, tcp.Bind(0, 16))
	return tcp
}

func TestTCP(t *testing.T) {
	t.Run("accept and stop", func(t *testing.T) {
		tcp := bind(t)
		accepted := make(chan net.Conn, 1)
		listenErr := make(chan error, 1)

		go func() {
			listenErr <- tcp.Listen(func(conn net.Conn) bool {
				accepted <- conn
				return true
			})
		}()

		conn, err := net.Dial("tcp4", tcp.Addr().String())
		require.NoError(t, err)
		defer conn.Close()

		select {
		case server := <-accepted:
			require.NoError(t, server.Close())
		case <-time.After(5 * time.Second):
			require.Fail(t, "connection wasn't accepted")
		}

		tcp.Stop()
		tcp.Stop()
		tcp.Wait()
		require.NoError(t, <-listenErr)
	})

	t.Run("refused connection is closed", func(t *testing.T) {
		tcp := bind(t)
		go func() {
			_ = tcp.Listen(func(net.Conn) bool {
				return false
			})
		}()
		defer func() {
			tcp.Stop()
			tcp.Wait()
		}()

		conn, err := net.Dial("tcp4", tcp.Addr().String())
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, err = conn.Read(make([]byte, 1))
		require.Error(t, err)
	})

	t.Run("backlog queues while the callback blocks", func(t *testing.T) {
		tcp := bind(t)
		release := make(chan struct{})
		accepted := make(chan net.Conn, 3)
		go func() {
			_ = tcp.Listen(func(conn net.Conn) bool {
				accepted <- conn
				<-release
				return true
			})
		}()

		var clients []net.Conn
		for range 3 {
			conn, err := net.Dial("tcp4", tcp.Addr().String())
			require.NoError(t, err)
			clients = append(clients, conn)
		}

		<-accepted
		require.Len(t, accepted, 0)
		close(release)

		for range 2 {
			select {
			case <-accepted:
			case <-time.After(5 * time.Second):
				require.Fail(t, "queued connection wasn't accepted")
			}
		}

		for _, conn := range clients {
			_ = conn.Close()
		}

		tcp.Stop()
		tcp.Wait()
	})
}

func TestClient(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()

	client := NewClient(server, config.Default().NET, make([]byte, 16))
	go func() {
		_, _ = peer.Write([]byte("Hello, world"))
	}()

	data, err := client.Read()
	require.NoError(t, err)
	require.Equal(t, "Hello, world", string(data))

	client.Pushback(data[7:])
	data, err = client.Read()
	require.NoError(t, err)
	require.Equal(t, "world", string(data))

	go func() {
		buff := make([]byte, 5)
		_, _ = io.ReadFull(peer, buff)
	}()
	n, err := client.Write([]byte("pong!"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, client.Close())
}
