package server

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tonycui/spatio/internal/aol"
	"github.com/tonycui/spatio/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, _, err := store.Open(store.Options{
		AofPath:       filepath.Join(t.TempDir(), "appendonly.aof"),
		AofEnabled:    true,
		AofSyncPolicy: aol.SyncAlways,
	})
	require.NoError(t, err)
	return New("127.0.0.1:0", db)
}

func TestServerRespondsToPingOverTCP(t *testing.T) {
	srv := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.listener = ln

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.acceptLoop(ctx) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", line)
}
