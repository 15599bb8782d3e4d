package testutil

import (
	"net"
	"testing"

	"pgprobe/pgprobe/internal/config"

	"github.com/jackc/pgx/v5/pgproto3"
)

// NoSSLServer starts a minimal PostgreSQL backend on a loopback port. It
// refuses SSL with 'N', accepts any startup without authentication, and
// otherwise ignores what the client sends. The returned config points at it.
func NoSSLServer(t testing.TB) config.Config {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveNoSSL(conn)
		}
	}()

	_, port, _ := net.SplitHostPort(ln.Addr().String())
	return NewConfigBuilder().WithHost("127.0.0.1").WithPort(port).Build()
}

func serveNoSSL(conn net.Conn) {
	defer conn.Close()
	backend := pgproto3.NewBackend(conn, conn)

	for {
		msg, err := backend.ReceiveStartupMessage()
		if err != nil {
			return
		}

		switch msg.(type) {
		case *pgproto3.SSLRequest, *pgproto3.GSSEncRequest:
			if _, err := conn.Write([]byte("N")); err != nil {
				return
			}
			continue
		case *pgproto3.StartupMessage:
		default:
			return
		}

		backend.Send(&pgproto3.AuthenticationOk{})
		backend.Send(&pgproto3.ParameterStatus{Name: "server_version", Value: "16.0"})
		backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
		if err := backend.Flush(); err != nil {
			return
		}
		break
	}

	for {
		msg, err := backend.Receive()
		if err != nil {
			return
		}
		if _, ok := msg.(*pgproto3.Terminate); ok {
			return
		}
	}
}
