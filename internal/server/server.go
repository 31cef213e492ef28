// Package server owns the TCP listener and per-connection loop: the
// external collaborator the core requires (§1) — an accept loop
// spawning one goroutine per client, each wiring the RESP codec to the
// command registry, in the teacher's listen-then-spawn-per-connection
// shape generalized from a bare byte loop to framed request/response.
package server

import (
	"context"
	"net"

	"github.com/tonycui/spatio/internal/command"
	"github.com/tonycui/spatio/internal/logging"
	"github.com/tonycui/spatio/internal/resp"
	"github.com/tonycui/spatio/internal/store"
)

// Server groups the network listener, the command registry, and the
// database every connection dispatches against.
type Server struct {
	listenAddr string
	listener   net.Listener
	registry   *command.Registry
	db         *store.Database
	log        *logging.Logger
}

// New returns a Server bound to listenAddr (not yet listening).
func New(listenAddr string, db *store.Database) *Server {
	return &Server{
		listenAddr: listenAddr,
		registry:   command.NewRegistry(),
		db:         db,
		log:        logging.New("server"),
	}
}

// ListenAndServe binds listenAddr and runs the accept loop until ctx
// is canceled or Accept fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Infof("listening on %s", s.listenAddr)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	return s.acceptLoop(ctx)
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Errorf("accept: %v", err)
			return err
		}
		go s.handleConnection(ctx, conn)
	}
}

// handleConnection loops on one client's connection: decode a request
// frame, dispatch it, encode the reply, repeat until the client
// disconnects or the frame is malformed (a ProtocolError closes the
// connection per §7).
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	dec := resp.NewReader(conn)
	enc := resp.NewWriter(conn)

	for {
		req, err := dec.ReadRequest()
		if err != nil {
			return
		}

		reply := s.registry.Dispatch(ctx, s.db, req.Name, req.Args)
		if err := enc.WriteReply(reply); err != nil {
			s.log.Warnf("write reply to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

// Close releases the listener, if bound.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
