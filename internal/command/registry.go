// Package command implements the command registry: a name→handler
// map, one handler per recognized command, each validating its own
// arguments and translating store results into reply values (§4.6).
package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/tonycui/spatio/internal/reply"
	"github.com/tonycui/spatio/internal/store"
)

// Handler executes one command's logic against db, returning the
// reply to send back to the client. args excludes the command name
// itself.
type Handler func(ctx context.Context, db *store.Database, args []string) reply.Reply

// Registry dispatches an upper-cased command name to its Handler.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns a Registry with every recognized command wired.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.register("PING", handlePing)
	r.register("HELLO", handleHello)
	r.register("SET", handleSet)
	r.register("GET", handleGet)
	r.register("DELETE", handleDelete)
	r.register("DROP", handleDrop)
	r.register("FLUSHDB", handleFlushAll)
	r.register("KEYS", handleKeys)
	r.register("INTERSECTS", handleIntersects)
	r.register("WITHIN", handleWithin)
	r.register("NEARBY", handleNearby)
	r.register("STATS", handleStats)
	return r
}

func (r *Registry) register(name string, h Handler) {
	r.handlers[name] = h
}

// Dispatch looks up name (case-insensitive) and runs its Handler, or
// returns an Error reply for an unrecognized command (§4.6, §7's
// UnknownCommand disposition: reply Error, keep the connection open).
func (r *Registry) Dispatch(ctx context.Context, db *store.Database, name string, args []string) reply.Reply {
	h, ok := r.handlers[strings.ToUpper(name)]
	if !ok {
		return reply.Error("ERR unknown command '" + name + "'")
	}
	return h(ctx, db, args)
}

// arityError formats the standard "wrong number of arguments" error
// text for cmd, reporting both the expected and actual argument count
// (§4.6).
func arityError(cmd string, expected, got int) reply.Reply {
	return reply.Error("ERR wrong number of arguments for '" + cmd + "' command. Expected " +
		strconv.Itoa(expected) + ", got " + strconv.Itoa(got))
}

func errReply(err error) reply.Reply {
	return reply.Error("ERR " + err.Error())
}
