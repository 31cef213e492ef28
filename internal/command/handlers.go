package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/tonycui/spatio/internal/reply"
	"github.com/tonycui/spatio/internal/spatioerr"
	"github.com/tonycui/spatio/internal/store"
)

func handlePing(_ context.Context, _ *store.Database, _ []string) reply.Reply {
	return reply.SimpleString("PONG")
}

// handleHello replies with the array-of-pairs handshake shape real
// Redis clients expect before issuing further commands, recovered
// from the original implementation's greeting.
func handleHello(_ context.Context, _ *store.Database, _ []string) reply.Reply {
	pairs := []string{
		"server", "spatio",
		"version", "1.0.0",
		"proto", "2",
		"mode", "standalone",
		"role", "master",
	}
	items := make([]reply.Reply, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, reply.BulkString(p))
	}
	return reply.Array(items)
}

func handleSet(ctx context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) != 3 {
		return arityError("SET", 3, len(args))
	}
	collection, key, geojson := args[0], args[1], args[2]
	if err := db.Set(ctx, collection, key, geojson); err != nil {
		return errReply(err)
	}
	return reply.SimpleString("OK")
}

func handleGet(ctx context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) != 2 {
		return arityError("GET", 2, len(args))
	}
	raw, ok, err := db.Get(ctx, args[0], args[1])
	if err != nil {
		return errReply(err)
	}
	if !ok {
		return reply.Nil()
	}
	return reply.BulkString(raw)
}

func handleDelete(ctx context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) != 2 {
		return arityError("DELETE", 2, len(args))
	}
	removed, err := db.Delete(ctx, args[0], args[1])
	if err != nil {
		return errReply(err)
	}
	return reply.Integer(boolToInt(removed))
}

func handleDrop(ctx context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) != 1 {
		return arityError("DROP", 1, len(args))
	}
	removed, err := db.Drop(ctx, args[0])
	if err != nil {
		return errReply(err)
	}
	return reply.Integer(boolToInt(removed))
}

func handleFlushAll(ctx context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) != 0 {
		return arityError("FLUSHDB", 0, len(args))
	}
	if err := db.FlushAll(ctx); err != nil {
		return errReply(err)
	}
	return reply.SimpleString("OK")
}

func handleKeys(_ context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) != 0 {
		return arityError("KEYS", 0, len(args))
	}
	names := db.Keys()
	items := make([]reply.Reply, 0, len(names))
	for _, n := range names {
		items = append(items, reply.BulkString(n))
	}
	return reply.Array(items)
}

// handleIntersects and handleWithin share a shape: `<collection>
// <geojson> [WITHKEYS]`, differing only in the store method invoked.
func handleIntersects(ctx context.Context, db *store.Database, args []string) reply.Reply {
	collection, geojson, withKeys, err := parseSpatialQueryArgs("INTERSECTS", args)
	if err != nil {
		return errReply(err)
	}
	matches, err := db.Intersects(ctx, collection, geojson)
	if err != nil {
		return errReply(err)
	}
	return matchesReply(matches, withKeys)
}

func handleWithin(ctx context.Context, db *store.Database, args []string) reply.Reply {
	collection, geojson, withKeys, err := parseSpatialQueryArgs("WITHIN", args)
	if err != nil {
		return errReply(err)
	}
	matches, err := db.Within(ctx, collection, geojson)
	if err != nil {
		return errReply(err)
	}
	return matchesReply(matches, withKeys)
}

func parseSpatialQueryArgs(cmd string, args []string) (collection, geojson string, withKeys bool, err error) {
	switch len(args) {
	case 2:
		return args[0], args[1], false, nil
	case 3:
		if !strings.EqualFold(args[2], "WITHKEYS") {
			return "", "", false, spatioerr.InvalidArgument("unrecognized modifier %q for %s", args[2], cmd)
		}
		return args[0], args[1], true, nil
	default:
		return "", "", false, spatioerr.InvalidArgument("wrong number of arguments for '%s' command. Expected 2, got %d", cmd, len(args))
	}
}

func matchesReply(matches []store.Match, withKeys bool) reply.Reply {
	if withKeys {
		items := make([]reply.Reply, 0, len(matches)*2)
		for _, m := range matches {
			items = append(items, reply.BulkString(m.Key), reply.BulkString(m.GeoJSON))
		}
		return reply.Array(items)
	}
	items := make([]reply.Reply, 0, len(matches))
	for _, m := range matches {
		items = append(items, reply.BulkString(m.GeoJSON))
	}
	return reply.Array(items)
}

// handleNearby parses `<collection> POINT <lon> <lat> [COUNT k]
// [RADIUS meters] [WITHKEYS]` (§4.6). By default the reply is an array
// of per-match [key, geojson, distance] arrays; with the recovered
// WITHKEYS modifier it is one flat interleaved [key, geojson, distance,
// ...] array.
func handleNearby(ctx context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) < 4 || !strings.EqualFold(args[1], "POINT") {
		return arityError("NEARBY", 4, len(args))
	}
	collection := args[0]
	lon, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return errReply(spatioerr.InvalidArgument("longitude %q is not numeric", args[2]))
	}
	lat, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return errReply(spatioerr.InvalidArgument("latitude %q is not numeric", args[3]))
	}

	q := store.NearbyQuery{Lon: lon, Lat: lat}
	withKeys := false

	rest := args[4:]
	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(rest[i]) {
		case "COUNT":
			if i+1 >= len(rest) {
				return errReply(spatioerr.InvalidArgument("COUNT requires a value"))
			}
			i++
			n, err := strconv.Atoi(rest[i])
			if err != nil || n < 0 {
				return errReply(spatioerr.InvalidArgument("COUNT %q is not a non-negative integer", rest[i]))
			}
			q.Count, q.HasCount = n, true
		case "RADIUS":
			if i+1 >= len(rest) {
				return errReply(spatioerr.InvalidArgument("RADIUS requires a value"))
			}
			i++
			r, err := strconv.ParseFloat(rest[i], 64)
			if err != nil || r < 0 {
				return errReply(spatioerr.InvalidArgument("RADIUS %q is not a non-negative number", rest[i]))
			}
			q.RadiusMeters, q.HasRadius = r, true
		case "WITHKEYS":
			withKeys = true
		default:
			return errReply(spatioerr.InvalidArgument("unrecognized modifier %q for NEARBY", rest[i]))
		}
	}

	if !q.HasCount && !q.HasRadius {
		return errReply(spatioerr.InvalidArgument("NEARBY requires COUNT or RADIUS"))
	}

	matches, err := db.Nearby(ctx, collection, q)
	if err != nil {
		return errReply(err)
	}
	return nearbyReply(matches, withKeys)
}

func nearbyReply(matches []store.Match, withKeys bool) reply.Reply {
	if withKeys {
		items := make([]reply.Reply, 0, len(matches)*3)
		for _, m := range matches {
			items = append(items, reply.BulkString(m.Key), reply.BulkString(m.GeoJSON),
				reply.BulkString(strconv.FormatFloat(m.DistanceMeters, 'f', -1, 64)))
		}
		return reply.Array(items)
	}
	items := make([]reply.Reply, 0, len(matches))
	for _, m := range matches {
		items = append(items, reply.Array([]reply.Reply{
			reply.BulkString(m.Key),
			reply.BulkString(m.GeoJSON),
			reply.BulkString(strconv.FormatFloat(m.DistanceMeters, 'f', -1, 64)),
		}))
	}
	return reply.Array(items)
}

// handleStats is read-only server introspection recovered from the
// original's CLI formatter — no AOL record.
func handleStats(ctx context.Context, db *store.Database, args []string) reply.Reply {
	if len(args) != 0 {
		return arityError("STATS", 0, len(args))
	}
	stats, err := db.Stats(ctx)
	if err != nil {
		return errReply(err)
	}
	return reply.Array([]reply.Reply{
		reply.BulkString("collections"), reply.Integer(int64(stats.Collections)),
		reply.BulkString("items"), reply.Integer(int64(stats.Items)),
		reply.BulkString("aof_enabled"), reply.Integer(boolToInt(stats.AofEnabled)),
		reply.BulkString("aof_sync"), reply.BulkString(stats.AofSync),
	})
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
