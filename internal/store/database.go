package store

import (
	"context"
	"time"

	"github.com/tonycui/spatio/internal/aol"
	"github.com/tonycui/spatio/internal/geometry"
	"github.com/tonycui/spatio/internal/logging"
	"github.com/tonycui/spatio/internal/rtree"
	"github.com/tonycui/spatio/internal/spatioerr"
)

// Match is one query hit: the stored key, its GeoJSON text, and
// (for NEARBY) the distance in meters from the query point.
type Match struct {
	Key            string
	GeoJSON        string
	DistanceMeters float64
}

// Stats summarizes the database for the recovered STATS command: how
// many collections exist, how many items in total, and the AOF policy
// currently in effect.
type Stats struct {
	Collections int
	Items       int
	AofEnabled  bool
	AofSync     string
}

// Database is the top-level name→Collection registry plus the shared
// AOL writer every mutation records to, matching §3's {collections,
// aof} pair.
type Database struct {
	reg            *registry
	aofWriter      *aol.Writer
	aofEnabled     bool
	aofSyncName    string
	defaultTimeout time.Duration
	clock          func() uint64
	log            *logging.Logger
}

// Options configures a new Database.
type Options struct {
	AofPath        string
	AofEnabled     bool
	AofSyncPolicy  aol.SyncPolicy
	DefaultTimeout time.Duration
	// Clock stamps AOL command timestamps; tests may override it with a
	// deterministic source, production uses wall-clock nanoseconds.
	Clock func() uint64
}

func syncPolicyName(p aol.SyncPolicy) string {
	switch p {
	case aol.SyncAlways:
		return "Always"
	case aol.SyncNo:
		return "No"
	default:
		return "EverySecond"
	}
}

// Open constructs a Database, opening (and if recovery is requested,
// replaying) the AOL file named in opts. Recovery never fails startup
// (§4.5) — its outcome is returned alongside the Database so the
// caller can log a summary.
func Open(opts Options) (*Database, aol.RecoveryResult, error) {
	db := &Database{
		reg:            newRegistry(),
		aofEnabled:     opts.AofEnabled,
		aofSyncName:    syncPolicyName(opts.AofSyncPolicy),
		defaultTimeout: opts.DefaultTimeout,
		clock:          opts.Clock,
		log:            logging.New("store"),
	}

	var recovery aol.RecoveryResult
	if opts.AofEnabled {
		result, err := aol.ReadFile(opts.AofPath)
		if err != nil {
			return nil, recovery, err
		}
		recovery = result
		for _, cmd := range result.Commands {
			if err := db.applyRecovered(cmd); err != nil {
				db.log.Warnf("recovery: dropping command for %q/%q: %v", cmd.Collection, cmd.Key, err)
			}
		}
		if len(result.Errors) > 0 {
			db.log.Warnf("recovery: %d of %d lines skipped (success rate %.2f)",
				len(result.Errors), len(result.Errors)+len(result.Commands), result.SuccessRate)
		}

		w, err := aol.OpenWriter(opts.AofPath, opts.AofSyncPolicy)
		if err != nil {
			return nil, recovery, err
		}
		db.aofWriter = w
	}

	return db, recovery, nil
}

// applyRecovered replays one recovered AOL command directly into the
// store, bypassing the writer (§4.5's recovery contract).
func (db *Database) applyRecovered(cmd aol.Command) error {
	switch cmd.Cmd {
	case aol.CmdInsert:
		obj, err := geometry.ParseObject(cmd.GeoJSON)
		if err != nil {
			return err
		}
		coll := db.reg.getOrCreate(cmd.Collection, db.defaultTimeout)
		return coll.set(context.Background(), 0, cmd.Key, obj)
	case aol.CmdDelete:
		coll, ok := db.reg.get(cmd.Collection)
		if !ok {
			return nil
		}
		_, err := coll.delete(context.Background(), 0, cmd.Key)
		return err
	case aol.CmdDrop:
		db.reg.remove(cmd.Collection)
		return nil
	case aol.CmdFlushAll:
		db.reg.clear()
		return nil
	}
	return nil
}

func (db *Database) ts() uint64 {
	if db.clock != nil {
		return db.clock()
	}
	return uint64(time.Now().UnixNano())
}

// appendAof records cmd to the AOL if enabled, logging (not failing)
// on write error per §7's AofWriteFailed disposition: the in-memory
// mutation has already happened and is not rolled back.
func (db *Database) appendAof(cmd aol.Command) {
	if db.aofWriter == nil {
		return
	}
	if err := db.aofWriter.Append(cmd); err != nil {
		db.log.Errorf("AOL append failed: %v", err)
	}
}

// Close flushes the AOL writer, if any.
func (db *Database) Close() error {
	if db.aofWriter == nil {
		return nil
	}
	return db.aofWriter.Close()
}

// Set stores geojsonText under key in collection, creating the
// collection if absent. In-memory state is mutated before the AOL
// append (§4.5's write-order guarantee).
func (db *Database) Set(ctx context.Context, collection, key, geojsonText string) error {
	obj, err := geometry.ParseObject(geojsonText)
	if err != nil {
		return err
	}
	coll := db.reg.getOrCreate(collection, db.defaultTimeout)
	if err := coll.set(ctx, 0, key, obj); err != nil {
		return err
	}
	db.appendAof(aol.NewInsert(db.ts(), collection, key, geojsonText))
	return nil
}

// Get returns the stored GeoJSON text for key, or ok=false if the
// collection or key is absent.
func (db *Database) Get(ctx context.Context, collection, key string) (string, bool, error) {
	coll, ok := db.reg.get(collection)
	if !ok {
		return "", false, nil
	}
	return coll.get(ctx, 0, key)
}

// Delete removes key from collection, returning whether it was present.
func (db *Database) Delete(ctx context.Context, collection, key string) (bool, error) {
	coll, ok := db.reg.get(collection)
	if !ok {
		return false, nil
	}
	removed, err := coll.delete(ctx, 0, key)
	if err != nil {
		return false, err
	}
	if removed {
		db.appendAof(aol.NewDelete(db.ts(), collection, key))
	}
	return removed, nil
}

// Drop removes collection entirely, returning whether it existed.
func (db *Database) Drop(ctx context.Context, collection string) (bool, error) {
	removed := db.reg.remove(collection)
	if removed {
		db.appendAof(aol.NewDrop(db.ts(), collection))
	}
	return removed, nil
}

// FlushAll drops every collection, recorded as a dedicated AOL tag
// distinct from per-collection DROP (§4.4's schema keeps DROP's
// collection field a concrete name, never a wildcard).
func (db *Database) FlushAll(ctx context.Context) error {
	db.reg.clear()
	db.appendAof(aol.NewFlushAll(db.ts()))
	return nil
}

// Keys returns every collection name currently present. Order is
// unspecified (§4.6).
func (db *Database) Keys() []string {
	return db.reg.names()
}

// Intersects window-searches collection's index by geojsonText's bbox,
// then filters candidates by full geometry-geometry intersection.
func (db *Database) Intersects(ctx context.Context, collection, geojsonText string) ([]Match, error) {
	query, err := geometry.Parse([]byte(geojsonText))
	if err != nil {
		return nil, err
	}
	coll, ok := db.reg.get(collection)
	if !ok {
		return nil, nil
	}
	candidates, err := coll.windowSearch(ctx, 0, query.BBox())
	if err != nil {
		return nil, err
	}
	var out []Match
	for _, c := range candidates {
		if query.Intersects(c.Obj.Geom) {
			out = append(out, Match{Key: c.Key, GeoJSON: c.Obj.Raw})
		}
	}
	return out, nil
}

// Within window-searches collection's index by the query region's
// bbox, then filters candidates fully contained in that region.
func (db *Database) Within(ctx context.Context, collection, geojsonText string) ([]Match, error) {
	region, err := geometry.Parse([]byte(geojsonText))
	if err != nil {
		return nil, err
	}
	coll, ok := db.reg.get(collection)
	if !ok {
		return nil, nil
	}
	candidates, err := coll.windowSearch(ctx, 0, region.BBox())
	if err != nil {
		return nil, err
	}
	var out []Match
	for _, c := range candidates {
		if c.Obj.Geom.ContainedIn(region) {
			out = append(out, Match{Key: c.Key, GeoJSON: c.Obj.Raw})
		}
	}
	return out, nil
}

// NearbyQuery bundles NEARBY's parameters (§4.6): at least one of
// Count/Radius must be set.
type NearbyQuery struct {
	Lon, Lat     float64
	Count        int
	HasCount     bool
	RadiusMeters float64
	HasRadius    bool
}

// Nearby runs a best-first k-NN query against collection's index,
// returning ordered nearest-first matches with their distances.
func (db *Database) Nearby(ctx context.Context, collection string, q NearbyQuery) ([]Match, error) {
	if !q.HasCount && !q.HasRadius {
		return nil, spatioerr.InvalidArgument("NEARBY requires COUNT or RADIUS")
	}
	coll, ok := db.reg.get(collection)
	if !ok {
		return nil, nil
	}
	neighbors, err := coll.nearest(ctx, 0, rtree.KNNQuery{
		Lon: q.Lon, Lat: q.Lat,
		K: q.Count, HasK: q.HasCount,
		RadiusMeters: q.RadiusMeters, HasRadius: q.HasRadius,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Match, 0, len(neighbors))
	for _, n := range neighbors {
		raw, ok, err := coll.get(ctx, 0, n.Payload)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Match{Key: n.Payload, GeoJSON: raw, DistanceMeters: n.DistanceMeters})
	}
	return out, nil
}

// Stats reports a snapshot for the recovered STATS command.
func (db *Database) Stats(ctx context.Context) (Stats, error) {
	names := db.reg.names()
	total := 0
	for _, name := range names {
		coll, ok := db.reg.get(name)
		if !ok {
			continue
		}
		n, err := coll.len(ctx, 0)
		if err != nil {
			return Stats{}, err
		}
		total += n
	}
	return Stats{
		Collections: len(names),
		Items:       total,
		AofEnabled:  db.aofEnabled,
		AofSync:     db.aofSyncName,
	}, nil
}
