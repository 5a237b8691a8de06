package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/muninboard/pkg/munin"
	"github.com/matzehuels/muninboard/pkg/observability"
)

// MongoDB defaults.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "muninboard"
	DefaultMongoCollection = "nodes"
)

// MongoOptions configure a MongoDB directory.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	MaxNodes   int
	Timeout    time.Duration
}

// Mongo is a directory backed by a MongoDB collection with one document per
// node. Documents are read as bson.D so the plugin, section and directive
// order written by the indexer is preserved.
type Mongo struct {
	client   *mongo.Client
	coll     *mongo.Collection
	maxNodes int64
}

// NewMongo connects to MongoDB and pings the server.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.URI == "" {
		opts.URI = DefaultMongoURI
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}

	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.Timeout > 0 {
		clientOpts.SetTimeout(opts.Timeout)
	}
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping mongo: %v", ErrNetwork, err)
	}

	return &Mongo{
		client:   client,
		coll:     client.Database(opts.Database).Collection(opts.Collection),
		maxNodes: int64(opts.MaxNodes),
	}, nil
}

// FindPlugins looks up the document whose host equals host, falling back to
// a case-insensitive match on the first DNS label.
func (m *Mongo) FindPlugins(ctx context.Context, host string) (rec *munin.NodeRecord, err error) {
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "mongo", "find", host, time.Since(start), err)
	}()

	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "host", Value: host}},
		bson.D{{Key: "host", Value: bson.D{
			{Key: "$regex", Value: "^" + regexQuote(host) + `(\.|$)`},
			{Key: "$options", Value: "i"},
		}}},
	}}}

	var doc bson.D
	err = m.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %v", ErrNetwork, host, err)
	}

	r := recordFromBSON(doc)
	return &r, nil
}

// ListNodes returns the hosts matching the glob pattern, ordered by host.
func (m *Mongo) ListNodes(ctx context.Context, pattern string) (nodes []munin.NodeRef, err error) {
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "mongo", "list", pattern, time.Since(start), err)
	}()

	filter := bson.D{}
	if pattern != "" && pattern != AllNodes {
		filter = bson.D{{Key: "host", Value: bson.D{
			{Key: "$regex", Value: GlobRegexp(pattern)},
			{Key: "$options", Value: "i"},
		}}}
	}
	opts := options.Find().
		SetProjection(bson.D{{Key: "host", Value: 1}, {Key: "key", Value: 1}}).
		SetSort(bson.D{{Key: "host", Value: 1}}).
		SetLimit(m.maxNodes)

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrNetwork, pattern, err)
	}
	var docs []struct {
		Host string `bson:"host"`
		Key  string `bson:"key"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrNetwork, pattern, err)
	}

	for _, d := range docs {
		ref := munin.NodeRef{Host: d.Host, Key: d.Key}
		if ref.Key == "" {
			ref.Key = munin.ShortName(d.Host)
		}
		nodes = append(nodes, ref)
	}
	return nodes, nil
}

// IndexNode upserts rec keyed by its node key.
func (m *Mongo) IndexNode(ctx context.Context, rec munin.NodeRecord) (err error) {
	rec.Key = rec.NodeKey()
	start := time.Now()
	defer func() {
		observability.Directory().OnLookup(ctx, "mongo", "index", rec.Key, time.Since(start), err)
	}()

	_, err = m.coll.ReplaceOne(ctx,
		bson.D{{Key: "key", Value: rec.Key}},
		recordToBSON(rec),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: index %s: %v", ErrNetwork, rec.Key, err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func recordFromBSON(doc bson.D) munin.NodeRecord {
	var rec munin.NodeRecord
	for _, e := range doc {
		switch e.Key {
		case "host":
			rec.Host = bsonText(e.Value)
		case "key":
			rec.Key = bsonText(e.Value)
		case "prefix":
			rec.Prefix = bsonText(e.Value)
		case "plugins":
			plugins, _ := e.Value.(bson.D)
			for _, p := range plugins {
				pd := munin.PluginDocument{Name: p.Key}
				sections, _ := p.Value.(bson.D)
				for _, s := range sections {
					d, _ := s.Value.(bson.D)
					pd.Sections = append(pd.Sections, munin.Section{Name: s.Key, Directives: directivesFromBSON(d)})
				}
				rec.Plugins = append(rec.Plugins, pd)
			}
		}
	}
	return rec
}

func directivesFromBSON(d bson.D) munin.Directives {
	out := make(munin.Directives, 0, len(d))
	for _, e := range d {
		switch v := e.Value.(type) {
		case nil:
			continue
		case bson.D:
			out = append(out, munin.Directive{Name: e.Key, Value: munin.Fields(directivesFromBSON(v))})
		default:
			out = append(out, munin.Directive{Name: e.Key, Value: munin.Text(bsonText(v))})
		}
	}
	return out
}

func bsonText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func recordToBSON(rec munin.NodeRecord) bson.D {
	plugins := make(bson.D, 0, len(rec.Plugins))
	for _, p := range rec.Plugins {
		sections := make(bson.D, 0, len(p.Sections))
		for _, s := range p.Sections {
			sections = append(sections, bson.E{Key: s.Name, Value: directivesToBSON(s.Directives)})
		}
		plugins = append(plugins, bson.E{Key: p.Name, Value: sections})
	}
	return bson.D{
		{Key: "host", Value: rec.Host},
		{Key: "key", Value: rec.Key},
		{Key: "prefix", Value: rec.Prefix},
		{Key: "plugins", Value: plugins},
	}
}

func directivesToBSON(d munin.Directives) bson.D {
	out := make(bson.D, 0, len(d))
	for _, dir := range d {
		if fields, ok := dir.Value.AsFields(); ok {
			out = append(out, bson.E{Key: dir.Name, Value: directivesToBSON(fields)})
			continue
		}
		text, _ := dir.Value.AsText()
		out = append(out, bson.E{Key: dir.Name, Value: text})
	}
	return out
}

// regexQuote escapes s for use inside a MongoDB regular expression.
func regexQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Ensure Mongo implements Backend.
var _ Backend = (*Mongo)(nil)
