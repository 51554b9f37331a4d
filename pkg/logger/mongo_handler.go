package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LogDocument is one log record as stored in MongoDB.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Action    string    `bson:"action,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// inserter is the part of *mongo.Collection the writer needs.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// mongoWriter owns the queue and the goroutine that empties it.
type mongoWriter struct {
	col       inserter
	client    *mongo.Client
	batchSize int
	every     time.Duration

	queue   chan LogDocument
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// MongoHandler is a slog.Handler that stores Info and above in MongoDB.
// Records go through a bounded queue and are dropped when it is full, so
// a slow database never holds up a request.
type MongoHandler struct {
	w     *mongoWriter
	attrs []slog.Attr
	group string
}

// NewMongoHandler connects to uri and writes into db.collection.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(4)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "time", Value: -1}}}); err != nil {
		L.Warn("log collection index", "error", err)
	}

	h := newMongoHandler(col)
	h.w.client = client
	return h, nil
}

func newMongoHandler(col inserter) *MongoHandler {
	w := &mongoWriter{
		col:       col,
		batchSize: 50,
		every:     2 * time.Second,
		queue:     make(chan LogDocument, 2048),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go w.run()
	return &MongoHandler{w: w}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelInfo }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}

	put := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			doc.RequestID = a.Value.String()
		case "action":
			doc.Action = a.Value.String()
		default:
			doc.Attrs[h.group+a.Key] = a.Value.Resolve().Any()
		}
		return true
	}
	for _, a := range h.attrs {
		put(a)
	}
	r.Attrs(put)

	select {
	case h.w.queue <- doc:
	default:
		h.w.dropped.Add(1)
	}
	return nil
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &c
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = h.group + strings.TrimSuffix(name, ".") + "."
	return &c
}

// Dropped is the number of records lost to a full queue.
func (h *MongoHandler) Dropped() int64 { return h.w.dropped.Load() }

// Close writes whatever is queued and disconnects. Safe to call twice.
func (h *MongoHandler) Close() {
	h.w.once.Do(func() {
		close(h.w.stop)
		<-h.w.stopped
		if n := h.w.dropped.Load(); n > 0 {
			fmt.Fprintf(os.Stderr, "logger: %d records dropped by the mongo sink\n", n)
		}
		if h.w.client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = h.w.client.Disconnect(ctx)
		}
	})
}

func (w *mongoWriter) run() {
	defer close(w.stopped)

	tick := time.NewTicker(w.every)
	defer tick.Stop()

	var batch []interface{}
	for {
		select {
		case doc := <-w.queue:
			if batch = append(batch, doc); len(batch) >= w.batchSize {
				batch = w.write(batch)
			}
		case <-tick.C:
			batch = w.write(batch)
		case <-w.stop:
			for len(w.queue) > 0 {
				batch = append(batch, <-w.queue)
			}
			w.write(batch)
			return
		}
	}
}

// write inserts batch and returns it emptied for reuse.
func (w *mongoWriter) write(batch []interface{}) []interface{} {
	if len(batch) == 0 {
		return batch
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := w.col.InsertMany(ctx, batch); err != nil {
		w.dropped.Add(int64(len(batch)))
	}
	return batch[:0]
}

// MultiHandler sends each record to every handler that accepts its level.
type MultiHandler []slog.Handler

func NewMultiHandler(hs ...slog.Handler) MultiHandler { return MultiHandler(hs) }

func (m MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m MultiHandler) each(fn func(slog.Handler) slog.Handler) MultiHandler {
	out := make(MultiHandler, len(m))
	for i, h := range m {
		out[i] = fn(h)
	}
	return out
}
