package ncu

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"net/url"
	"time"

	"ncucourse/lib/timezone"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrPageNotCached = errors.New("page not cached")

type webpage struct {
	Contents  []byte
	FetchedAt int64
}

// PageCache keeps fetched catalog pages in badger so interrupted scrapes
// can be resumed without hitting the site again.
type PageCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenPageCache opens a cache in dir, an empty dir keeps the cache in
// memory.
func OpenPageCache(dir string, ttl time.Duration) (*PageCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &PageCache{db: db, ttl: ttl}, nil
}

func (c *PageCache) Close() error {
	return c.db.Close()
}

func cacheKey(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		parsed,
		purell.FlagsSafe|
			purell.FlagRemoveDotSegments|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return "page:" + normalized, nil
}

func (c *PageCache) Get(ctx context.Context, link string) ([]byte, error) {
	_, span := tracer.Start(ctx, "PageCache.Get")
	defer span.End()

	key, err := cacheKey(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return nil, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	var serialized []byte
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		serialized, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrPageNotCached
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return nil, err
	}

	var cached webpage
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return nil, err
	}

	span.SetAttributes(attribute.Int("contentlength", len(cached.Contents)))
	return cached.Contents, nil
}

func (c *PageCache) Set(ctx context.Context, link string, contents []byte) error {
	_, span := tracer.Start(ctx, "PageCache.Set")
	defer span.End()

	key, err := cacheKey(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}

	var buf bytes.Buffer
	err = gob.NewEncoder(&buf).Encode(webpage{
		Contents:  contents,
		FetchedAt: timezone.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize page")
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), buf.Bytes())
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}
