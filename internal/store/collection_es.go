package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"

	"booksstock/internal/entity"
)

const (
	// scrollPageSize is the number of hits fetched per scroll round trip.
	scrollPageSize  = 1000
	scrollKeepAlive = "1m"
)

var bookMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"book":       map[string]any{"type": "keyword"},
			"author":     map[string]any{"type": "keyword"},
			"annotation": map[string]any{"type": "text"},
			"language":   map[string]any{"type": "keyword"},
			"genre":      map[string]any{"type": "keyword"},
			"link":       map[string]any{"type": "keyword", "index": false},
			"available":  map[string]any{"type": "boolean"},
			"price":      map[string]any{"type": "double"},
		},
	},
}

// ElasticDatabase stores every collection as an Elasticsearch index.
type ElasticDatabase struct {
	client  *elastic.Client
	timeout time.Duration
}

func NewElasticDatabase(client *elastic.Client, timeout time.Duration) *ElasticDatabase {
	return &ElasticDatabase{client: client, timeout: timeout}
}

// NewElasticClient connects without sniffing, which single-node and
// containerised clusters do not support.
func NewElasticClient(url string) (*elastic.Client, error) {
	return elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
}

func (d *ElasticDatabase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

func (d *ElasticDatabase) ListCollectionNames(ctx context.Context, prefix string) ([]string, error) {
	timeoutCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.client.CatIndices().Index(prefix + "_*").Columns("index").Do(timeoutCtx)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, row := range rows {
		if strings.HasPrefix(row.Index, prefix+"_") {
			names = append(names, row.Index)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d *ElasticDatabase) CreateCollection(ctx context.Context, name string) error {
	if !validName(name) || name != strings.ToLower(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	timeoutCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	exists, err := d.client.IndexExists(name).Do(timeoutCtx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = d.client.CreateIndex(name).BodyJson(bookMapping).Do(timeoutCtx)
	return err
}

func (d *ElasticDatabase) Collection(name string) Collection {
	return &esCollection{db: d, name: name}
}

type esCollection struct {
	db   *ElasticDatabase
	name string
}

func (c *esCollection) Name() string { return c.name }

// Find scrolls through every matching document; results are not capped by
// the index's max_result_window.
func (c *esCollection) Find(ctx context.Context, f Filter) ([]entity.Book, error) {
	scroll := c.db.client.Scroll(c.name).
		Query(esQuery(f)).
		Size(scrollPageSize).
		KeepAlive(scrollKeepAlive)
	defer func() {
		clearCtx, cancel := c.db.withTimeout(context.WithoutCancel(ctx))
		defer cancel()
		_ = scroll.Clear(clearCtx)
	}()

	out := []entity.Book{}
	for {
		hits, err := c.nextPage(ctx, scroll)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			if elastic.IsNotFound(err) {
				return []entity.Book{}, nil
			}
			return nil, err
		}
		for _, hit := range hits {
			var doc document
			if err := json.Unmarshal(hit.Source, &doc); err != nil {
				return nil, fmt.Errorf("decode %s/%s: %w", c.name, hit.Id, err)
			}
			out = append(out, doc.toBook(hit.Id))
		}
	}
}

func (c *esCollection) nextPage(ctx context.Context, scroll *elastic.ScrollService) ([]*elastic.SearchHit, error) {
	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()

	res, err := scroll.Do(timeoutCtx)
	if err != nil {
		return nil, err
	}
	if res.Hits == nil || len(res.Hits.Hits) == 0 {
		return nil, io.EOF
	}
	return res.Hits.Hits, nil
}

func (c *esCollection) InsertOne(ctx context.Context, b *entity.Book) error {
	id := b.ID
	if id == "" {
		id = NewID()
	}
	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()

	_, err := c.db.client.Index().
		Index(c.name).
		Id(id).
		OpType("create").
		BodyJson(toDocument(*b)).
		Refresh("wait_for").
		Do(timeoutCtx)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (c *esCollection) InsertMany(ctx context.Context, books []entity.Book) error {
	if len(books) == 0 {
		return nil
	}
	bulk := c.db.client.Bulk().Index(c.name).Refresh("wait_for")
	for _, b := range books {
		id := b.ID
		if id == "" {
			id = NewID()
		}
		bulk.Add(elastic.NewBulkIndexRequest().Id(id).Doc(toDocument(b)))
	}

	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()
	resp, err := bulk.Do(timeoutCtx)
	if err != nil {
		return err
	}
	if resp.Errors {
		failed := resp.Failed()
		if len(failed) > 0 && failed[0].Error != nil {
			return fmt.Errorf("bulk insert into %s: %d failed, first: %s", c.name, len(failed), failed[0].Error.Reason)
		}
		return errors.New("bulk insert into " + c.name + " failed")
	}
	return nil
}

// FindOneAndReplace overwrites every stored field of an existing document.
// The update API never creates a missing document, so a concurrent delete
// wins.
func (c *esCollection) FindOneAndReplace(ctx context.Context, id string, b entity.Book) (bool, error) {
	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()

	_, err := c.db.client.Update().
		Index(c.name).
		Id(id).
		Doc(toDocument(b)).
		Refresh("wait_for").
		Do(timeoutCtx)
	if err != nil {
		if elastic.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *esCollection) FindOneAndDelete(ctx context.Context, id string) (bool, error) {
	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()

	_, err := c.db.client.Delete().
		Index(c.name).
		Id(id).
		Refresh("wait_for").
		Do(timeoutCtx)
	if err != nil {
		if elastic.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *esCollection) Count(ctx context.Context) (int64, error) {
	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()

	n, err := c.db.client.Count(c.name).Do(timeoutCtx)
	if elastic.IsNotFound(err) {
		return 0, nil
	}
	return n, err
}

func esQuery(f Filter) elastic.Query {
	switch f.kind {
	case filterByID:
		return elastic.NewIdsQuery().Ids(f.value)
	case filterEquals:
		return esAnyField("term", f.value)
	case filterContains:
		return esAnyField("wildcard", "*"+escapeWildcard(f.value)+"*")
	default:
		return elastic.NewMatchAllQuery()
	}
}

func esAnyField(kind, value string) elastic.Query {
	q := elastic.NewBoolQuery().MinimumNumberShouldMatch(1)
	for _, field := range []string{"book", "author", "language", "genre"} {
		q.Should(caseInsensitiveQuery{kind: kind, field: field, value: value})
	}
	return q
}

// caseInsensitiveQuery renders a term or wildcard query with the
// case_insensitive flag available since Elasticsearch 7.10.
type caseInsensitiveQuery struct {
	kind  string
	field string
	value string
}

func (q caseInsensitiveQuery) Source() (interface{}, error) {
	return map[string]any{
		q.kind: map[string]any{
			q.field: map[string]any{
				"value":            q.value,
				"case_insensitive": true,
			},
		},
	}, nil
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}
