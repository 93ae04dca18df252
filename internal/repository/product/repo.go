package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopdex/internal/db"
	"github.com/kailas-cloud/shopdex/internal/domain"
	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
)

// store is the consumer interface for products (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Repo stores products as hashes under <prefix>product:<id> and keeps a
// catalog version counter that every write bumps.
type Repo struct {
	store  store
	prefix string
}

// New creates a product repository. An empty prefix uses domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// ListProducts returns the full catalog via SCAN and one pipelined HGETALL.
// Keys deleted between the two steps are skipped.
func (r *Repo) ListProducts(ctx context.Context) ([]domprod.Product, error) {
	keys, err := r.store.Scan(ctx, r.productKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	if len(keys) == 0 {
		return []domprod.Product{}, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	out := make([]domprod.Product, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		id := r.productID(keys[i])
		p, err := parseHashFields(id, m)
		if err != nil {
			return nil, fmt.Errorf("decode product %s: %w", id, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// FindProduct returns a product by ID or domain.ErrNotFound.
func (r *Repo) FindProduct(ctx context.Context, id string) (domprod.Product, error) {
	key := r.productKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domprod.Product{}, domain.ErrNotFound
	}
	p, err := parseHashFields(id, m)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("decode product %s: %w", id, err)
	}
	return p, nil
}

// Upsert creates or replaces a product. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domprod.Product) (bool, error) {
	key := r.productKey(p.ID())
	fields, err := buildHashFields(p)
	if err != nil {
		return false, err
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	if err := r.bumpVersion(ctx); err != nil {
		return false, err
	}
	return !exists, nil
}

// UpsertMany writes products in one pipelined round-trip.
func (r *Repo) UpsertMany(ctx context.Context, products []domprod.Product) error {
	if len(products) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(products))
	for i := range products {
		fields, err := buildHashFields(&products[i])
		if err != nil {
			return fmt.Errorf("product %s: %w", products[i].ID(), err)
		}
		items[i] = db.HashSetItem{Key: r.productKey(products[i].ID()), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset products: %w", err)
	}
	return r.bumpVersion(ctx)
}

// Delete removes a product.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.productKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return r.bumpVersion(ctx)
}

// Version returns the catalog version counter; 0 when nothing was written yet.
func (r *Repo) Version(ctx context.Context) (int64, error) {
	data, err := r.store.Get(ctx, r.versionKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get catalog version: %w", err)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse catalog version: %w", err)
	}
	return v, nil
}

func (r *Repo) bumpVersion(ctx context.Context) error {
	if _, err := r.store.IncrBy(ctx, r.versionKey(), 1); err != nil {
		return fmt.Errorf("bump catalog version: %w", err)
	}
	return nil
}

func (r *Repo) productKey(id string) string {
	return r.prefix + "product:" + id
}

func (r *Repo) productID(key string) string {
	return strings.TrimPrefix(key, r.prefix+"product:")
}

func (r *Repo) versionKey() string {
	return r.prefix + "catalog:version"
}
