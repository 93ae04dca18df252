package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
	"github.com/kailas-cloud/shopdex/internal/logger"
)

// Item is a product to be written, as read from a seed file.
type Item struct {
	ID    string
	Attrs domprod.Attrs
}

type seedRecord struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       int64    `yaml:"price"` // minor units
	Rating      float64  `yaml:"rating"`
	Tags        []string `yaml:"tags"`
	Stock       int      `yaml:"stock"`
}

// ParseSeed decodes a YAML list of products.
func ParseSeed(r io.Reader) ([]Item, error) {
	var records []seedRecord
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{
			ID: rec.ID,
			Attrs: domprod.Attrs{
				Title:       rec.Title,
				Description: rec.Description,
				Price:       rec.Price,
				Rating:      rec.Rating,
				Tags:        rec.Tags,
				Stock:       rec.Stock,
			},
		})
	}
	return items, nil
}

// Seed loads products from a YAML file and stores them.
func (s *Service) Seed(ctx context.Context, path string) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("open seed file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	items, err := ParseSeed(f)
	if err != nil {
		return 0, fmt.Errorf("seed file %s: %w", path, err)
	}

	n, err := s.UpsertMany(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("seed file %s: %w", path, err)
	}

	logger.FromContext(ctx).Info("Catalog seeded",
		zap.String("file", path),
		zap.Int("products", n),
	)
	return n, nil
}
