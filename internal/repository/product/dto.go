package product

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domprod "github.com/kailas-cloud/shopdex/internal/domain/product"
)

// Hash field names.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldRating      = "rating"
	fieldTags        = "tags"
	fieldStock       = "stock"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

// buildHashFields converts a domain Product into a flat map[string]string for HSET.
func buildHashFields(p *domprod.Product) (map[string]string, error) {
	tagList := p.TagsView()
	if tagList == nil {
		tagList = []string{}
	}
	tags, err := json.Marshal(tagList)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return map[string]string{
		fieldTitle:       p.Title(),
		fieldDescription: p.Description(),
		fieldPrice:       strconv.FormatInt(p.Price(), 10),
		fieldRating:      strconv.FormatFloat(p.Rating(), 'f', -1, 64),
		fieldTags:        string(tags),
		fieldStock:       strconv.Itoa(p.Stock()),
		fieldCreatedAt:   formatTime(p.CreatedAt()),
		fieldUpdatedAt:   formatTime(p.UpdatedAt()),
	}, nil
}

// parseHashFields converts a flat hash map back into a domain Product.
func parseHashFields(id string, m map[string]string) (domprod.Product, error) {
	a := domprod.Attrs{
		Title:       m[fieldTitle],
		Description: m[fieldDescription],
	}

	var err error
	if a.Price, err = parseInt(m, fieldPrice); err != nil {
		return domprod.Product{}, err
	}
	stock, err := parseInt(m, fieldStock)
	if err != nil {
		return domprod.Product{}, err
	}
	a.Stock = int(stock)

	if v := m[fieldRating]; v != "" {
		if a.Rating, err = strconv.ParseFloat(v, 64); err != nil {
			return domprod.Product{}, fmt.Errorf("field %s: %w", fieldRating, err)
		}
	}
	if v := m[fieldTags]; v != "" {
		if err = json.Unmarshal([]byte(v), &a.Tags); err != nil {
			return domprod.Product{}, fmt.Errorf("field %s: %w", fieldTags, err)
		}
	}
	if a.CreatedAt, err = parseTime(m, fieldCreatedAt); err != nil {
		return domprod.Product{}, err
	}
	if a.UpdatedAt, err = parseTime(m, fieldUpdatedAt); err != nil {
		return domprod.Product{}, err
	}

	return domprod.Reconstruct(id, a), nil
}

func parseInt(m map[string]string, field string) (int64, error) {
	v := m[field]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", field, err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(m map[string]string, field string) (time.Time, error) {
	v := m[field]
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", field, err)
	}
	return t, nil
}
