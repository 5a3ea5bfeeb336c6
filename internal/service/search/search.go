package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/blog-platform/backend/internal/models"
)

// Search runs a fuzzy multi_match over the post index. Title hits score
// double so exact title matches surface first.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Post, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "content", "tags"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Post `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	posts := make([]models.Post, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		posts[i] = hit.Source
	}
	return r.Hits.Total.Value, posts, nil
}

// IndexPost upserts a published post into the index.
func IndexPost(ctx context.Context, es *elasticsearch.Client, index string, p *models.Post) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index post: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index post: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index post: %s", res.Status())
	}
	return nil
}

// RemovePost deletes a post from the index. A missing document is fine:
// drafts are never indexed in the first place.
func RemovePost(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("remove post: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove post: %s", res.Status())
	}
	return nil
}
