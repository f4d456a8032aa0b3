package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"investiq-backend/models"
)

// sourceTypes are the scraped page kinds the crawler produces, in the
// order they are tried.
var sourceTypes = []string{
	"homepage", "home", "about", "product", "careers",
	"blog", "news", "manifest", "platform",
}

// sourceMeta is the optional sidecar metadata written by the scraper.
type sourceMeta struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	CrawledAt string `json:"crawled_at"`
}

// LoadCompanyDocuments reads every scraped source page for a company from
// the store. Pages shorter than minLength characters are skipped. A
// missing `.meta` sidecar falls back to a constructed URL and the current
// time.
func LoadCompanyDocuments(ctx context.Context, store Store, companyName string, minLength int) ([]models.SourceDocument, error) {
	var docs []models.SourceDocument

	for _, sourceType := range sourceTypes {
		text, err := readSource(ctx, store, companyName, sourceType)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			log.Printf("Warning: could not load %s for %s: %v", sourceType, companyName, err)
			continue
		}
		if len(strings.TrimSpace(text)) < minLength {
			continue
		}

		meta := readMeta(ctx, store, companyName, sourceType)

		sourceURL := meta.URL
		if sourceURL == "" {
			sourceURL = fmt.Sprintf("https://%s.com/%s", strings.ToLower(companyName), sourceType)
		}
		crawledAt := meta.Timestamp
		if crawledAt == "" {
			crawledAt = meta.CrawledAt
		}
		if crawledAt == "" {
			crawledAt = time.Now().UTC().Format(time.RFC3339)
		}

		docs = append(docs, models.SourceDocument{
			CompanyName: companyName,
			SourceType:  sourceType,
			SourceURL:   sourceURL,
			Text:        text,
			CrawledAt:   crawledAt,
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no source documents found for %s", companyName)
	}
	return docs, nil
}

// readSource tries the bare source-type key and the common extensions.
func readSource(ctx context.Context, store Store, companyName, sourceType string) (string, error) {
	base := companyName + "/initial/" + sourceType
	for _, key := range []string{base, base + ".txt", base + ".html"} {
		rc, err := store.Read(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", key, err)
		}
		return string(data), nil
	}
	return "", ErrNotFound
}

func readMeta(ctx context.Context, store Store, companyName, sourceType string) sourceMeta {
	var meta sourceMeta
	rc, err := store.Read(ctx, companyName+"/initial/"+sourceType+".meta")
	if err != nil {
		return meta
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return meta
	}
	// Malformed metadata is tolerated; defaults apply.
	_ = json.Unmarshal(data, &meta)
	return meta
}
