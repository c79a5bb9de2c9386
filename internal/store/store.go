// Package store persists uploaded catalogs and submitted results, so the
// latest of each survives a restart.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

var ErrNotFound = errors.New("store: not found")

type CatalogRecord struct {
	ID        string          `json:"id"`
	Catalog   catalog.Catalog `json:"catalog"`
	CreatedAt time.Time       `json:"created_at"`
}

type ResultRecord struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id,omitempty"`
	Result    scorecard.Result `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

type Store interface {
	PutCatalog(ctx context.Context, rec CatalogRecord) error
	LatestCatalog(ctx context.Context) (CatalogRecord, error)
	PutResult(ctx context.Context, rec ResultRecord) error
	LatestResult(ctx context.Context) (ResultRecord, error)
	// Clear drops every stored catalog and result.
	Clear(ctx context.Context) error
}
