package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Breadcrumb is one recorded inconsistency between server pushes and local
// campaign state.
type Breadcrumb struct {
	ID         uuid.UUID `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddBreadcrumb stores b, assigning an id and timestamp when missing.
func (s *Store) AddBreadcrumb(ctx context.Context, b Breadcrumb) (Breadcrumb, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO breadcrumbs (id, campaign_id, kind, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID.String(), b.CampaignID, b.Kind, b.Message, b.CreatedAt)
	if err != nil {
		return Breadcrumb{}, fmt.Errorf("add breadcrumb: %w", err)
	}
	return b, nil
}

// ListBreadcrumbs returns the newest breadcrumbs first. An empty campaignID
// lists every campaign.
func (s *Store) ListBreadcrumbs(ctx context.Context, campaignID string, limit int) ([]Breadcrumb, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT id, campaign_id, kind, message, created_at FROM breadcrumbs`
	args := []any{}
	if campaignID != "" {
		query += ` WHERE campaign_id = ?`
		args = append(args, campaignID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Breadcrumb
	for rows.Next() {
		var b Breadcrumb
		var id string
		if err := rows.Scan(&id, &b.CampaignID, &b.Kind, &b.Message, &b.CreatedAt); err != nil {
			return nil, err
		}
		if b.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("breadcrumb id %q: %w", id, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BreadcrumbSink adapts the store to the engine's fire-and-forget
// breadcrumb interface. Write failures are logged.
type BreadcrumbSink struct {
	Store   *Store
	Logger  *log.Logger
	Timeout time.Duration
}

func (b BreadcrumbSink) Record(campaignID, kind, message string) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := b.Store.AddBreadcrumb(ctx, Breadcrumb{CampaignID: campaignID, Kind: kind, Message: message}); err != nil && b.Logger != nil {
		b.Logger.Printf("breadcrumb %s/%s: %v", campaignID, kind, err)
	}
}
