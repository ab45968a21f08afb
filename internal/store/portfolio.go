package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gigtracker-engine/internal/domain"
)

func (d *DB) AddPortfolioItem(ctx context.Context, p domain.PortfolioItem) (domain.PortfolioItem, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.URLLive = strings.TrimSpace(p.URLLive)
	if p.Name == "" || p.URLLive == "" || len(p.KeywordList()) == 0 {
		return domain.PortfolioItem{}, fmt.Errorf("%w: name, urlLive and keywords are required", ErrInvalid)
	}

	now := d.stamp()
	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO portfolio_items (name, url_live, url_github, keywords, created_at)
VALUES (?, ?, ?, ?, ?);`,
		p.Name, p.URLLive, nullString(p.URLGithub), strings.TrimSpace(p.Keywords), now)
	if err != nil {
		return domain.PortfolioItem{}, fmt.Errorf("insert portfolio item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.PortfolioItem{}, fmt.Errorf("insert portfolio item: %w", err)
	}
	return d.GetPortfolioItem(ctx, id)
}

const portfolioColumns = `id, name, url_live, url_github, keywords, created_at`

func scanPortfolio(r rowScanner) (domain.PortfolioItem, error) {
	var (
		p       domain.PortfolioItem
		github  sql.NullString
		created string
	)
	if err := r.Scan(&p.ID, &p.Name, &p.URLLive, &github, &p.Keywords, &created); err != nil {
		return domain.PortfolioItem{}, err
	}
	p.URLGithub = github.String
	p.CreatedAt = parseTime(created)
	return p, nil
}

func (d *DB) GetPortfolioItem(ctx context.Context, id int64) (domain.PortfolioItem, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+portfolioColumns+` FROM portfolio_items WHERE id = ?;`, id)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PortfolioItem{}, fmt.Errorf("portfolio item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.PortfolioItem{}, fmt.Errorf("get portfolio item %d: %w", id, err)
	}
	return p, nil
}

// ListPortfolio returns all items, newest first.
func (d *DB) ListPortfolio(ctx context.Context) ([]domain.PortfolioItem, error) {
	rows, err := d.Pool.QueryContext(ctx, `SELECT `+portfolioColumns+` FROM portfolio_items ORDER BY created_at DESC, id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	defer rows.Close()

	out := []domain.PortfolioItem{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio item: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) DeletePortfolioItem(ctx context.Context, id int64) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM portfolio_items WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete portfolio item %d: %w", id, err)
	}
	return requireAffected(res, "portfolio item", id)
}

// MatchPortfolio picks the item with the most keywords found in text. Ties go to the newest
// item; no keyword hit means no match.
func (d *DB) MatchPortfolio(ctx context.Context, text string) (domain.PortfolioItem, bool, error) {
	items, err := d.ListPortfolio(ctx)
	if err != nil {
		return domain.PortfolioItem{}, false, err
	}
	p, ok := BestPortfolioMatch(items, text)
	return p, ok, nil
}

// BestPortfolioMatch expects items newest first.
func BestPortfolioMatch(items []domain.PortfolioItem, text string) (domain.PortfolioItem, bool) {
	lt := strings.ToLower(text)
	best, bestHits := -1, 0
	for i, it := range items {
		hits := 0
		for _, k := range it.KeywordList() {
			if strings.Contains(lt, k) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if best < 0 {
		return domain.PortfolioItem{}, false
	}
	return items[best], true
}
