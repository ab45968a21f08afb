package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/proposal"
)

type Proposal struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"jobId"`
	Version     int       `json:"version"`
	DraftText   string    `json:"draftText"`
	Questions   string    `json:"questions"`
	PricingNote string    `json:"pricingNote"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateProposal stores d as the job's next version. A NEW or SHORTLISTED job moves to DRAFTED.
func (d *DB) CreateProposal(ctx context.Context, jobID int64, draft proposal.Draft) (Proposal, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return Proposal{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = ?;`, jobID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return Proposal{}, fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return Proposal{}, fmt.Errorf("load job %d: %w", jobID, err)
	}

	var version int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM proposals WHERE job_id = ?;`, jobID,
	).Scan(&version); err != nil {
		return Proposal{}, fmt.Errorf("next version: %w", err)
	}

	now := d.stamp()
	res, err := tx.ExecContext(ctx, `
INSERT INTO proposals (job_id, version, draft_text, questions, pricing_note, created_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		jobID, version, draft.DraftText, draft.Questions, draft.PricingNote, now)
	if err != nil {
		return Proposal{}, fmt.Errorf("insert proposal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Proposal{}, fmt.Errorf("insert proposal: %w", err)
	}

	switch domain.JobStatus(status) {
	case domain.StatusNew, domain.StatusShortlisted:
		if _, err := tx.ExecContext(ctx, `UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?;`,
			string(domain.StatusDrafted), now, jobID); err != nil {
			return Proposal{}, fmt.Errorf("mark drafted: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Proposal{}, fmt.Errorf("commit: %w", err)
	}

	return Proposal{
		ID:          id,
		JobID:       jobID,
		Version:     version,
		DraftText:   draft.DraftText,
		Questions:   draft.Questions,
		PricingNote: draft.PricingNote,
		CreatedAt:   parseTime(now),
	}, nil
}

// ListProposals returns a job's drafts, newest version first.
func (d *DB) ListProposals(ctx context.Context, jobID int64) ([]Proposal, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, job_id, version, draft_text, questions, pricing_note, created_at
FROM proposals
WHERE job_id = ?
ORDER BY version DESC;`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	out := []Proposal{}
	for rows.Next() {
		var p Proposal
		var created string
		if err := rows.Scan(&p.ID, &p.JobID, &p.Version, &p.DraftText, &p.Questions, &p.PricingNote, &created); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		p.CreatedAt = parseTime(created)
		out = append(out, p)
	}
	return out, rows.Err()
}
