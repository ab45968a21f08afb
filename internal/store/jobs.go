package store

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gigtracker-engine/internal/domain"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500

	fingerprintDescRunes = 200
)

type Job struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Platform    string           `json:"platform"`
	URL         string           `json:"url,omitempty"`
	Description string           `json:"description"`
	Status      domain.JobStatus `json:"status"`
	Notes       string           `json:"notes"`
	FitScore    int              `json:"fitScore"`
	Tags        []string         `json:"tags"`
	Source      domain.JobSource `json:"source"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// NewJob is the input of CreateJob. Zero Status means NEW, zero Source means MANUAL.
type NewJob struct {
	Title       string
	Platform    string
	URL         string
	Description string
	Status      domain.JobStatus
	Notes       string
	FitScore    int
	Tags        []string
	Source      domain.JobSource
}

// JobUpdate patches a job. Nil fields are left unchanged.
type JobUpdate struct {
	Status *domain.JobStatus
	Notes  *string
}

type ListJobsOpts struct {
	Status domain.JobStatus // empty = all
	Sort   string           // date | score | title
	Limit  int
}

// Fingerprint identifies a posting without a URL: sha1 of the lower-cased title and the
// first 200 runes of the lower-cased description.
func Fingerprint(title, description string) string {
	d := []rune(strings.ToLower(strings.TrimSpace(description)))
	if len(d) > fingerprintDescRunes {
		d = d[:fingerprintDescRunes]
	}
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(title)) + "\n" + string(d)))
	return hex.EncodeToString(sum[:])
}

const jobColumns = `id, title, platform, url, description, status, notes, fit_score, tags, source, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (Job, error) {
	var (
		j                Job
		url              sql.NullString
		status, source   string
		tags             string
		created, updated string
	)
	if err := r.Scan(&j.ID, &j.Title, &j.Platform, &url, &j.Description, &status, &j.Notes,
		&j.FitScore, &tags, &source, &created, &updated); err != nil {
		return Job{}, err
	}
	j.URL = url.String
	j.Status = domain.JobStatus(status)
	j.Source = domain.JobSource(source)
	j.Tags = splitTags(tags)
	j.CreatedAt = parseTime(created)
	j.UpdatedAt = parseTime(updated)
	return j, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (d *DB) CreateJob(ctx context.Context, nj NewJob) (Job, error) {
	nj.Title = strings.TrimSpace(nj.Title)
	nj.Description = strings.TrimSpace(nj.Description)
	if nj.Title == "" || nj.Description == "" {
		return Job{}, fmt.Errorf("%w: title and description are required", ErrInvalid)
	}
	if strings.TrimSpace(nj.Platform) == "" {
		nj.Platform = domain.DefaultPlatform
	}
	if nj.Status == "" {
		nj.Status = domain.StatusNew
	}
	if !nj.Status.Valid() {
		return Job{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, nj.Status)
	}
	if nj.Source == "" {
		nj.Source = domain.SourceManual
	}

	now := d.stamp()
	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO jobs (title, platform, url, description, status, notes, fit_score, tags, source, fingerprint, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		nj.Title, strings.TrimSpace(nj.Platform), nullString(nj.URL), nj.Description, string(nj.Status),
		nj.Notes, nj.FitScore, joinTags(nj.Tags), string(nj.Source), Fingerprint(nj.Title, nj.Description),
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Job{}, fmt.Errorf("%w: url %s", ErrDuplicate, nj.URL)
		}
		return Job{}, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Job{}, fmt.Errorf("insert job: %w", err)
	}
	return d.GetJob(ctx, id)
}

func (d *DB) GetJob(ctx context.Context, id int64) (Job, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?;`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Job{}, fmt.Errorf("get job %d: %w", id, err)
	}
	return j, nil
}

func (d *DB) ListJobs(ctx context.Context, opts ListJobsOpts) ([]Job, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}

	// whitelist sort columns (prevents SQL injection)
	order := map[string]string{
		"date":  "created_at DESC, id DESC",
		"score": "fit_score DESC, created_at DESC, id DESC",
		"title": "title COLLATE NOCASE ASC, id ASC",
	}[opts.Sort]
	if order == "" {
		order = "created_at DESC, id DESC"
	}

	where := ""
	args := []any{}
	if opts.Status != "" {
		if !opts.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, opts.Status)
		}
		where = "WHERE status = ?"
		args = append(args, string(opts.Status))
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf(`SELECT %s FROM jobs %s ORDER BY %s LIMIT ?;`, jobColumns, where, order)
	rows, err := d.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

func (d *DB) UpdateJob(ctx context.Context, id int64, u JobUpdate) (Job, error) {
	sets := []string{}
	args := []any{}
	if u.Status != nil {
		if !u.Status.Valid() {
			return Job{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, *u.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, string(*u.Status))
	}
	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}
	if len(sets) == 0 {
		return d.GetJob(ctx, id)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, d.stamp(), id)

	res, err := d.Pool.ExecContext(ctx, `UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE id = ?;`, args...)
	if err != nil {
		return Job{}, fmt.Errorf("update job %d: %w", id, err)
	}
	if err := requireAffected(res, "job", id); err != nil {
		return Job{}, err
	}
	return d.GetJob(ctx, id)
}

// SetFitScore stores a recomputed score; tags are the rubric hits.
func (d *DB) SetFitScore(ctx context.Context, id int64, score int, tags []string) error {
	res, err := d.Pool.ExecContext(ctx, `UPDATE jobs SET fit_score = ?, tags = ?, updated_at = ? WHERE id = ?;`,
		score, joinTags(tags), d.stamp(), id)
	if err != nil {
		return fmt.Errorf("set fit score %d: %w", id, err)
	}
	return requireAffected(res, "job", id)
}

func (d *DB) MarkApplied(ctx context.Context, id int64) (Job, error) {
	st := domain.StatusApplied
	return d.UpdateJob(ctx, id, JobUpdate{Status: &st})
}

func (d *DB) DeleteJob(ctx context.Context, id int64) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete job %d: %w", id, err)
	}
	return requireAffected(res, "job", id)
}

// FindDuplicate returns an existing job with the same URL, or with the same fingerprint when
// url is empty.
func (d *DB) FindDuplicate(ctx context.Context, url, title, description string) (Job, bool, error) {
	var row *sql.Row
	if u := strings.TrimSpace(url); u != "" {
		row = d.Pool.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE url = ? LIMIT 1;`, u)
	} else {
		row = d.Pool.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE fingerprint = ? ORDER BY id LIMIT 1;`,
			Fingerprint(title, description))
	}
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, fmt.Errorf("find duplicate: %w", err)
	}
	return j, true, nil
}

// CleanupArchived deletes archived jobs not touched for olderThan.
func (d *DB) CleanupArchived(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := formatTime(d.now().Add(-olderThan))
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM jobs WHERE status = ? AND updated_at < ?;`,
		string(domain.StatusArchived), cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup archived jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
