package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pollboard/internal/domain/poll"
)

type PollRepo struct {
	db *sql.DB
}

func NewPollRepo(db *sql.DB) *PollRepo {
	return &PollRepo{db: db}
}

func (r *PollRepo) Create(ctx context.Context, p *poll.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	queryPoll := `
        INSERT INTO polls (id, question, owner_id)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at
    `
	if err := tx.QueryRowContext(ctx, queryPoll, p.ID, p.Question, p.OwnerID).
		Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}

	if err := insertOptions(ctx, tx, p.ID, p.Options); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PollRepo) GetByID(ctx context.Context, id string) (*poll.Poll, error) {
	p := &poll.Poll{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, question, owner_id, created_at, updated_at
        FROM polls WHERE id = $1
    `, id).Scan(&p.ID, &p.Question, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, poll.ErrNotFound
		}
		return nil, err
	}

	opts, err := r.loadOptions(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Options = opts

	return p, nil
}

func (r *PollRepo) ListByOwner(ctx context.Context, ownerID string) ([]poll.Poll, error) {
	return r.list(ctx, `
        SELECT id, question, owner_id, created_at, updated_at
        FROM polls WHERE owner_id = $1 ORDER BY created_at DESC
    `, ownerID)
}

func (r *PollRepo) ListAll(ctx context.Context) ([]poll.Poll, error) {
	return r.list(ctx, `
        SELECT id, question, owner_id, created_at, updated_at
        FROM polls ORDER BY created_at DESC
    `)
}

// Update rewrites question and options; owner_id is never touched.
func (r *PollRepo) Update(ctx context.Context, id, question string, options []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE polls SET question = $1, updated_at = now() WHERE id = $2`, question, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return poll.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_options WHERE poll_id = $1`, id); err != nil {
		return err
	}
	if err := insertOptions(ctx, tx, id, options); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PollRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return poll.ErrNotFound
	}
	return nil
}

func (r *PollRepo) list(ctx context.Context, query string, args ...any) ([]poll.Poll, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []poll.Poll
	for rows.Next() {
		var p poll.Poll
		if err := rows.Scan(&p.ID, &p.Question, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range res {
		opts, err := r.loadOptions(ctx, res[i].ID)
		if err != nil {
			return nil, err
		}
		res[i].Options = opts
	}
	return res, nil
}

func (r *PollRepo) loadOptions(ctx context.Context, pollID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT label FROM poll_options WHERE poll_id = $1 ORDER BY position
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		opts = append(opts, label)
	}
	return opts, rows.Err()
}

func insertOptions(ctx context.Context, tx *sql.Tx, pollID string, options []string) error {
	queryOpt := `
        INSERT INTO poll_options (poll_id, position, label)
        VALUES ($1, $2, $3)
    `
	for i, label := range options {
		if _, err := tx.ExecContext(ctx, queryOpt, pollID, i, label); err != nil {
			return err
		}
	}
	return nil
}
