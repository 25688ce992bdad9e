package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const todoColumns = `id, user_id, title, description, priority, due_date, completed, attachment_key, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*models.Todo, error) {
	t := &models.Todo{}
	var priority sql.NullString
	var due sql.NullTime

	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &priority, &due,
		&t.Completed, &t.AttachmentKey, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if priority.Valid {
		p := models.Priority(priority.String)
		t.Priority = &p
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func scanOne(row *sql.Row) (*models.Todo, error) {
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func nullPriority(p *models.Priority) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		INSERT INTO todos (user_id, title, description, priority, due_date, completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + todoColumns

	var due sql.NullTime
	if todo.DueDate != nil {
		due = sql.NullTime{Time: *todo.DueDate, Valid: true}
	}
	return scanOne(r.db.QueryRowContext(ctx, query,
		todo.UserID, todo.Title, todo.Description, nullPriority(todo.Priority), due, todo.Completed))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

// buildWhere renders filter as a WHERE clause with positional args.
func buildWhere(filter models.TodoFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, filter models.TodoFilter) ([]*models.Todo, int64, error) {
	where, args := buildWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	pageArgs := append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM todos%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		todoColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return items, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.TodoUpdate) (*models.Todo, error) {
	query := `
		UPDATE todos SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			priority    = COALESCE($4, priority),
			due_date    = COALESCE($5, due_date),
			completed   = COALESCE($6, completed),
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + todoColumns

	var title, desc sql.NullString
	if upd.Title != nil {
		title = sql.NullString{String: *upd.Title, Valid: true}
	}
	if upd.Description != nil {
		desc = sql.NullString{String: *upd.Description, Valid: true}
	}
	var due sql.NullTime
	if upd.DueDate != nil {
		due = sql.NullTime{Time: *upd.DueDate, Valid: true}
	}
	var completed sql.NullBool
	if upd.Completed != nil {
		completed = sql.NullBool{Bool: *upd.Completed, Valid: true}
	}

	return scanOne(r.db.QueryRowContext(ctx, query, id, title, desc, nullPriority(upd.Priority), due, completed))
}

func (r *PostgresRepository) ToggleCompleted(ctx context.Context, id string) (*models.Todo, error) {
	query := `
		UPDATE todos SET completed = NOT completed, updated_at = now()
		WHERE id = $1
		RETURNING ` + todoColumns
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) SetAttachment(ctx context.Context, id string, key string) error {
	query := `UPDATE todos SET attachment_key = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Stats(ctx context.Context, userID string) (*models.TodoStats, error) {
	query := `
		SELECT priority, completed, COUNT(*)
		FROM todos
		WHERE user_id = $1
		GROUP BY priority, completed
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	stats := &models.TodoStats{ByPriority: make(map[models.Priority]int64)}
	for rows.Next() {
		var priority sql.NullString
		var completed bool
		var n int64
		if err := rows.Scan(&priority, &completed, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		stats.Total += n
		if completed {
			stats.Completed += n
		}
		if priority.Valid {
			stats.ByPriority[models.Priority(priority.String)] += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}
