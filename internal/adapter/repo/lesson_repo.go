package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"lessonserver/internal/domain"
	"lessonserver/internal/infra"
	"lessonserver/internal/sqlinline"
)

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var lessonColumns = []string{"id", "title", "description", "cover_image", "items", "created_at", "updated_at"}

// LessonRepositoryPG implements domain.LessonRepository on PostgreSQL. Items
// are stored as a jsonb column so a lesson is written by a single statement.
type LessonRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewLessonRepository creates a repository that runs statements through sql.
func NewLessonRepository(sql infra.SQLExecutor) *LessonRepositoryPG {
	return &LessonRepositoryPG{sql: sql}
}

// Create validates data and inserts it with a fresh id.
func (r *LessonRepositoryPG) Create(ctx context.Context, data domain.LessonFormData) (*domain.Lesson, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	items := data.Items
	if items == nil {
		items = []domain.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	lesson := &domain.Lesson{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(data.Title),
		Description: data.Description,
		CoverImage:  data.CoverImage,
		Items:       items,
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertLesson,
		lesson.ID.String(),
		lesson.Title,
		lesson.Description,
		lesson.CoverImage,
		raw,
	)
	if err := row.Scan(&lesson.CreatedAt, &lesson.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert lesson: %w", err)
	}
	return lesson, nil
}

// Get fetches a lesson by id.
func (r *LessonRepositoryPG) Get(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	lesson, err := scanLesson(r.sql.QueryRow(ctx, sqlinline.QSelectLessonByID, id.String()))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select lesson: %w", err)
	}
	return lesson, nil
}

// List returns lessons newest first, optionally filtered by a title substring.
func (r *LessonRepositoryPG) List(ctx context.Context, params domain.ListParams) (*domain.LessonPage, error) {
	params.Normalize()

	countQuery := builder.Select("count(*)").
		Prefix(sqlinline.MarkerCountLessons + "\n").
		From("lessons")
	listQuery := builder.Select(lessonColumns...).
		Prefix(sqlinline.MarkerListLessons + "\n").
		From("lessons").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))
	if params.Search != "" {
		match := squirrel.ILike{"title": "%" + escapeLike(params.Search) + "%"}
		countQuery = countQuery.Where(match)
		listQuery = listQuery.Where(match)
	}

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.sql.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}

	listSQL, listArgs, err := listQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.sql.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	page := &domain.LessonPage{Lessons: []domain.Lesson{}, Total: total, Limit: params.Limit, Offset: params.Offset}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		page.Lessons = append(page.Lessons, *lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return page, nil
}

// Delete removes a lesson by id.
func (r *LessonRepositoryPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteLesson, id.String())
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLesson(row scanner) (*domain.Lesson, error) {
	var (
		lesson  domain.Lesson
		rawID   string
		rawJSON []byte
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&rawID, &lesson.Title, &lesson.Description, &lesson.CoverImage, &rawJSON, &created, &updated); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse lesson id: %w", err)
	}
	lesson.ID = id
	lesson.CreatedAt = created
	lesson.UpdatedAt = updated
	lesson.Items = []domain.Item{}
	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &lesson.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &lesson, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ domain.LessonRepository = (*LessonRepositoryPG)(nil)
