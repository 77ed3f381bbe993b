package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aula-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrDimensionMismatch is returned when an insert or search carries vectors
// whose dimensionality differs from the namespace's fixed dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// filterColumns maps attached filter names to their backing columns. The
// filter schema is fixed at namespace creation.
var filterColumns = map[string]string{
	models.FilterTopicID: "topic_id",
	models.FilterFileID:  "file_id",
}

// VectorRepository stores chunk embeddings in Postgres with pgvector cosine
// search. Entries are keyed by (namespace, key, chunk_index); replacing a key
// is a delete+insert in one transaction so re-indexing never leaves ghosts.
type VectorRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewVectorRepository(db *pgxpool.Pool, logger *zap.Logger) *VectorRepository {
	return &VectorRepository{
		db:     db,
		logger: logger,
	}
}

func (r *VectorRepository) EnsureNamespace(ctx context.Context, namespace string, dimension int) error {
	existing, err := r.namespaceDimension(ctx, namespace)
	if err == nil {
		if existing != dimension {
			return fmt.Errorf("%w: namespace %s has dimension %d, got %d", ErrDimensionMismatch, namespace, existing, dimension)
		}
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	sql, args, err := squirrel.Insert("vector_namespaces").
		Columns("namespace", "dimension", "created_at").
		Values(namespace, dimension, time.Now()).
		Suffix("ON CONFLICT (namespace) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *VectorRepository) HasNamespace(ctx context.Context, namespace string) (bool, error) {
	_, err := r.namespaceDimension(ctx, namespace)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *VectorRepository) namespaceDimension(ctx context.Context, namespace string) (int, error) {
	sql, args, err := squirrel.Select("dimension").
		From("vector_namespaces").
		Where(squirrel.Eq{"namespace": namespace}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var dimension int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&dimension); err != nil {
		return 0, err
	}
	return dimension, nil
}

func (r *VectorRepository) Replace(ctx context.Context, namespace, key string, entries []models.VectorEntry) error {
	dimension, err := r.namespaceDimension(ctx, namespace)
	if err != nil {
		return fmt.Errorf("namespace %s not initialized: %w", namespace, err)
	}
	for _, e := range entries {
		if len(e.Embedding) != dimension {
			return fmt.Errorf("%w: namespace %s has dimension %d, got %d", ErrDimensionMismatch, namespace, dimension, len(e.Embedding))
		}
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteSQL, deleteArgs, err := squirrel.Delete("vector_entries").
		Where(squirrel.Eq{"namespace": namespace, "key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		return err
	}

	for _, e := range entries {
		embedding := pgtype.FlatArray[float32](e.Embedding)

		insertSQL, insertArgs, err := squirrel.Insert("vector_entries").
			Columns("namespace", "key", "chunk_index", "content", "embedding", "topic_id", "file_id", "created_at").
			Values(namespace, key, e.ChunkIndex, e.Content, embedding, e.Filters[models.FilterTopicID], e.Filters[models.FilterFileID], e.CreatedAt).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *VectorRepository) Search(ctx context.Context, namespace string, vector []float32, filters map[string]string, limit int) ([]models.VectorMatch, error) {
	dimension, err := r.namespaceDimension(ctx, namespace)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(vector) != dimension {
		return nil, fmt.Errorf("%w: namespace %s has dimension %d, got %d", ErrDimensionMismatch, namespace, dimension, len(vector))
	}

	embedding := pgtype.FlatArray[float32](vector)

	query := squirrel.Select("key", "content", "topic_id", "file_id").
		Column(squirrel.Expr("1 - (embedding <=> ?::vector) AS score", embedding)).
		From("vector_entries").
		Where(squirrel.Eq{"namespace": namespace}).
		OrderBy("score DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	for name, value := range filters {
		column, ok := filterColumns[name]
		if !ok {
			return nil, fmt.Errorf("unknown filter %q", name)
		}
		query = query.Where(squirrel.Eq{column: value})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.VectorMatch
	for rows.Next() {
		var m models.VectorMatch
		var topicID, fileID string
		if err := rows.Scan(&m.Key, &m.Content, &topicID, &fileID, &m.Score); err != nil {
			return nil, err
		}
		m.Filters = map[string]string{
			models.FilterTopicID: topicID,
			models.FilterFileID:  fileID,
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// DeleteNamespace drops the namespace and all of its entries.
func (r *VectorRepository) DeleteNamespace(ctx context.Context, namespace string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	entriesSQL, entriesArgs, err := squirrel.Delete("vector_entries").
		Where(squirrel.Eq{"namespace": namespace}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, entriesSQL, entriesArgs...); err != nil {
		return err
	}

	nsSQL, nsArgs, err := squirrel.Delete("vector_namespaces").
		Where(squirrel.Eq{"namespace": namespace}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, nsSQL, nsArgs...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *VectorRepository) DeleteByKey(ctx context.Context, namespace, key string) error {
	sql, args, err := squirrel.Delete("vector_entries").
		Where(squirrel.Eq{"namespace": namespace, "key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
