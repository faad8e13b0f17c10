package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/akeren/gatherly-web/internal/models"
	apperrors "github.com/akeren/gatherly-web/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLStore inserts rows straight into a relational database.
type SQLStore struct {
	db    *gorm.DB
	table string
}

func NewSQLStore(db *gorm.DB, table string) *SQLStore {
	if strings.TrimSpace(table) == "" {
		table = models.WaitlistTableName
	}
	return &SQLStore{db: db, table: table}
}

func (s *SQLStore) InsertWaitlistEntry(ctx context.Context, entry Entry) error {
	row := &models.WaitlistEntry{
		Email: entry.Email,
		Name:  entry.Name,
	}

	err := s.db.WithContext(ctx).Table(s.table).Create(row).Error
	if err == nil {
		return nil
	}

	return translateSQLError(err)
}

func translateSQLError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err) || strings.Contains(err.Error(), UniqueViolationCode) {
		return &Error{
			Code:    UniqueViolationCode,
			Message: "duplicate key value violates unique constraint",
		}
	}

	return &TransportError{Op: "insert", Err: err}
}
