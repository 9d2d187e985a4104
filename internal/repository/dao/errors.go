package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")

	ErrEventNotFound = errors.New("event not found")

	ErrParticipantNotFound  = errors.New("participant not found")
	ErrParticipantCPFExists = errors.New("a participant with this CPF already exists in the event")

	ErrCredentialNotFound   = errors.New("credential not found")
	ErrCredentialNameExists = errors.New("a credential with this name already exists in the event")

	ErrMovementNotFound   = errors.New("credential movement not found")
	ErrMovementCodeExists = errors.New("credential code is held by another participant")

	ErrOperatorNotFound  = errors.New("operator not found")
	ErrOperatorCPFExists = errors.New("an operator with this CPF already exists")

	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrAttendanceOpenExists = errors.New("an open attendance record already exists on this day")

	ErrRadioLoanNotFound = errors.New("radio loan not found")
)

// isUniqueViolation recognizes duplicate key errors from Postgres and from
// drivers whose errors gorm translates.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
