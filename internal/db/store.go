package db

import "context"

// Store is the persistence surface used by the services. Lookups that find
// nothing return pgx.ErrNoRows; unique violations return a *pgconn.PgError
// with code 23505, whichever implementation is behind it.
type Store interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)

	CreateBoard(ctx context.Context, arg CreateBoardParams) (Board, error)
	GetBoard(ctx context.Context, id string) (Board, error)
	ListBoardsForUser(ctx context.Context, userID string) ([]Board, error)
	DeleteBoard(ctx context.Context, id string) error
	TouchBoard(ctx context.Context, id string) error

	AddBoardMember(ctx context.Context, arg BoardMemberParams) error
	GetBoardMember(ctx context.Context, boardID, userID string) (BoardMember, error)
	ListBoardMembers(ctx context.Context, boardID string) ([]MemberRow, error)
	RemoveBoardMember(ctx context.Context, boardID, userID string) error

	ListElements(ctx context.Context, boardID string) ([]ElementRow, error)
	ReplaceElements(ctx context.Context, boardID string, rows []ElementRow) error
}

const uniqueViolation = "23505"
