package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const createUser = `INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	rows, err := q.db.Query(ctx, createUser, arg.ID, arg.Email, arg.Password, arg.DisplayName)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[User])
}

const getUserByEmail = `SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	rows, err := q.db.Query(ctx, getUserByEmail, email)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[User])
}

const getUserByID = `SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	rows, err := q.db.Query(ctx, getUserByID, id)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[User])
}

const createBoard = `INSERT INTO boards (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, created_at, updated_at`

func (q *Queries) CreateBoard(ctx context.Context, arg CreateBoardParams) (Board, error) {
	rows, err := q.db.Query(ctx, createBoard, arg.ID, arg.Name, arg.OwnerID)
	if err != nil {
		return Board{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Board])
}

const getBoard = `SELECT id, name, owner_id, created_at, updated_at FROM boards WHERE id = $1`

func (q *Queries) GetBoard(ctx context.Context, id string) (Board, error) {
	rows, err := q.db.Query(ctx, getBoard, id)
	if err != nil {
		return Board{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Board])
}

const listBoardsForUser = `SELECT b.id, b.name, b.owner_id, b.created_at, b.updated_at
FROM boards b
JOIN board_members m ON m.board_id = b.id
WHERE m.user_id = $1
ORDER BY b.updated_at DESC`

func (q *Queries) ListBoardsForUser(ctx context.Context, userID string) ([]Board, error) {
	rows, err := q.db.Query(ctx, listBoardsForUser, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Board])
}

const deleteBoard = `DELETE FROM boards WHERE id = $1`

func (q *Queries) DeleteBoard(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, deleteBoard, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const touchBoard = `UPDATE boards SET updated_at = now() WHERE id = $1`

func (q *Queries) TouchBoard(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, touchBoard, id)
	return err
}

const addBoardMember = `INSERT INTO board_members (board_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (board_id, user_id) DO UPDATE SET role = EXCLUDED.role`

func (q *Queries) AddBoardMember(ctx context.Context, arg BoardMemberParams) error {
	_, err := q.db.Exec(ctx, addBoardMember, arg.BoardID, arg.UserID, arg.Role)
	return err
}

const getBoardMember = `SELECT board_id, user_id, role FROM board_members WHERE board_id = $1 AND user_id = $2`

func (q *Queries) GetBoardMember(ctx context.Context, boardID, userID string) (BoardMember, error) {
	rows, err := q.db.Query(ctx, getBoardMember, boardID, userID)
	if err != nil {
		return BoardMember{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[BoardMember])
}

const listBoardMembers = `SELECT m.user_id, m.role, u.display_name, u.email
FROM board_members m
JOIN users u ON u.id = m.user_id
WHERE m.board_id = $1
ORDER BY u.display_name`

func (q *Queries) ListBoardMembers(ctx context.Context, boardID string) ([]MemberRow, error) {
	rows, err := q.db.Query(ctx, listBoardMembers, boardID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[MemberRow])
}

const removeBoardMember = `DELETE FROM board_members WHERE board_id = $1 AND user_id = $2`

func (q *Queries) RemoveBoardMember(ctx context.Context, boardID, userID string) error {
	_, err := q.db.Exec(ctx, removeBoardMember, boardID, userID)
	return err
}

const listElements = `SELECT board_id, id, kind, x, y, width, height, rotation, text, z
FROM elements WHERE board_id = $1 ORDER BY z`

func (q *Queries) ListElements(ctx context.Context, boardID string) ([]ElementRow, error) {
	rows, err := q.db.Query(ctx, listElements, boardID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ElementRow])
}

const deleteElements = `DELETE FROM elements WHERE board_id = $1`

const insertElement = `INSERT INTO elements (board_id, id, kind, x, y, width, height, rotation, text, z)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// writeElements replaces the board's rows. Run it inside a transaction.
func (q *Queries) writeElements(ctx context.Context, boardID string, rows []ElementRow) error {
	if _, err := q.db.Exec(ctx, deleteElements, boardID); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertElement, boardID, r.ID, r.Kind, r.X, r.Y, r.Width, r.Height, r.Rotation, r.Text, r.Z)
	}
	br := q.db.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
