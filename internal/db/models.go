package db

import "time"

type BoardRole string

const (
	BoardRoleOwner  BoardRole = "owner"
	BoardRoleEditor BoardRole = "editor"
)

type User struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Password    string    `db:"password"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}

type Board struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type BoardMember struct {
	BoardID string    `db:"board_id"`
	UserID  string    `db:"user_id"`
	Role    BoardRole `db:"role"`
}

// MemberRow is a board member joined with its user.
type MemberRow struct {
	UserID      string    `db:"user_id"`
	Role        BoardRole `db:"role"`
	DisplayName string    `db:"display_name"`
	Email       string    `db:"email"`
}

// ElementRow is the stored form of one element: its kind, text, paint order
// and the plain x/y/width/height/rotation record of its transform.
type ElementRow struct {
	BoardID  string  `db:"board_id"`
	ID       string  `db:"id"`
	Kind     string  `db:"kind"`
	X        float64 `db:"x"`
	Y        float64 `db:"y"`
	Width    float64 `db:"width"`
	Height   float64 `db:"height"`
	Rotation float64 `db:"rotation"`
	Text     string  `db:"text"`
	Z        int32   `db:"z"`
}

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

type CreateBoardParams struct {
	ID      string
	Name    string
	OwnerID string
}

type BoardMemberParams struct {
	BoardID string
	UserID  string
	Role    BoardRole
}
