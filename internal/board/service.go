package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/canvasedit/internal/db"
	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/typeid"
)

var (
	ErrNotFound      = errors.New("board not found")
	ErrForbidden     = errors.New("forbidden")
	ErrNotMember     = errors.New("not a board member")
	ErrUserNotFound  = errors.New("user not found")
	ErrAlreadyMember = errors.New("already a board member")
	ErrRemoveOwner   = errors.New("cannot remove board owner")
)

// LiveBoards exposes boards currently open for editing.
type LiveBoards interface {
	Snapshot(boardID string) (*document.Board, int64, bool)
	// Close drops an open board without saving it.
	Close(boardID string)
	// Kick disconnects a user's open sessions on a board.
	Kick(boardID, userID string)
}

type Service struct {
	store        db.Store
	live         LiveBoards
	playgroundID string
}

// NewService returns a board service. The board with playgroundID is open to
// everyone, starts from the sample board and is never written to the store.
func NewService(store db.Store, playgroundID string) *Service {
	return &Service{store: store, playgroundID: playgroundID}
}

// SetLive lets snapshots prefer the in-memory state of open boards.
func (s *Service) SetLive(live LiveBoards) {
	s.live = live
}

func (s *Service) IsPlayground(boardID string) bool {
	return s.playgroundID != "" && boardID == s.playgroundID
}

type Board struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Snapshot is a board's document at a server sequence number.
type Snapshot struct {
	Board     *document.Board `json:"board"`
	ServerSeq int64           `json:"serverSeq"`
	Live      bool            `json:"live"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Board, error) {
	dbBoard, err := s.store.CreateBoard(ctx, db.CreateBoardParams{
		ID:      typeid.NewBoardID(),
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	err = s.store.AddBoardMember(ctx, db.BoardMemberParams{
		BoardID: dbBoard.ID,
		UserID:  ownerID,
		Role:    db.BoardRoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	return toBoard(dbBoard), nil
}

func (s *Service) Get(ctx context.Context, boardID, userID string) (*Board, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}
	dbBoard, err := s.getBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return toBoard(dbBoard), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Board, error) {
	dbBoards, err := s.store.ListBoardsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	boards := make([]Board, len(dbBoards))
	for i, b := range dbBoards {
		boards[i] = *toBoard(b)
	}
	return boards, nil
}

func (s *Service) Delete(ctx context.Context, boardID, userID string) error {
	if err := s.requireOwner(ctx, boardID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if s.live != nil {
		s.live.Close(boardID)
	}
	return nil
}

func (s *Service) InviteByEmail(ctx context.Context, boardID, ownerID, inviteeEmail string) error {
	if err := s.requireOwner(ctx, boardID, ownerID); err != nil {
		return err
	}

	invitee, err := s.store.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	// Adding is an upsert; an existing member must keep their role.
	if _, err := s.store.GetBoardMember(ctx, boardID, invitee.ID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check membership: %w", err)
	}

	return s.store.AddBoardMember(ctx, db.BoardMemberParams{
		BoardID: boardID,
		UserID:  invitee.ID,
		Role:    db.BoardRoleEditor,
	})
}

func (s *Service) ListMembers(ctx context.Context, boardID, userID string) ([]Member, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}

	rows, err := s.store.ListBoardMembers(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members := make([]Member, len(rows))
	for i, m := range rows {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, boardID, ownerID, targetUserID string) error {
	if err := s.requireOwner(ctx, boardID, ownerID); err != nil {
		return err
	}
	if targetUserID == ownerID {
		return ErrRemoveOwner
	}
	if err := s.store.RemoveBoardMember(ctx, boardID, targetUserID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if s.live != nil {
		s.live.Kick(boardID, targetUserID)
	}
	return nil
}

// Snapshot returns the live document when the board is open, otherwise the
// stored one.
func (s *Service) Snapshot(ctx context.Context, boardID, userID string) (*Snapshot, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}
	if s.live != nil {
		if b, seq, ok := s.live.Snapshot(boardID); ok {
			return &Snapshot{Board: b, ServerSeq: seq, Live: true}, nil
		}
	}
	b, err := s.LoadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Board: b}, nil
}

// LoadBoard reads a board and its elements from the store.
func (s *Service) LoadBoard(ctx context.Context, boardID string) (*document.Board, error) {
	if s.IsPlayground(boardID) {
		return document.NewSampleBoard(boardID), nil
	}
	meta, err := s.getBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListElements(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	return fromRows(meta, rows)
}

// SaveBoard replaces the stored elements of b.
func (s *Service) SaveBoard(ctx context.Context, b *document.Board) error {
	if s.IsPlayground(b.ID) {
		return nil
	}
	if err := s.store.ReplaceElements(ctx, b.ID, toRows(b)); err != nil {
		return fmt.Errorf("replace elements: %w", err)
	}
	return nil
}

// CheckMembership returns nil when userID may open boardID.
func (s *Service) CheckMembership(ctx context.Context, boardID, userID string) error {
	if s.IsPlayground(boardID) {
		return nil
	}
	if userID == "" {
		return ErrNotMember
	}
	_, err := s.store.GetBoardMember(ctx, boardID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, boardID, userID string) error {
	dbBoard, err := s.getBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if dbBoard.OwnerID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) getBoard(ctx context.Context, boardID string) (db.Board, error) {
	dbBoard, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Board{}, ErrNotFound
		}
		return db.Board{}, fmt.Errorf("get board: %w", err)
	}
	return dbBoard, nil
}

func toBoard(b db.Board) *Board {
	return &Board{
		ID:        b.ID,
		Name:      b.Name,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
