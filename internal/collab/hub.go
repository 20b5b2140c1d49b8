package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/engine"
)

var ErrHubStopped = errors.New("hub stopped")

const saveTimeout = 10 * time.Second

// BoardLoader fetches the stored board when its room opens.
type BoardLoader func(ctx context.Context, boardID string) (*document.Board, error)

// BoardSaver persists a room's board.
type BoardSaver func(ctx context.Context, board *document.Board) error

type Room struct {
	boardID  string
	mu       sync.RWMutex
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *BoardState

	// opMu keeps apply and broadcast of one message together so that every
	// client sees operations in server sequence order.
	opMu sync.Mutex

	// discarded is set when the board is gone; the room is never saved again.
	discarded atomic.Bool
}

func NewRoom(board *document.Board, opts ...engine.Option) *Room {
	return &Room{
		boardID:  board.ID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		state:    NewBoardState(board, opts...),
	}
}

// State returns the room's board state.
func (r *Room) State() *BoardState { return r.state }

func (r *Room) broadcast(msg *Message, excludeClientID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

func (r *Room) sendTo(c *Client, msg *Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.clients[c.ClientID]; ok {
		c.Send(msg)
	}
}

func (r *Room) has(c *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[c.ClientID]
	return ok
}

// remove takes c out of the room and closes its send channel, queueing
// farewell first when it is not nil. removed is false when c had already
// left.
func (r *Room) remove(c *Client, farewell *Message) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ClientID]; !ok {
		return false, len(r.clients) == 0
	}
	if farewell != nil {
		c.Send(farewell)
	}
	delete(r.clients, c.ClientID)
	close(c.send)
	return true, len(r.clients) == 0
}

func (r *Room) clientsWhere(match func(*Client) bool) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Client
	for _, c := range r.clients {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	register   chan *Client
	unregister chan *Client

	load       BoardLoader
	save       BoardSaver
	engineOpts []engine.Option

	stop     chan struct{}
	stopOnce sync.Once
	saves    sync.WaitGroup
}

// NewHub creates a hub. A nil saver keeps boards in memory only.
func NewHub(load BoardLoader, save BoardSaver, engineOpts ...engine.Option) *Hub {
	if load == nil {
		load = func(_ context.Context, boardID string) (*document.Board, error) {
			return document.NewBoard(boardID, "", ""), nil
		}
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		load:       load,
		save:       save,
		engineOpts: engineOpts,
		stop:       make(chan struct{}),
	}
}

// Run processes joins and leaves until ctx is done or Stop is called, then
// saves every dirty room.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.Stop()
			h.shutdown()
			return nil
		case <-h.stop:
			h.shutdown()
			return nil
		}
	}
}

// Stop ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Hub) shutdown() {
	h.saves.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.SaveAll(ctx); err != nil {
		slog.Error("save boards on shutdown", "error", err)
	}
}

// Register opens the client's room, loading the board if needed, and queues
// the join.
func (h *Hub) Register(ctx context.Context, client *Client) error {
	room, err := h.ensureRoom(ctx, client.BoardID)
	if err != nil {
		return err
	}
	client.room = room

	select {
	case h.register <- client:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stop:
		return ErrHubStopped
	}
}

// Unregister queues a leave.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

func (h *Hub) ensureRoom(ctx context.Context, boardID string) (*Room, error) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	h.mu.RUnlock()
	if ok {
		return room, nil
	}

	board, err := h.load(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", boardID, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[boardID]; ok {
		return room, nil
	}
	room = NewRoom(board, h.engineOpts...)
	h.rooms[boardID] = room
	return room, nil
}

// Room returns the open room for boardID.
func (h *Hub) Room(boardID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[boardID]
	return room, ok
}

// Snapshot returns the live board of an open room.
func (h *Hub) Snapshot(boardID string) (*document.Board, int64, bool) {
	room, ok := h.Room(boardID)
	if !ok {
		return nil, 0, false
	}
	board, seq := room.state.Snapshot()
	return board, seq, true
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		// The room emptied between Register and now; reopen it.
		room = client.room
		if !room.discarded.Load() {
			h.rooms[client.BoardID] = room
		}
	}
	client.room = room
	h.mu.Unlock()

	room.mu.Lock()
	if room.discarded.Load() {
		room.mu.Unlock()
		close(client.send)
		return
	}
	room.clients[client.ClientID] = client
	room.mu.Unlock()

	room.sendTo(client, newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
		BoardID:  client.BoardID,
	}))

	board, seq := room.state.Snapshot()
	syncMsg := newMessage(TypeDocSync, DocSyncPayload{Board: board, ServerSeq: seq})
	syncMsg.Seq = seq
	room.sendTo(client, syncMsg)

	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		room.sendTo(client, stateMsg)
	}

	// Broadcast join to other clients
	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	joinMsg.ClientID = client.ClientID
	room.broadcast(joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) removeClient(client *Client) {
	room := client.room
	if room == nil {
		return
	}
	removed, empty := room.remove(client, nil)
	if !removed {
		return
	}
	h.clientLeft(room, client, empty)
}

func (h *Hub) clientLeft(room *Room, client *Client, empty bool) {
	room.presence.Remove(client.ClientID)
	room.state.ReleaseClient(client.ClientID)

	if empty && !room.discarded.Load() {
		h.closeAsync(room)
	}

	// Broadcast leave to remaining clients
	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leaveMsg.UserID = client.UserID
	leaveMsg.ClientID = client.ClientID
	room.broadcast(leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "board", client.BoardID)
}

// Close drops the open room for boardID without saving it and disconnects
// its clients. It is used when the board no longer exists.
func (h *Hub) Close(boardID string) {
	h.mu.Lock()
	room, ok := h.rooms[boardID]
	if ok {
		delete(h.rooms, boardID)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	room.discarded.Store(true)

	farewell := newMessage(TypeError, ErrorPayload{Code: CodeBoardClosed, Message: "board deleted"})
	for _, c := range room.clientsWhere(func(*Client) bool { return true }) {
		if removed, _ := room.remove(c, farewell); removed {
			room.presence.Remove(c.ClientID)
			room.state.ReleaseClient(c.ClientID)
		}
	}
	slog.Info("room closed", "board", boardID)
}

// Kick disconnects every client userID has open on boardID.
func (h *Hub) Kick(boardID, userID string) {
	room, ok := h.Room(boardID)
	if !ok {
		return
	}
	farewell := newMessage(TypeError, ErrorPayload{Code: CodeRemoved, Message: "removed from board"})
	for _, c := range room.clientsWhere(func(c *Client) bool { return c.UserID == userID }) {
		if removed, empty := room.remove(c, farewell); removed {
			h.clientLeft(room, c, empty)
		}
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room := sender.room
	if room == nil || !room.has(sender) {
		return
	}

	if msg.Type == TypePresenceUpdate {
		h.handlePresenceUpdate(sender, msg)
		return
	}

	actor := Actor{
		ClientID:  sender.ClientID,
		UserID:    sender.UserID,
		Selection: room.presence.Selection(sender.ClientID),
	}

	room.opMu.Lock()
	defer room.opMu.Unlock()

	out, reply := room.state.Apply(actor, msg)
	if reply != nil {
		if reply.Type == TypeOpNack {
			slog.Warn("operation rejected", "type", msg.Type, "user", sender.UserID, "board", sender.BoardID, "reason", string(reply.Payload))
		}
		room.sendTo(sender, reply)
	}
	for _, m := range out {
		room.broadcast(m, "")
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName
	sender.room.presence.Update(sender.ClientID, &presence)

	// Broadcast to other clients in room
	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	outMsg.ClientID = sender.ClientID
	sender.room.broadcast(outMsg, sender.ClientID)
}

// SaveAll persists every dirty open room.
func (h *Hub) SaveAll(ctx context.Context) error {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	var errs []error
	for _, r := range rooms {
		if err := h.saveRoom(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Autosave calls SaveAll every interval until ctx is done.
func (h *Hub) Autosave(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := h.SaveAll(ctx); err != nil {
				slog.Error("autosave", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (h *Hub) saveRoom(ctx context.Context, r *Room) error {
	if h.save == nil || r.discarded.Load() || !r.state.Dirty() {
		return nil
	}
	board, seq := r.state.Snapshot()
	if err := h.save(ctx, board); err != nil {
		return fmt.Errorf("save board %s: %w", r.boardID, err)
	}
	r.state.MarkSaved(seq)
	slog.Debug("board saved", "board", r.boardID, "seq", seq)
	return nil
}

// closeAsync saves an empty room and then drops it from the hub. The room
// stays registered until the save returns, so a client joining meanwhile
// reuses it instead of loading the stored board. A room whose save failed
// stays open for the next SaveAll.
func (h *Hub) closeAsync(r *Room) {
	h.saves.Add(1)
	go func() {
		defer h.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := h.saveRoom(ctx, r); err != nil {
			slog.Error("save board on close", "error", err)
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.rooms[r.boardID] != r {
			return
		}
		r.mu.RLock()
		idle := len(r.clients) == 0
		r.mu.RUnlock()
		if idle && !r.state.Dirty() {
			delete(h.rooms, r.boardID)
		}
	}()
}
