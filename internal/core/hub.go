package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/beamlabs/beamchat-server/internal/store"
)

type clientCommand struct {
	client *Client
	cmd    *Command
}

type queryKind int

const (
	queryOnlineUsers queryKind = iota
	queryLastActive
)

type query struct {
	kind   queryKind
	userID string
	reply  chan queryResult
}

type queryResult struct {
	users      []string
	lastActive time.Time
	ok         bool
}

// Hub is the single event-processing actor. It exclusively owns the
// presence registry, the channel router and the delivery state machine;
// every mutation is serialized through its Run loop, so none of the core
// maps need locking. Gateway calls are fire-and-forget and never block the
// loop.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	updates    chan *StatusUpdate
	queries    chan query

	clients    map[*Client]struct{}
	presence   *Presence
	router     *Router
	dispatcher *Dispatcher
	delivery   *Delivery

	store store.Store
	log   *zerolog.Logger
	now   func() time.Time
}

// NewHub creates a hub over the given store. Both arguments may be nil in
// tests; a nil store keeps all state in memory.
func NewHub(st store.Store, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	var messages store.MessageStore
	if st != nil {
		messages = st
	}
	router := NewRouter()
	h := &Hub{
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		commands:   make(chan clientCommand, 256),
		updates:    make(chan *StatusUpdate, 64),
		queries:    make(chan query, 16),
		clients:    make(map[*Client]struct{}),
		presence:   NewPresence(),
		router:     router,
		dispatcher: NewDispatcher(router),
		store:      st,
		log:        logger,
		now:        time.Now,
	}
	h.delivery = NewDelivery(messages, logger, func() time.Time { return h.now() })
	return h
}

// Run processes events until the context is cancelled. Must be started
// exactly once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.dispatcher.Track(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cc := <-h.commands:
			if _, ok := h.clients[cc.client]; ok {
				h.handleCommand(cc.client, cc.cmd)
			}
		case up := <-h.updates:
			h.dispatcher.ToChannels(
				&Event{Kind: EventMessageStatusUpdate, Update: up},
				DirectChannel(up.SenderID),
			)
		case q := <-h.queries:
			h.handleQuery(q)
		}
	}
}

// RegisterClient attaches a connection to the hub and starts pumping its
// commands into the event loop, preserving per-connection arrival order.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
	go func() {
		for cmd := range c.Commands {
			h.commands <- clientCommand{client: c, cmd: cmd}
		}
	}()
}

// UnregisterClient detaches a connection. Terminal for the handle: channel
// memberships and the presence entry (if still current) are cleaned up and
// an offline broadcast goes out. The caller must not send further commands.
func (h *Hub) UnregisterClient(c *Client) {
	close(c.Commands)
	h.unregister <- c
}

// OnlineUsers returns the current online snapshot via the event loop, so
// external readers never touch the presence map directly.
func (h *Hub) OnlineUsers(ctx context.Context) ([]string, error) {
	q := query{kind: queryOnlineUsers, reply: make(chan queryResult, 1)}
	select {
	case h.queries <- q:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-q.reply:
		return res.users, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LastActive returns the in-memory last-active timestamp for a user, if
// one was ever recorded in this process.
func (h *Hub) LastActive(ctx context.Context, userID string) (time.Time, bool, error) {
	q := query{kind: queryLastActive, userID: userID, reply: make(chan queryResult, 1)}
	select {
	case h.queries <- q:
	case <-ctx.Done():
		return time.Time{}, false, ctx.Err()
	}
	select {
	case res := <-q.reply:
		return res.lastActive, res.ok, nil
	case <-ctx.Done():
		return time.Time{}, false, ctx.Err()
	}
}

func (h *Hub) handleQuery(q query) {
	switch q.kind {
	case queryOnlineUsers:
		q.reply <- queryResult{users: h.presence.Snapshot()}
	case queryLastActive:
		t, ok := h.presence.LastActive(q.userID)
		q.reply <- queryResult{lastActive: t, ok: ok}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	now := h.now()
	h.presence.Touch(c.UserID, c, now)

	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(c, cmd, now)
	case CommandJoinGroup:
		h.router.Subscribe(c, GroupChannel(cmd.GroupID))
	case CommandLeaveGroup:
		h.router.Unsubscribe(c, GroupChannel(cmd.GroupID))
	case CommandPrivateMessage:
		h.handlePrivateMessage(c, cmd)
	case CommandGroupMessage:
		msg := cmd.Message
		msg.From = c.UserID
		msg.GroupID = cmd.GroupID
		h.dispatcher.ToChannels(
			&Event{Kind: EventGroupMessage, Message: &msg, GroupID: cmd.GroupID},
			GroupChannel(cmd.GroupID),
		)
	case CommandMessageDeleted:
		h.dispatcher.ToChannels(
			&Event{Kind: EventMessageDeleted, MessageID: cmd.MessageID, From: c.UserID, To: cmd.UserID},
			DirectChannel(cmd.UserID), DirectChannel(c.UserID),
		)
	case CommandGroupMessageDeleted:
		h.dispatcher.ToChannels(
			&Event{Kind: EventGroupMessageDeleted, MessageID: cmd.MessageID, GroupID: cmd.GroupID},
			GroupChannel(cmd.GroupID),
		)
	case CommandMessageRead:
		h.delivery.MarkRead(cmd.MessageID, c.UserID, h.updates)
	case CommandNotificationDeleted:
		h.dispatcher.ToChannels(
			&Event{Kind: EventNotificationDeleted, NotificationID: cmd.NotificationID, To: cmd.UserID},
			DirectChannel(cmd.UserID),
		)
	case CommandAllNotificationsDeleted:
		h.dispatcher.ToChannels(
			&Event{Kind: EventAllNotificationsDeleted, To: cmd.UserID},
			DirectChannel(cmd.UserID),
		)
	case CommandGetOnlineUsers:
		snapshot := h.presence.Snapshot()
		h.dispatcher.ToClient(c, &Event{Kind: EventOnlineUsers, Users: snapshot})
		// Also refresh everyone else, matching client expectations.
		h.dispatcher.Broadcast(&Event{Kind: EventOnlineUsers, Users: snapshot})
	default:
		h.dispatcher.ToClient(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeBadRequest, "unknown command"),
		})
	}
}

func (h *Hub) handleJoin(c *Client, cmd *Command, now time.Time) {
	if cmd.UserID == "" {
		h.dispatcher.ToClient(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeBadRequest, "userId is required"),
		})
		return
	}
	if cmd.UserID != c.UserID {
		h.dispatcher.ToClient(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeUnauthorized, "join does not match authenticated user"),
		})
		return
	}

	prev := h.presence.Join(c.UserID, c, now)
	if prev != nil {
		// The superseded handle leaves the direct channel so the user's
		// channel resolves to the newest connection only.
		h.router.Unsubscribe(prev, DirectChannel(c.UserID))
	}
	h.router.Subscribe(c, DirectChannel(c.UserID))

	h.persistPresence(c.UserID, true, now)

	h.dispatcher.Broadcast(&Event{
		Kind:     EventUserStatusChange,
		Presence: &PresenceChange{UserID: c.UserID, Status: "online", LastActive: now},
	})
	h.dispatcher.Broadcast(&Event{Kind: EventOnlineUsers, Users: h.presence.Snapshot()})

	h.log.Debug().Str("user_id", c.UserID).Str("conn_id", c.ID).Msg("user joined")
}

func (h *Hub) handlePrivateMessage(c *Client, cmd *Command) {
	msg := cmd.Message
	msg.From = c.UserID
	if msg.To == "" {
		h.dispatcher.ToClient(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeBadRequest, "message receiver is required"),
		})
		return
	}

	// The online check and the transition happen on the hub goroutine, so a
	// disconnect racing this send is ordered either fully before or fully
	// after it.
	online := h.presence.IsOnline(msg.To)
	h.delivery.EvaluateSend(&msg, online)

	h.dispatcher.ToChannels(
		&Event{Kind: EventPrivateMessage, Message: &msg, From: msg.From, To: msg.To},
		DirectChannel(msg.To), DirectChannel(msg.From),
	)
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	h.dispatcher.Forget(c)
	h.router.DropClient(c)

	now := h.now()
	if c.UserID != "" && h.presence.Leave(c.UserID, c, now) {
		h.persistPresence(c.UserID, false, now)
		h.dispatcher.Broadcast(&Event{
			Kind:     EventUserStatusChange,
			Presence: &PresenceChange{UserID: c.UserID, Status: "offline", LastActive: now},
		})
		h.dispatcher.Broadcast(&Event{Kind: EventOnlineUsers, Users: h.presence.Snapshot()})
		h.log.Debug().Str("user_id", c.UserID).Str("conn_id", c.ID).Msg("user went offline")
	}

	close(c.Events)
}

// persistPresence mirrors the in-memory presence change to the gateway.
// Best-effort: a failure is logged and never rolls back registry state.
func (h *Hub) persistPresence(userID string, online bool, at time.Time) {
	if h.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := h.store.SetUserPresence(ctx, userID, online, at); err != nil {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("persist user presence")
		}
	}()
}
