package http

import (
	"context"
	"errors"
	"time"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	changeBufferSize = 64
	wsPingInterval   = 30 * time.Second
	wsWriteTimeout   = 10 * time.Second
)

// ReplayChanges handles GET /changes/:collection?since=&limit=, returning stored
// changes after the given stream id.
func (h *Handler) ReplayChanges(c *fiber.Ctx) error {
	collection, err := collectionParam(c)
	if err != nil {
		return respondError(c, err)
	}

	changes, err := h.Realtime.Replay(c.UserContext(), collection, c.Query("since"), int64(c.QueryInt("limit", 500)))
	if err != nil {
		if errors.Is(err, usecase.ErrChangeStreamDisabled) {
			return respondError(c, apperrors.NewAppError(apperrors.ErrorTypeInfrastructure,
				"Change stream not configured", fiber.StatusServiceUnavailable).WithCause(err))
		}
		return err
	}
	if changes == nil {
		changes = []model.StoredChange{}
	}
	return c.JSON(changes)
}

// streamChanges pushes record changes for ?collections=a,b (all allow-listed
// collections when omitted) until the client goes away.
func (h *Handler) streamChanges(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collections := model.ParseCollections(conn.Query("collections"))
	if len(collections) == 0 {
		collections = model.AllowedCollections()
	}

	subscriberID := uuid.NewString()
	events := make(chan model.StoredChange, changeBufferSize)
	h.Realtime.Subscribe(ctx, subscriberID, collections, events)
	defer h.Realtime.Unsubscribe(ctx, subscriberID)

	log := h.Log.WithFields(map[string]interface{}{"subscriber": subscriberID})
	log.Infof("websocket subscribed to %v", collections)

	// reader: the client sends nothing we act on, reading only detects close
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warnf("websocket read: %v", err)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("websocket closed")
			return
		case change := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(change); err != nil {
				log.Warnf("websocket write: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
