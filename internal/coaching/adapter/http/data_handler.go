package http

import (
	"context"
	"errors"

	"coach-portal/internal/coaching/domain/model"
	"coach-portal/internal/coaching/usecase"
	apperrors "coach-portal/internal/shared/errors"
	"coach-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

func invalidCollection() error {
	return apperrors.NewValidationError("Invalid collection").WithCause(apperrors.ErrUnknownCollection)
}

func missingID() error {
	return apperrors.NewValidationError("ID is required").WithCause(apperrors.ErrMissingID)
}

// collectionParam returns the allow-listed collection from the path.
func collectionParam(c *fiber.Ctx) (string, error) {
	name := c.Params("collection")
	if !model.IsAllowedCollection(name) {
		return "", invalidCollection()
	}
	return name, nil
}

// operationContext tags the request context so store and handler logs carry the operation.
func operationContext(c *fiber.Ctx, op string) context.Context {
	return utils.WithOperation(c.UserContext(), "data."+op)
}

// firstQueryFilter returns the first query parameter as a field=value filter.
// Only one filter field is honored.
func firstQueryFilter(c *fiber.Ctx) (field, value string, ok bool) {
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if ok {
			return
		}
		field, value, ok = string(k), string(v), true
	})
	return field, value, ok
}

// ListRecords handles GET /data/:collection[?field=value].
func (h *Handler) ListRecords(c *fiber.Ctx) error {
	collection, err := collectionParam(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := operationContext(c, "list")

	records := h.Store.ReadAll(ctx, collection, []model.Record{})
	if field, value, ok := firstQueryFilter(c); ok {
		records = usecase.FilterRecords(records, field, value)
	}
	return c.JSON(records)
}

// CreateRecord handles POST /data/:collection.
func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	collection, err := collectionParam(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := operationContext(c, "create")

	body, err := parseRecord(c)
	if err != nil {
		return respondError(c, err)
	}

	stored, err := h.Store.Insert(ctx, collection, body)
	if err != nil {
		return err
	}

	h.Log.WithContext(ctx).WithFields(map[string]interface{}{
		"collection": collection,
		"id":         stored.ID(),
	}).Debug("record created")
	return c.Status(fiber.StatusCreated).JSON(stored)
}

// UpdateRecord handles PUT /data/:collection with {id, ...partial}.
func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	collection, err := collectionParam(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := operationContext(c, "update")

	body, err := parseRecord(c)
	if err != nil {
		return respondError(c, err)
	}
	id := body.ID()
	if id == "" {
		return respondError(c, missingID())
	}

	partial := body.Clone()
	delete(partial, "id")
	merged, err := h.Store.Update(ctx, collection, id, partial)
	if err != nil {
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			return respondError(c, apperrors.NewNotFoundError("Item").WithCause(err))
		}
		return err
	}
	return c.JSON(merged)
}

// DeleteRecord handles DELETE /data/:collection?id=. It answers success whether
// or not a row existed.
func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	collection, err := collectionParam(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := operationContext(c, "delete")

	id := c.Query("id")
	if id == "" {
		return respondError(c, missingID())
	}

	existed, err := h.Store.Delete(ctx, collection, id)
	if err != nil {
		return err
	}
	if !existed {
		h.Log.WithContext(ctx).Debugf("delete %s/%s: no such record", collection, id)
	}
	return c.JSON(fiber.Map{"success": true})
}

func parseRecord(c *fiber.Ctx) (model.Record, error) {
	var body model.Record
	if len(c.Body()) > 0 {
		if err := c.App().Config().JSONDecoder(c.Body(), &body); err != nil {
			return nil, apperrors.NewValidationError("Invalid JSON body").WithCause(apperrors.ErrInvalidInput)
		}
	}
	if body == nil {
		body = model.Record{}
	}
	return body, nil
}
