package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EntityUser     = "user"
	EntityProduct  = "product"
	EntityCategory = "category"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

const (
	EventTypeUserCreated     = EntityUser + "." + ActionCreated
	EventTypeUserUpdated     = EntityUser + "." + ActionUpdated
	EventTypeUserDeleted     = EntityUser + "." + ActionDeleted
	EventTypeProductCreated  = EntityProduct + "." + ActionCreated
	EventTypeProductUpdated  = EntityProduct + "." + ActionUpdated
	EventTypeProductDeleted  = EntityProduct + "." + ActionDeleted
	EventTypeCategoryCreated = EntityCategory + "." + ActionCreated
	EventTypeCategoryUpdated = EntityCategory + "." + ActionUpdated
	EventTypeCategoryDeleted = EntityCategory + "." + ActionDeleted
)

// CatalogEventTypes lists every event a catalog mutation can emit.
var CatalogEventTypes = []string{
	EventTypeUserCreated, EventTypeUserUpdated, EventTypeUserDeleted,
	EventTypeProductCreated, EventTypeProductUpdated, EventTypeProductDeleted,
	EventTypeCategoryCreated, EventTypeCategoryUpdated, EventTypeCategoryDeleted,
}

// EntityChangedEvent is published after a catalog write has been committed.
type EntityChangedEvent struct {
	BaseEvent
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	EntityID int64  `json:"entity_id"`
	Actor    string `json:"actor"`
}

func NewEntityChangedEvent(entity, action string, entityID int64, actor string) *EntityChangedEvent {
	return &EntityChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      entity + "." + action,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity":    entity,
				"action":    action,
				"entity_id": entityID,
				"actor":     actor,
			},
		},
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		Actor:    actor,
	}
}
