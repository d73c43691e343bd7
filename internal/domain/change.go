package domain

import "time"

// Stream names
const (
	StreamVehicleLocationChanges = "stream:vehicle_locations:changes"
)

// ChangeStreamName - Redis Stream, в который ретранслируются изменения коллекции
func ChangeStreamName(collection string) string {
	return "stream:" + collection + ":changes"
}

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	// ChangeResync is emitted after the notification connection was
	// re-established; events in between may have been lost.
	ChangeResync ChangeType = "RESYNC"
)

// ChangeMask selects which change types a subscription receives.
type ChangeMask uint8

const (
	MaskInsert ChangeMask = 1 << iota
	MaskUpdate
	MaskDelete

	MaskAll = MaskInsert | MaskUpdate | MaskDelete
)

// Matches reports whether t passes the mask. Resync always passes.
func (m ChangeMask) Matches(t ChangeType) bool {
	switch t {
	case ChangeInsert:
		return m&MaskInsert != 0
	case ChangeUpdate:
		return m&MaskUpdate != 0
	case ChangeDelete:
		return m&MaskDelete != 0
	case ChangeResync:
		return true
	}
	return false
}

// ChangeEvent - уведомление об изменении в коллекции хранилища
type ChangeEvent struct {
	Type       ChangeType `json:"type"`
	Collection string     `json:"collection"`
	RecordID   string     `json:"record_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
