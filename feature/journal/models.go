package journal

import "time"

// Kinds of journal records.
const (
	KindAdded   = "added"
	KindRemoved = "removed"
)

// Record is one persisted lifecycle event of a mirrored item.
type Record struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Session    string    `gorm:"column:session;size:36;index" json:"session"`
	Provider   string    `gorm:"column:provider;size:32;index:idx_journal_item" json:"provider"`
	ItemKey    string    `gorm:"column:item_key;size:255;index:idx_journal_item" json:"key"`
	Kind       string    `gorm:"column:kind;size:16" json:"kind"`
	Name       string    `gorm:"column:name;size:255" json:"name,omitempty"`
	Detail     string    `gorm:"column:detail;size:1024" json:"detail,omitempty"`
	Cycle      uint64    `gorm:"column:cycle" json:"cycle"`
	OccurredAt time.Time `gorm:"column:occurred_at;index" json:"occurred_at"`
}

// TableName overrides the table name used by Record.
func (Record) TableName() string {
	return "journal_records"
}

// columns lists the columns the journal reads and writes.
var columns = []string{"id", "session", "provider", "item_key", "kind", "name", "detail", "cycle", "occurred_at"}
