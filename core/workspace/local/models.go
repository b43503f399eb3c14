package local

import "time"

// recordRow is a persisted workspace record.
type recordRow struct {
	Seq        uint      `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"uniqueIndex;size:64"`
	Collection string    `gorm:"index;size:128"`
	Icon       string    `gorm:"size:512"`
	Cover      string    `gorm:"size:512"`
	Properties string    `gorm:"type:text"`
	Archived   bool      `gorm:"index"`
	CreatedAt  time.Time
}

func (recordRow) TableName() string { return "workspace_records" }

// blockRow is a persisted content node. Position orders siblings under ParentID.
type blockRow struct {
	Seq           uint   `gorm:"primaryKey;autoIncrement"`
	ID            string `gorm:"uniqueIndex;size:64"`
	ParentID      string `gorm:"index;size:64"`
	ParentIsBlock bool
	Position      int
	Payload       string `gorm:"type:text"`
}

func (blockRow) TableName() string { return "workspace_blocks" }

// Models returns the gorm models of the workspace tables.
func Models() []any {
	return []any{&recordRow{}, &blockRow{}}
}

// blockPayload is the content part of a block stored as JSON.
type blockPayload struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
	Emoji string `json:"emoji,omitempty"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}
