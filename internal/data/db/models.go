package db

import "database/sql"

// Record is a row of the records table. Data holds the JSON encoded values.
type Record struct {
	RID       int64
	Kind      string
	Key       sql.NullString
	Data      string
	CreatedAt int64
	UpdatedAt int64
}

// Notification is a row of the notifications table.
type Notification struct {
	ID        int64
	Level     string
	Message   string
	CreatedAt int64
}

// Preference is a row of the preferences table. Value holds JSON.
type Preference struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}
