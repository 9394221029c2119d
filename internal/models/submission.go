package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionRecord is the document persisted to the document store for one
// accepted submission. Never mutated after creation; no deletion path.
type SubmissionRecord struct {
	ID          primitive.ObjectID `bson:"_id" json:"-"`
	Fields      map[string]string  `bson:"fields" json:"fields"`
	ImageURL    *string            `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	DocID       string             `bson:"docId" json:"docId"`
	LogRange    string             `bson:"logRange" json:"logRange"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}

// ValueList stores ordered text-field values as a jsonb array.
type ValueList []string

// Value implements driver.Valuer.
func (v ValueList) Value() (driver.Value, error) {
	if v == nil {
		v = ValueList{}
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *ValueList) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		*v = ValueList{}
		return nil
	default:
		return fmt.Errorf("unsupported value list source %T", src)
	}
}

// EntryLogRow is one appended row of the tabular submission log. Values
// holds the text-field values in fixed order.
type EntryLogRow struct {
	ID        int64     `db:"id" json:"id"`
	Values    ValueList `db:"field_values" json:"values"`
	ImageURL  *string   `db:"image_url" json:"imageUrl,omitempty"`
	DocID     string    `db:"doc_id" json:"docId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
