package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TableStatus tracks a registered table's lifecycle.
type TableStatus string

const (
	TableStatusActive   TableStatus = "active"
	TableStatusInactive TableStatus = "inactive"
)

// DeclaredColumn is one column of a user-declared schema as it travels over
// the API and into storage.
type DeclaredColumn struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Nullable bool   `json:"nullable"`
}

// DeclaredSchema is a user-declared schema. A nil slice means the caller
// declared nothing and schema inference applies.
type DeclaredSchema []DeclaredColumn

// Value implements driver.Valuer for GORM
func (ds DeclaredSchema) Value() (driver.Value, error) {
	if ds == nil {
		return nil, nil
	}
	return json.Marshal(ds)
}

// Scan implements sql.Scanner for GORM
func (ds *DeclaredSchema) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ds)
	case string:
		return json.Unmarshal([]byte(v), ds)
	default:
		return fmt.Errorf("cannot scan %T into DeclaredSchema", value)
	}
}

// StringMap is a JSON-encoded string map column.
type StringMap map[string]string

// Value implements driver.Valuer for GORM
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for GORM
func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into StringMap", value)
	}
}

// StringSlice is a JSON-encoded string list column.
type StringSlice []string

// Value implements driver.Valuer for GORM
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for GORM
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// StorageConfig is the JSON-encoded storage backend selection for a table.
type StorageConfig struct {
	Backend    string `json:"backend" binding:"required"`
	Endpoint   string `json:"endpoint,omitempty"`
	Region     string `json:"region,omitempty"`
	Bucket     string `json:"bucket,omitempty"`
	AccessKey  string `json:"accessKey,omitempty"`
	SecretKey  string `json:"secretKey,omitempty"`
	Token      string `json:"token,omitempty"`
	Secure     bool   `json:"secure,omitempty"`
	NameNode   string `json:"nameNode,omitempty"`
	User       string `json:"user,omitempty"`
	AccountURL string `json:"accountUrl,omitempty"`
	Container  string `json:"container,omitempty"`
}

// Value implements driver.Valuer for GORM
func (sc StorageConfig) Value() (driver.Value, error) {
	return json.Marshal(sc)
}

// Scan implements sql.Scanner for GORM
func (sc *StorageConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, sc)
	case string:
		return json.Unmarshal([]byte(v), sc)
	default:
		return fmt.Errorf("cannot scan %T into StorageConfig", value)
	}
}

// TableDefinition is a registered file-backed table: where its files live,
// which format reads them and, optionally, the declared schema.
type TableDefinition struct {
	ID             string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name           string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Format         string         `gorm:"size:64;not null" json:"format"`
	Roots          StringSlice    `gorm:"type:json;not null" json:"roots"`
	Options        StringMap      `gorm:"type:json" json:"options,omitempty"`
	Storage        StorageConfig  `gorm:"type:json;not null" json:"storage"`
	DeclaredSchema DeclaredSchema `gorm:"type:json" json:"declaredSchema,omitempty"`
	Status         TableStatus    `gorm:"type:enum('active','inactive');default:'active'" json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// TableName returns the table name for the TableDefinition model
func (TableDefinition) TableName() string {
	return "table_definitions"
}

// BeforeCreate generates a new UUID if ID is empty
func (td *TableDefinition) BeforeCreate(tx *gorm.DB) error {
	if td.ID == "" {
		td.ID = uuid.New().String()
	}
	return nil
}
