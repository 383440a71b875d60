package templates

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Template is a predefined bundle of default products used to bootstrap a new app.
type Template struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"not null;uniqueIndex:idx_templates_name"`
	Description string

	// JSON array of ProductDef; fed to the provisioning service on app creation.
	DefaultProducts datatypes.JSON `gorm:"column:default_products"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductDef is one plan definition inside a template (and the input shape of
// the provisioning endpoint). Amount is in minor currency units.
type ProductDef struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Amount      int64    `json:"amount"`
	Interval    string   `json:"interval"`
	Features    []string `json:"features,omitempty"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// DecodeDefaultProducts unpacks the default_products column.
func (t *Template) DecodeDefaultProducts() ([]ProductDef, error) {
	if len(t.DefaultProducts) == 0 {
		return nil, nil
	}
	var defs []ProductDef
	if err := json.Unmarshal(t.DefaultProducts, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}
