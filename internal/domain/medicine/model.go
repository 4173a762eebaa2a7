package medicine

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sariva/clinic/pkg/dates"
)

const (
	defaultMinimumStock = 10
	expiringSoonWindow  = 30 * 24 * time.Hour
)

// clock is read when serialising derived flags.
var clock = time.Now

type Medicine struct {
	ID            uuid.UUID `json:"_id"`
	Name          string    `json:"name"`
	GenericName   string    `json:"genericName"`
	Category      string    `json:"category"`
	BatchNumber   string    `json:"batchNumber"`
	ExpiryDate    time.Time `json:"expiryDate"`
	StockQuantity int       `json:"stockQuantity"`
	MinimumStock  int       `json:"minimumStock"`
	Price         float64   `json:"price"`
	Manufacturer  string    `json:"manufacturer"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsExpired reports whether the expiry date lies before now.
func (m Medicine) IsExpired(now time.Time) bool {
	return m.ExpiryDate.Before(now)
}

// IsLowStock reports whether stock has fallen to the reorder level.
func (m Medicine) IsLowStock() bool {
	return m.StockQuantity <= m.MinimumStock
}

func (m Medicine) MarshalJSON() ([]byte, error) {
	type plain Medicine
	return json.Marshal(struct {
		plain
		IsExpired  bool `json:"isExpired"`
		IsLowStock bool `json:"isLowStock"`
	}{plain(m), m.IsExpired(clock()), m.IsLowStock()})
}

// Input is the request body for create and update. IsActive is ignored on
// create.
type Input struct {
	Name          string     `json:"name"`
	GenericName   string     `json:"genericName"`
	Category      string     `json:"category"`
	BatchNumber   string     `json:"batchNumber"`
	ExpiryDate    dates.Date `json:"expiryDate"`
	StockQuantity *int       `json:"stockQuantity"`
	MinimumStock  *int       `json:"minimumStock"`
	Price         *float64   `json:"price"`
	Manufacturer  string     `json:"manufacturer"`
	IsActive      *bool      `json:"isActive"`
}

type AlertCounts struct {
	LowStock     int `json:"lowStock"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiringSoon"`
}

type Alerts struct {
	LowStock     []*Medicine `json:"lowStock"`
	Expired      []*Medicine `json:"expired"`
	ExpiringSoon []*Medicine `json:"expiringSoon"`
	Counts       AlertCounts `json:"counts"`
}
