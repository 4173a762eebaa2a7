package medicine

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
)

// seedThreshold is the inventory size above which Seed does nothing unless
// forced.
const seedThreshold = 50

//go:embed catalogue.json
var catalogueJSON []byte

type catalogueEntry struct {
	Name         string  `json:"name"`
	GenericName  string  `json:"genericName"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Manufacturer string  `json:"manufacturer"`
}

type Service struct {
	repo Repository
	tx   db.TxRunner
	now  func() time.Time
	rnd  *rand.Rand
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{
		repo: repo,
		tx:   tx,
		now:  time.Now,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*Medicine, error) {
	m := &Medicine{IsActive: true}
	if err := apply(m, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces every writable field; isActive is kept when omitted.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Medicine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(m, in); err != nil {
		return nil, err
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List returns medicines sorted by name. onlyUnexpired hides medicines whose
// expiry date has passed.
func (s *Service) List(ctx context.Context, f ListFilter, onlyUnexpired bool) ([]*Medicine, error) {
	if onlyUnexpired {
		f.NotExpiredAt = s.now()
	}
	return s.repo.List(ctx, f)
}

// Alerts collects active medicines that are low on stock, expired, or
// expiring within the next 30 days.
func (s *Service) Alerts(ctx context.Context) (*Alerts, error) {
	now := s.now()
	low, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	expired, err := s.repo.ExpiredBefore(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("expired: %w", err)
	}
	soon, err := s.repo.ExpiringBetween(ctx, now, now.Add(expiringSoonWindow))
	if err != nil {
		return nil, fmt.Errorf("expiring soon: %w", err)
	}
	return &Alerts{
		LowStock:     low,
		Expired:      expired,
		ExpiringSoon: soon,
		Counts: AlertCounts{
			LowStock:     len(low),
			Expired:      len(expired),
			ExpiringSoon: len(soon),
		},
	}, nil
}

type SeedResult struct {
	Existing int
	Inserted int
	Skipped  bool
}

// Seed loads the bundled catalogue of common medicines with a random batch
// number, an expiry 6 to 36 months out and a stock level of 20 to 500. It is
// skipped when the inventory already holds more than 50 medicines, unless
// force is set.
func (s *Service) Seed(ctx context.Context, force bool) (SeedResult, error) {
	var res SeedResult
	existing, err := s.repo.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count medicines: %w", err)
	}
	res.Existing = existing
	if existing > seedThreshold && !force {
		res.Skipped = true
		return res, nil
	}

	var entries []catalogueEntry
	if err := json.Unmarshal(catalogueJSON, &entries); err != nil {
		return res, fmt.Errorf("decode catalogue: %w", err)
	}

	now := s.now()
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		for _, e := range entries {
			m := &Medicine{
				Name:          e.Name,
				GenericName:   e.GenericName,
				Category:      e.Category,
				BatchNumber:   fmt.Sprintf("BTH%06d%d", now.UnixMilli()%1000000, s.rnd.Intn(1000)),
				ExpiryDate:    now.AddDate(0, 6+s.rnd.Intn(30), 0),
				StockQuantity: 20 + s.rnd.Intn(480),
				MinimumStock:  defaultMinimumStock,
				Price:         e.Price,
				Manufacturer:  e.Manufacturer,
				IsActive:      true,
			}
			if err := s.repo.Create(ctx, m); err != nil {
				return fmt.Errorf("insert %s: %w", e.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.Inserted = len(entries)
	return res, nil
}

func apply(m *Medicine, in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("Please add medicine name")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return apperr.Validation("Please add category")
	}
	if in.ExpiryDate.IsZero() {
		return apperr.Validation("Please add expiry date")
	}
	stock := 0
	if in.StockQuantity != nil {
		stock = *in.StockQuantity
	}
	if stock < 0 {
		return apperr.Validation("Stock quantity cannot be negative")
	}
	minimum := defaultMinimumStock
	if in.MinimumStock != nil {
		minimum = *in.MinimumStock
	}
	if minimum < 0 {
		return apperr.Validation("Minimum stock cannot be negative")
	}
	price := 0.0
	if in.Price != nil {
		price = *in.Price
	}
	if price < 0 {
		return apperr.Validation("Price cannot be negative")
	}

	m.Name = name
	m.GenericName = strings.TrimSpace(in.GenericName)
	m.Category = category
	m.BatchNumber = strings.TrimSpace(in.BatchNumber)
	m.ExpiryDate = in.ExpiryDate.Time
	m.StockQuantity = stock
	m.MinimumStock = minimum
	m.Price = price
	m.Manufacturer = strings.TrimSpace(in.Manufacturer)
	return nil
}
