package mysql

import (
	"context"
	"testing"
	"time"

	"pawnloan-ledger/internal/domain/borrower"
	"pawnloan-ledger/internal/domain/contract"
	"pawnloan-ledger/internal/domain/money"
	"pawnloan-ledger/internal/domain/schedule"
	"pawnloan-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schema only for tests (decimals as text, no engine specifics) ---

type borrowerSQLite struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	BorrowerID string    `gorm:"size:32;uniqueIndex;column:borrower_id"`
	Name       string    `gorm:"column:name"`
	Phone      string    `gorm:"column:phone"`
	Address    string    `gorm:"column:address"`
	Gender     string    `gorm:"column:gender"`
	Version    int       `gorm:"column:version;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (borrowerSQLite) TableName() string { return "borrowers" }

type contractSQLite struct {
	ID                 uint64    `gorm:"primaryKey;column:id"`
	ContractID         string    `gorm:"size:32;uniqueIndex;column:contract_id"`
	BorrowerID         string    `gorm:"column:borrower_id"`
	Kind               string    `gorm:"column:kind"`
	Principal          string    `gorm:"type:text;column:principal"`
	Currency           string    `gorm:"column:currency"`
	MonthlyRatePercent string    `gorm:"type:text;column:monthly_rate_percent"`
	DurationMonths     int       `gorm:"column:duration_months"`
	StartDate          time.Time `gorm:"type:datetime;column:start_date"`
	EndDate            time.Time `gorm:"type:datetime;column:end_date"`
	Status             string    `gorm:"type:text;column:status"` // ← no enum
	TopUpOf            *string   `gorm:"column:top_up_of"`
	ItemPawned         string    `gorm:"column:item_pawned"`
	Description        string    `gorm:"column:description"`
	CreatedBy          string    `gorm:"column:created_by"`
	StatusUpdatedAt    time.Time `gorm:"column:status_updated_at"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (contractSQLite) TableName() string { return "contracts" }

type entrySQLite struct {
	ID                 uint64     `gorm:"primaryKey;column:id"`
	ContractID         uint64     `gorm:"column:contract_id;uniqueIndex:ux_entry_term"`
	Term               int        `gorm:"column:term;uniqueIndex:ux_entry_term"`
	DueDate            time.Time  `gorm:"type:datetime;column:due_date"`
	Currency           string     `gorm:"column:currency"`
	PaymentAmount      string     `gorm:"type:text;column:payment_amount"`
	PrincipalComponent string     `gorm:"type:text;column:principal_component"`
	InterestComponent  string     `gorm:"type:text;column:interest_component"`
	RemainingBalance   string     `gorm:"type:text;column:remaining_balance"`
	Status             string     `gorm:"type:text;column:status"`
	PaidDate           *time.Time `gorm:"type:datetime;column:paid_date"`
	Version            int        `gorm:"column:version"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (entrySQLite) TableName() string { return "schedule_entries" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
// A single connection keeps every query on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// IMPORTANT: migrate the sqlite-safe model, NOT the domain model.
	if err := db.AutoMigrate(&borrowerSQLite{}, &contractSQLite{}, &entrySQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func makeBorrower(name, phone string) *borrower.Borrower {
	return &borrower.Borrower{
		BorrowerID: id.NewID32(),
		Name:       name,
		Phone:      phone,
		Address:    "Phnom Penh",
		Version:    1,
	}
}

func makeContract(borrowerID string, start time.Time, months int) *contract.Contract {
	return &contract.Contract{
		ContractID:         id.NewID32(),
		BorrowerID:         borrowerID,
		Kind:               contract.KindLoan,
		Principal:          decimal.NewFromInt(1000),
		Currency:           money.USD,
		MonthlyRatePercent: decimal.NewFromInt(5),
		DurationMonths:     months,
		StartDate:          start,
		EndDate:            schedule.AddMonths(start, months),
		Status:             contract.StatusActive,
		StatusUpdatedAt:    time.Now().UTC(),
	}
}

// seedContract stores a contract and its generated schedule.
func seedContract(t *testing.T, db *gorm.DB, borrowerID string, start time.Time, months int) (*contract.Contract, []schedule.Entry) {
	t.Helper()
	ctx := context.Background()
	c := makeContract(borrowerID, start, months)
	if err := NewContractRepository(db).Create(ctx, c); err != nil {
		t.Fatalf("create contract: %v", err)
	}
	entries, err := schedule.Generate(schedule.Terms{
		Principal:          c.PrincipalMoney(),
		MonthlyRatePercent: c.MonthlyRatePercent,
		DurationMonths:     months,
		StartDate:          start,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := NewScheduleRepository(db).Create(ctx, c.ID, entries); err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return c, entries
}

func ptr[T any](v T) *T { return &v }
