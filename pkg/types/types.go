package types

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Role represents user role levels
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// IDList is an ordered uuid[] column. Order is preserved; callers decide whether duplicates matter.
type IDList []uuid.UUID

// Value implements driver.Valuer using the postgres array literal.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	arr := make(pq.StringArray, len(l))
	for i, id := range l {
		arr[i] = id.String()
	}
	return arr.Value()
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(value interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return fmt.Errorf("types.IDList: %w", err)
	}

	out := make(IDList, 0, len(arr))
	for _, raw := range arr {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("types.IDList: %w", err)
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

// GormDataType lets AutoMigrate create the right column.
func (IDList) GormDataType() string {
	return "uuid[]"
}

// Contains reports whether id is present.
func (l IDList) Contains(id uuid.UUID) bool {
	for _, existing := range l {
		if existing == id {
			return true
		}
	}
	return false
}

// Percent wraps decimal.Decimal for percentages kept at two decimal places.
type Percent decimal.Decimal

// NewPercent creates a Percent from float64, rounded to two places.
func NewPercent(value float64) Percent {
	return Percent(decimal.NewFromFloat(value).Round(2))
}

// Float64 returns the float64 representation
func (p Percent) Float64() float64 {
	return decimal.Decimal(p).InexactFloat64()
}

// String returns string representation
func (p Percent) String() string {
	return decimal.Decimal(p).StringFixed(2)
}

// InRange reports whether p lies within [0, 100].
func (p Percent) InRange() bool {
	d := decimal.Decimal(p)
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

// Value implements driver.Valuer for database serialization
func (p Percent) Value() (driver.Value, error) {
	return decimal.Decimal(p).Round(2).Value()
}

// Scan implements sql.Scanner for database deserialization
func (p *Percent) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*p = Percent(d)
	return nil
}

// MarshalJSON renders a JSON number such as 42.50.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (p *Percent) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = Percent(d.Round(2))
	return nil
}
