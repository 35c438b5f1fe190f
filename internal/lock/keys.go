package lock

import "github.com/google/uuid"

const (
	GlobalCreateKey = "booking-creation"
	GlobalUpdateKey = "booking-update"
)

// KeyStrategy decides which resource name guards a booking mutation.
type KeyStrategy interface {
	CreateKey() string
	UpdateKey(refID string) string
}

// PerBookingKeys locks each booking independently. Creates get a throwaway key
// because the refId does not exist yet and nothing else can touch it.
type PerBookingKeys struct{}

func (PerBookingKeys) CreateKey() string { return "booking-create:" + uuid.NewString() }

func (PerBookingKeys) UpdateKey(refID string) string { return "booking:" + refID }

// GlobalKeys serializes all creates on one key and all transitions on another.
type GlobalKeys struct{}

func (GlobalKeys) CreateKey() string { return GlobalCreateKey }

func (GlobalKeys) UpdateKey(string) string { return GlobalUpdateKey }

// StrategyByName maps the lock.strategy config value to a KeyStrategy.
func StrategyByName(name string) KeyStrategy {
	if name == "global" {
		return GlobalKeys{}
	}
	return PerBookingKeys{}
}
