package domain

type ID string

// Amount is a non-negative price in whole currency units.
type Amount int64

func NewAmount(value int64) Amount {
	return Amount(value)
}

type Event interface {
	GetName() string
	GetEntityName() string
}
