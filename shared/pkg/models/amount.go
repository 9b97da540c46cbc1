package models

import "github.com/shopspring/decimal"

// Amount is an exact decimal that travels as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

func NewAmount(s string) (*Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &Amount{Decimal: d}, nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}
