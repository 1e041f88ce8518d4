package domain

import "strings"

type CustomerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// NewCustomerInfo trims both fields and requires them to be non-empty.
func NewCustomerInfo(name, address string) (CustomerInfo, error) {
	c := CustomerInfo{
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}
	if err := c.Validate(); err != nil {
		return CustomerInfo{}, err
	}
	return c, nil
}

func (c CustomerInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "customer name", Reason: "is required"}
	}
	if strings.TrimSpace(c.Address) == "" {
		return &ValidationError{Field: "customer address", Reason: "is required"}
	}
	return nil
}
