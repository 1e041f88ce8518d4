package domain

type SaleState string

const (
	SaleStateIdle                 SaleState = "IDLE"
	SaleStateAwaitingCustomerInfo SaleState = "AWAITING_CUSTOMER_INFO"
	SaleStateScanning             SaleState = "SCANNING"
	SaleStateFinalized            SaleState = "FINALIZED"
	SaleStateAbandoned            SaleState = "ABANDONED"
	SaleStateError                SaleState = "ERROR"
)

var saleTransitions = map[SaleState][]SaleState{
	SaleStateIdle:                 {SaleStateAwaitingCustomerInfo, SaleStateError},
	SaleStateError:                {SaleStateAwaitingCustomerInfo, SaleStateError},
	SaleStateAwaitingCustomerInfo: {SaleStateScanning, SaleStateAbandoned},
	SaleStateScanning:             {SaleStateFinalized, SaleStateAbandoned},
	SaleStateFinalized:            {SaleStateFinalized},
}

// IsTerminal reports whether no further transition can leave s.
func (s SaleState) IsTerminal() bool {
	return s == SaleStateAbandoned
}

// AcceptsCartChanges reports whether scans and quantity changes are allowed.
func (s SaleState) AcceptsCartChanges() bool {
	return s == SaleStateScanning
}

// String representation (for logging)
func (s SaleState) String() string {
	return string(s)
}

func CanTransitionTo(from, to SaleState) bool {
	for _, next := range saleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
