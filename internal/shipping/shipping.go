package shipping

import "strings"

const (
	// FreeThreshold is the subtotal, in whole rupees, at which shipping is free.
	FreeThreshold = 1000
	HomeStateFee  = 60
	StandardFee   = 100
	HomeState     = "Tamil Nadu"
)

// Fee returns the shipping charge for an order subtotal sent to state.
func Fee(subtotal int, state string) int {
	if subtotal >= FreeThreshold {
		return 0
	}
	if strings.EqualFold(strings.TrimSpace(state), HomeState) {
		return HomeStateFee
	}
	return StandardFee
}

// Total returns subtotal plus the shipping fee.
func Total(subtotal int, state string) int {
	return subtotal + Fee(subtotal, state)
}
