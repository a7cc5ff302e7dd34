package checkout

// Outcome is the navigation the presentation layer should perform after an operation.
// The core never drives a router itself.
type Outcome string

const (
	OutcomeNone              Outcome = ""
	OutcomeShowEmptyCart     Outcome = "SHOW_EMPTY_CART"
	OutcomeShowConfirmation  Outcome = "SHOW_CONFIRMATION"
	OutcomeGoToCatalog       Outcome = "GO_TO_CATALOG"
	OutcomeGoToOrderTracking Outcome = "GO_TO_ORDER_TRACKING"
)
