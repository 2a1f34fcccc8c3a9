// Package engine holds the promotion and fulfillment rules. Every function is
// pure: callers load promotions, stock and usage and pass them in.
package engine

// Reason is a discriminated rule failure. Reasons are recoverable outcomes
// shown to the customer, not errors.
type Reason string

const (
	ReasonNone Reason = ""

	// Promotion eligibility, in evaluation order.
	ReasonExpiredOrInactive     Reason = "EXPIRED_OR_INACTIVE"
	ReasonUsageLimitReached     Reason = "USAGE_LIMIT_REACHED"
	ReasonCustomerLimitReached  Reason = "CUSTOMER_LIMIT_REACHED"
	ReasonBelowMinimumOrder     Reason = "BELOW_MINIMUM_ORDER"
	ReasonNotFirstTime          Reason = "NOT_FIRST_TIME"
	ReasonQuantityOutOfRange    Reason = "QUANTITY_OUT_OF_RANGE"
	ReasonNoEligibleItems       Reason = "NO_ELIGIBLE_ITEMS"
	ReasonCustomerGroupMismatch Reason = "CUSTOMER_GROUP_MISMATCH"
	ReasonPricingRuleConflict   Reason = "PRICING_RULE_CONFLICT"

	// Pack selection.
	ReasonInsufficientSelection Reason = "INSUFFICIENT_SELECTION"
	ReasonExcessSelection       Reason = "EXCESS_SELECTION"
	ReasonStockExceeded         Reason = "STOCK_EXCEEDED"
)

// RuleError wraps a Reason for APIs that return errors, such as the
// incremental pack selection builder.
type RuleError struct {
	Reason   Reason
	FlavorID string
}

func (e *RuleError) Error() string {
	if e.FlavorID != "" {
		return string(e.Reason) + ": " + e.FlavorID
	}
	return string(e.Reason)
}
