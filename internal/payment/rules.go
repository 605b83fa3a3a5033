package payment

// EvaluateRules applies the decision rule chain to one payment. This is pure
// domain logic: no I/O, no side effects, total over its inputs.
//
// Rule order is fixed and observable in the reasons list:
//  1. amount > balance is a hard block carrying only insufficient_funds.
//  2. Otherwise reasons accumulate independently: recent_disputes, then
//     amount_above_daily_threshold, then unrecognized_device.
//  3. Any accumulated reason downgrades the decision to review.
func EvaluateRules(amount, balance float64, signals RiskSignals) (Decision, []string) {
	if amount > balance {
		return DecisionBlock, []string{ReasonInsufficientFunds}
	}

	var reasons []string
	if signals.RecentDisputes > 1 {
		reasons = append(reasons, ReasonRecentDisputes)
	}
	if amount > dailyAmountThreshold {
		reasons = append(reasons, ReasonAmountAboveDailyThreshold)
	}
	if signals.DeviceChange {
		reasons = append(reasons, ReasonUnrecognizedDevice)
	}

	if len(reasons) > 0 {
		return DecisionReview, reasons
	}
	return DecisionAllow, []string{}
}

// dailyAmountThreshold is the amount above which a payment is flagged for
// review.
const dailyAmountThreshold = 1000.0
