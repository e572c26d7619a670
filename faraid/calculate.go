package faraid

import "github.com/shopspring/decimal"

// Calculate returns each eligible heir's allocation of estateValue.
// Heirs with unrecognized labels, or a spouse label that does not fit the
// owner's gender, get no entry.
func Calculate(heirs []Heir, estateValue decimal.Decimal, owner Gender) []Result {
	return Compute(heirs, estateValue, owner).Results
}

// Compute runs the full pipeline and keeps the intermediate facts callers
// need to explain the outcome ('awl, undistributed remainder, exclusions).
func Compute(heirs []Heir, estateValue decimal.Decimal, owner Gender) Distribution {
	categorized := Classify(heirs, owner)

	fixed, total := ApplyFixedShares(categorized, estateValue)
	results, residual := DistributeResidual(fixed, total, categorized, estateValue)

	remainder := one64.Sub(total)
	if !remainder.IsPositive() {
		remainder = decimal.Zero
	}

	return Distribution{
		EstateValue:    estateValue,
		Results:        results,
		TotalAllocated: total,
		Remainder:      remainder,
		Residual:       residual,
		AwlRequired:    total.GreaterThan(one64),
		Excluded:       categorized.Excluded,
	}
}
