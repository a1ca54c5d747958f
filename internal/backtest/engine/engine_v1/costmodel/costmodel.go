package costmodel

// CostModel computes the transaction cost charged for a simulated fill.
type CostModel interface {
	// Calculate returns the fee in account currency for filling the given
	// quantity at the given price.
	Calculate(quantity float64, price float64) float64
}

type ModelType string

const (
	// ModelNone charges nothing.
	ModelNone ModelType = "none"
	// ModelFixed charges a flat fee per fill.
	ModelFixed ModelType = "fixed"
	// ModelProportional charges a fraction of the fill notional.
	ModelProportional ModelType = "proportional"
	// ModelBoth charges the flat fee plus the proportional spread.
	ModelBoth ModelType = "both"
)

var AllModels = []any{
	ModelNone,
	ModelFixed,
	ModelProportional,
	ModelBoth,
}

// IsValid reports whether t names a known cost model.
func (t ModelType) IsValid() bool {
	switch t {
	case ModelNone, ModelFixed, ModelProportional, ModelBoth:
		return true
	default:
		return false
	}
}

// GetCostModel returns the cost model implementation for the given type.
// Unknown types fall back to the zero-cost model.
func GetCostModel(model ModelType, fixedFee float64, spreadRate float64) CostModel {
	switch model {
	case ModelFixed:
		return NewFixedFee(fixedFee)
	case ModelProportional:
		return NewProportional(spreadRate)
	case ModelBoth:
		return NewCombined(fixedFee, spreadRate)
	case ModelNone:
		return NewZeroCost()
	default:
		return NewZeroCost()
	}
}
