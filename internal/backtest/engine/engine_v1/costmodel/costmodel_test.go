package costmodel

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CostModelTestSuite struct {
	suite.Suite
}

func TestCostModelSuite(t *testing.T) {
	suite.Run(t, new(CostModelTestSuite))
}

func (suite *CostModelTestSuite) TestZeroCost() {
	model := NewZeroCost()
	suite.NotNil(model)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"zero quantity", 0, 100, 0},
		{"small fill", 10, 100, 0},
		{"large fill", 10000, 250, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, model.Calculate(tc.quantity, tc.price))
		})
	}
}

func (suite *CostModelTestSuite) TestFixedFee() {
	model := NewFixedFee(5.0)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"zero quantity charges nothing", 0, 100, 0},
		{"small fill", 1, 100, 5.0},
		{"large fill charges the same", 100000, 250, 5.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, model.Calculate(tc.quantity, tc.price))
		})
	}

	// Negative fee is clamped.
	suite.Equal(0.0, NewFixedFee(-1).Calculate(10, 100))
}

func (suite *CostModelTestSuite) TestProportional() {
	model := NewProportional(0.001)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"zero quantity", 0, 100, 0},
		{"zero price", 10, 0, 0},
		{"notional 1000", 10, 100, 1.0},
		{"notional 250000", 1000, 250, 250.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, model.Calculate(tc.quantity, tc.price), 1e-9)
		})
	}
}

func (suite *CostModelTestSuite) TestCombined() {
	model := NewCombined(2.0, 0.001)

	suite.InDelta(3.0, model.Calculate(10, 100), 1e-9)
	suite.Equal(0.0, model.Calculate(0, 100))
}

func (suite *CostModelTestSuite) TestGetCostModel() {
	tests := []struct {
		name     string
		model    ModelType
		quantity float64
		price    float64
		expected float64
	}{
		{"none", ModelNone, 100, 100, 0},
		{"fixed", ModelFixed, 100, 100, 2.0},
		{"proportional", ModelProportional, 100, 100, 10.0},
		{"both", ModelBoth, 100, 100, 12.0},
		{"unknown defaults to zero", ModelType("bogus"), 100, 100, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCostModel(tc.model, 2.0, 0.001)
			suite.NotNil(handler)
			suite.InDelta(tc.expected, handler.Calculate(tc.quantity, tc.price), 1e-9)
		})
	}
}

func (suite *CostModelTestSuite) TestModelTypeIsValid() {
	suite.True(ModelNone.IsValid())
	suite.True(ModelBoth.IsValid())
	suite.False(ModelType("margin").IsValid())
}

func (suite *CostModelTestSuite) TestAllModels() {
	suite.Len(AllModels, 4)
	suite.Contains(AllModels, ModelNone)
	suite.Contains(AllModels, ModelBoth)
}
