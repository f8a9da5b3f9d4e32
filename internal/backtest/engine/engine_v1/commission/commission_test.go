package commission

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionTestSuite struct {
	suite.Suite
}

func TestCommissionSuite(t *testing.T) {
	suite.Run(t, new(CommissionTestSuite))
}

func (suite *CommissionTestSuite) TestZero() {
	model := NewZero()
	suite.NotNil(model)

	tests := []struct {
		name     string
		notional float64
	}{
		{"zero notional", 0},
		{"small notional", 10},
		{"large notional", 1000000},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(0.0, model.Calculate(tc.notional))
		})
	}
}

func (suite *CommissionTestSuite) TestFractional() {
	model := NewFractional(0.001)
	suite.NotNil(model)

	tests := []struct {
		name     string
		notional float64
		expected float64
	}{
		{"zero notional", 0, 0},
		{"unit notional", 1, 0.001},
		{"typical fill", 10000, 10},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, model.Calculate(tc.notional), 1e-12)
		})
	}
}

func (suite *CommissionTestSuite) TestGetModel() {
	suite.IsType(&Fractional{}, GetModel(ModelFractional, 0.001))
	suite.IsType(&Zero{}, GetModel(ModelZero, 0))
	suite.IsType(&Zero{}, GetModel("unknown", 0.5))
}
