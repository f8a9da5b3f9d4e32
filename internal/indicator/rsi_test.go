package indicator

import (
	"testing"

	"github.com/rxtech-lab/barsim/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestWarmupUndefined() {
	s := seriesFromCloses(suite.T(), 0, 1.0, 1.1, 1.2, 1.3, 1.4, 1.5)

	rsi, err := RSI(s, Params{"period": 3})
	suite.Require().NoError(err)
	suite.Equal(s.Len(), rsi.Len())

	for i := 0; i < 3; i++ {
		suite.False(rsi.Valid(i), "index %d should be undefined", i)
	}

	for i := 3; i < s.Len(); i++ {
		suite.True(rsi.Valid(i), "index %d should be defined", i)
	}
}

func (suite *RSITestSuite) TestSeriesShorterThanPeriod() {
	s := seriesFromCloses(suite.T(), 0, 1.0, 1.1, 1.2)

	rsi, err := RSI(s, Params{"period": 14})
	suite.Require().NoError(err)
	suite.Equal(3, rsi.Len())

	for i := 0; i < rsi.Len(); i++ {
		suite.False(rsi.Valid(i))
	}
}

func (suite *RSITestSuite) TestConstantClosesSitAtMidpoint() {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 1.1
	}

	s := seriesFromCloses(suite.T(), 0, closes...)

	rsi, err := RSI(s, Params{"period": 14})
	suite.Require().NoError(err)

	for i := 0; i < 14; i++ {
		suite.False(rsi.Valid(i))
	}

	for i := 14; i < 20; i++ {
		suite.Require().True(rsi.Valid(i))
		suite.Equal(50.0, rsi[i])
	}
}

func (suite *RSITestSuite) TestMonotonicExtremes() {
	up := seriesFromCloses(suite.T(), 0, 1, 2, 3, 4, 5, 6, 7, 8)
	down := seriesFromCloses(suite.T(), 0, 8, 7, 6, 5, 4, 3, 2, 1)

	rsiUp, err := RSI(up, Params{"period": 4})
	suite.Require().NoError(err)

	rsiDown, err := RSI(down, Params{"period": 4})
	suite.Require().NoError(err)

	for i := 4; i < 8; i++ {
		suite.Equal(100.0, rsiUp[i], "all gains at index %d", i)
		suite.Equal(0.0, rsiDown[i], "all losses at index %d", i)
	}
}

func (suite *RSITestSuite) TestWilderSmoothing() {
	// Changes: +1, +1, -1. Seed over the first 2 changes: avgGain=1,
	// avgLoss=0. The next bar smooths to avgGain=0.5, avgLoss=0.5.
	s := seriesFromCloses(suite.T(), 0, 1, 2, 3, 2)

	rsi, err := RSI(s, Params{"period": 2})
	suite.Require().NoError(err)

	suite.False(rsi.Valid(0))
	suite.False(rsi.Valid(1))
	suite.Equal(100.0, rsi[2])
	suite.Equal(50.0, rsi[3])
}

func (suite *RSITestSuite) TestBounded() {
	s := seriesFromCloses(suite.T(), 0,
		1.0, 1.4, 0.9, 1.2, 1.1, 1.6, 1.3, 1.8, 1.2, 1.9, 1.4, 2.0, 1.1, 2.1, 1.5)

	rsi, err := RSI(s, Params{"period": 3})
	suite.Require().NoError(err)

	for i := 3; i < rsi.Len(); i++ {
		suite.GreaterOrEqual(rsi[i], 0.0)
		suite.LessOrEqual(rsi[i], 100.0)
	}
}

func (suite *RSITestSuite) TestInvalidParams() {
	s := seriesFromCloses(suite.T(), 0, 1, 2, 3)

	_, err := RSI(s, Params{})
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	_, err = RSI(s, Params{"period": 0})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}
