package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidConfiguration, "invalid configuration")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidConfiguration, err.Code)
	suite.Equal("invalid configuration", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeMissingIndicator, "bar %d is missing %s", 3, "rsi")
	suite.NotNil(err)
	suite.Equal(ErrCodeMissingIndicator, err.Code)
	suite.Equal("bar 3 is missing rsi", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeResultsWriteFailed, "failed to write trades", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeResultsWriteFailed, err.Code)
	suite.Equal("failed to write trades", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeDataParseFailed, cause, "failed to parse row %d", 12)
	suite.NotNil(err)
	suite.Equal(ErrCodeDataParseFailed, err.Code)
	suite.Equal("failed to parse row 12", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidConfiguration, "invalid configuration")
	suite.Equal("[100] invalid configuration", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeEmptySeries, "empty series", cause)
	suite.Equal("[200] empty series: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeEmptySeries, "empty series", cause)
	suite.Equal(cause, errors.Unwrap(err))
	suite.True(errors.Is(err, cause))
}

func (suite *ErrorTestSuite) TestGetCode() {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"typed error", New(ErrCodeStrategyNotFound, "not found"), ErrCodeStrategyNotFound},
		{"wrapped typed error", fmt.Errorf("outer: %w", New(ErrCodeInvalidBar, "bad bar")), ErrCodeInvalidBar},
		{"plain error", errors.New("plain"), ErrCodeUnknown},
		{"nil error", nil, ErrCodeUnknown},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, GetCode(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeNonMonotonicSeries, "timestamps out of order")
	suite.True(HasCode(err, ErrCodeNonMonotonicSeries))
	suite.False(HasCode(err, ErrCodeEmptySeries))
}

func (suite *ErrorTestSuite) TestCategoryHelpers() {
	suite.True(IsConfiguration(New(ErrCodeInvalidFillPolicy, "bad policy")))
	suite.False(IsConfiguration(New(ErrCodeEmptySeries, "empty")))
	suite.True(IsDataIntegrity(New(ErrCodeNonMonotonicSeries, "out of order")))
	suite.False(IsDataIntegrity(New(ErrCodeInvalidInitialCash, "negative cash")))
}
