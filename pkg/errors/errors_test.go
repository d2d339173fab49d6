package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/PaulYuuu/guisu/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := errors.New(errors.ErrPathNotAbsolute, "path must be absolute")
	assert.Equal(t, "[PATH_NOT_ABSOLUTE] path must be absolute", err.Error())
	assert.Equal(t, errors.ErrPathNotAbsolute, err.Code)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrIORead, "x"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrIORead, "x %d", 1))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(cause, errors.ErrIOWrite, "failed to write")
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestIsCodeAndGetCode(t *testing.T) {
	err := errors.New(errors.ErrDuplicateTarget, "collision")
	assert.True(t, errors.IsCode(err, errors.ErrDuplicateTarget))
	assert.False(t, errors.IsCode(err, errors.ErrUnknown))
	assert.Equal(t, errors.ErrDuplicateTarget, errors.GetCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetCode(stderrors.New("plain")))
}

func TestWithDetailChaining(t *testing.T) {
	err := errors.New(errors.ErrIORead, "read failed").
		WithPath("/tmp/x").WithOp("read")
	assert.Equal(t, "/tmp/x", err.Details["path"])
	assert.Equal(t, "read", err.Details["operation"])
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrLedgerCorruption, "bad record length")
	b := errors.New(errors.ErrLedgerCorruption, "different message, same code")
	assert.True(t, stderrors.Is(a, b))
}

func TestAggregateCollectsErrors(t *testing.T) {
	e1 := errors.New(errors.ErrIORead, "one")
	e2 := errors.New(errors.ErrIOWrite, "two")
	agg := errors.NewAggregate([]error{nil, e1, nil, e2})
	require.NotNil(t, agg)
	var a *errors.Aggregate
	require.True(t, stderrors.As(agg, &a))
	assert.Len(t, a.Errors, 2)
	assert.Contains(t, agg.Error(), "2 errors occurred")
}

func TestNewAggregateAllNilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.NewAggregate([]error{nil, nil}))
}

func TestAggregateSingleErrorMessage(t *testing.T) {
	agg := errors.NewAggregate([]error{errors.New(errors.ErrIORead, "boom")})
	assert.Contains(t, agg.Error(), "1 error occurred")
}

func TestAggregateReportsAggregateCodeRegardlessOfMembers(t *testing.T) {
	agg := errors.NewAggregate([]error{errors.New(errors.ErrIORead, "one"), errors.New(errors.ErrLedgerCorruption, "two")})
	assert.Equal(t, errors.ErrAggregate, errors.GetCode(agg))
	assert.True(t, errors.IsCode(agg, errors.ErrAggregate))
}
