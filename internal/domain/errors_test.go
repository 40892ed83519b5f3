package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("withdraw: %w", Wrap(ErrInsufficientFunds, errors.New("balance 10")))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NotErrorIs(t, err, ErrMinimumBalanceViolation)

	de := AsError(err)
	require.NotNil(t, de)
	assert.Equal(t, CodeInsufficientFunds, de.Code)
	assert.Equal(t, ErrInsufficientFunds.Message, de.Message)
}

func TestAsErrorUntyped(t *testing.T) {
	de := AsError(errors.New("connection reset"))
	assert.Equal(t, CodePersistenceError, de.Code)
	assert.False(t, de.Retryable)
	assert.Nil(t, AsError(nil))
}

func TestResultNeverEmpty(t *testing.T) {
	v := 42
	ok := NewResult(&v, nil)
	assert.False(t, ok.IsError())
	assert.Equal(t, 42, *ok.Response)

	failed := NewResult[int](nil, ErrAccountNotFound)
	require.True(t, failed.IsError())
	assert.Nil(t, failed.Response)
	assert.Equal(t, CodeAccountNotFound, failed.Errors[0].Code)

	empty := NewResult[int](nil, nil)
	require.True(t, empty.IsError())
	assert.Equal(t, CodePersistenceError, empty.Errors[0].Code)

	multi := Failure[int](ErrInvalidAmount, nil, ErrInvalidRequest)
	assert.Len(t, multi.Errors, 2)
}

func TestFormInputValidate(t *testing.T) {
	in := FormInput{FullName: "Asha", Email: "asha@example.com", AccountTypeID: 1, IFSC: "SBIFSC5994"}
	assert.NoError(t, in.Validate())

	in.Email = "not-an-email"
	assert.ErrorIs(t, in.Validate(), ErrInvalidRequest)
}
