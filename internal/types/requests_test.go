package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook.book",
		FirstName: "Ann",
		LastName:  "Lee",
		Password:  "long-enough",
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Email = "not-an-email"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Username = "has space"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Password = "short"
	assert.Error(t, bad.Validate())
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 6}.Offset())
	assert.Equal(t, 12, PageRequest{Page: 3, Limit: 6}.Offset())
	assert.Equal(t, 0, PageRequest{Page: 0, Limit: 6}.Offset())
	assert.Equal(t, MaxOffset, PageRequest{Page: math.MaxInt, Limit: 6}.Offset())
	assert.Equal(t, math.MaxInt32/6+1, MaxPage(6))
}
