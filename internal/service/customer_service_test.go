package service

import (
	"context"
	"testing"

	"backend/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func uintp(v uint) *uint { return &v }

func TestCreateCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer, err := env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Seaside Resort",
		CustomerCode:   "SEA01",
		CustomerTypeID: 1,
		FiscalNumber:   strptr("PT500100200"),
	}, "admin")
	require.NoError(t, err)
	assert.NotZero(t, customer.CustomerID)
	assert.EqualValues(t, 1, customer.RecordVersion)
	assert.Equal(t, "admin", customer.CreationUser)
}

func TestCreateCustomerValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerCode:   "SEA01",
		CustomerTypeID: 1,
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Seaside Resort",
		CustomerCode:   "MORE-THAN-TEN",
		CustomerTypeID: 1,
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCustomerBusinessKeysAreCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Seaside Resort",
		CustomerCode:   "SEA01",
		CustomerTypeID: 1,
		FiscalNumber:   strptr("PT500100200"),
	}, "admin")
	require.NoError(t, err)

	// Same name, different casing
	_, err = env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "SEASIDE resort",
		CustomerCode:   "SEA02",
		CustomerTypeID: 1,
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateKey))

	// Same code, different casing
	_, err = env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Mountain Lodge",
		CustomerCode:   "sea01",
		CustomerTypeID: 1,
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateKey))

	// Same fiscal number, different casing
	_, err = env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Mountain Lodge",
		CustomerCode:   "MTN01",
		CustomerTypeID: 1,
		FiscalNumber:   strptr("pt500100200"),
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateKey))
}

func TestUpdateCustomerBumpsRecordVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Seaside Resort",
		CustomerCode:   "SEA01",
		CustomerTypeID: 1,
	}, "admin")
	require.NoError(t, err)

	updated, err := env.customers.UpdateCustomer(ctx, created.CustomerID, UpdateCustomerRequest{
		CustomerName: strptr("Seaside Resort & Spa"),
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Seaside Resort & Spa", updated.CustomerName)
	assert.EqualValues(t, 2, updated.RecordVersion)

	// Unchanged fields survive the patch
	assert.Equal(t, "SEA01", updated.CustomerCode)
}

func TestUpdateCustomerStaleVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Seaside Resort",
		CustomerCode:   "SEA01",
		CustomerTypeID: 1,
	}, "admin")
	require.NoError(t, err)

	// First writer wins, moving the record to version 2
	_, err = env.customers.UpdateCustomer(ctx, created.CustomerID, UpdateCustomerRequest{
		CustomerName:    strptr("Seaside Resort & Spa"),
		ExpectedVersion: uintp(1),
	}, "first")
	require.NoError(t, err)

	// Second writer still holds version 1
	_, err = env.customers.UpdateCustomer(ctx, created.CustomerID, UpdateCustomerRequest{
		CustomerName:    strptr("Seaside Grand"),
		ExpectedVersion: uintp(1),
	}, "second")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStaleVersion))

	// The loser changed nothing
	current, err := env.customers.GetCustomer(ctx, created.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Seaside Resort & Spa", current.CustomerName)
	assert.EqualValues(t, 2, current.RecordVersion)
}

func TestUpdateCustomerUnknownID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.customers.UpdateCustomer(ctx, 12345, UpdateCustomerRequest{
		CustomerName: strptr("Ghost"),
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpdateCustomerRejectsDuplicateOnRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Seaside Resort",
		CustomerCode:   "SEA01",
		CustomerTypeID: 1,
	}, "admin")
	require.NoError(t, err)

	second, err := env.customers.CreateCustomer(ctx, CreateCustomerRequest{
		CustomerName:   "Mountain Lodge",
		CustomerCode:   "MTN01",
		CustomerTypeID: 1,
	}, "admin")
	require.NoError(t, err)

	_, err = env.customers.UpdateCustomer(ctx, second.CustomerID, UpdateCustomerRequest{
		CustomerName: strptr("seaside RESORT"),
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateKey))

	// Re-saving a customer under its own name is not a collision
	_, err = env.customers.UpdateCustomer(ctx, second.CustomerID, UpdateCustomerRequest{
		CustomerName: strptr("Mountain Lodge"),
	}, "admin")
	require.NoError(t, err)
}

func TestListUsersForCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Seaside Resort", "SEA01")
	otherID := env.seedCustomer(t, "Mountain Lodge", "MTN01")

	for _, username := range []string{"alice", "bob"} {
		_, err := env.users.CreateUser(ctx, CreateUserRequest{
			CustomerID: customerID,
			Username:   username,
			Password:   "longenough",
			FirstName:  "Test",
			LastName:   "User",
		}, "admin")
		require.NoError(t, err)
	}
	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		CustomerID: otherID,
		Username:   "carol",
		Password:   "longenough",
		FirstName:  "Test",
		LastName:   "User",
	}, "admin")
	require.NoError(t, err)

	users, err := env.customers.ListUsersForCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, customerID, u.CustomerID)
	}

	_, err = env.customers.ListUsersForCustomer(ctx, 9999)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
