package service

import (
	"context"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Grand Hotel", "GH01")

	user, err := env.users.CreateUser(ctx, CreateUserRequest{
		CustomerID: customerID,
		Username:   "reception",
		Password:   "front-desk-1",
		FirstName:  "Rita",
		LastName:   "Front",
	}, "admin")
	require.NoError(t, err)
	assert.NotZero(t, user.UserID)
	assert.Equal(t, customerID, user.CustomerID)
	assert.Equal(t, "reception", user.Username)

	token, err := env.users.Login(ctx, LoginRequest{Username: "reception", Password: "front-desk-1"})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	// The token must carry the user identity and be signed with our secret
	parsed, err := jwt.Parse(token.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "reception", claims["username"])
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Grand Hotel", "GH01")

	req := CreateUserRequest{
		CustomerID: customerID,
		Username:   "manager",
		Password:   "longenough",
		FirstName:  "Mona",
		LastName:   "Ger",
	}
	_, err := env.users.CreateUser(ctx, req, "admin")
	require.NoError(t, err)

	_, err = env.users.CreateUser(ctx, req, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCreateUserEnforcesPasswordPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Grand Hotel", "GH01")

	// Test env policy: active, minimum 4 characters
	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		CustomerID: customerID,
		Username:   "shorty",
		Password:   "abc",
		FirstName:  "Sho",
		LastName:   "Rty",
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPasswordPolicy))
}

func TestCreateUserRequiresExistingCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		CustomerID: 9999,
		Username:   "orphan",
		Password:   "longenough",
		FirstName:  "Or",
		LastName:   "Phan",
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestVerifyCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Grand Hotel", "GH01")

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		CustomerID: customerID,
		Username:   "porter",
		Password:   "carry-bags",
		FirstName:  "Paul",
		LastName:   "Porter",
	}, "admin")
	require.NoError(t, err)

	user, ok, err := env.users.VerifyCredentials(ctx, "porter", "carry-bags")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, user)
	assert.Equal(t, "porter", user.Username)

	// Wrong password is a clean false, not an error
	user, ok, err = env.users.VerifyCredentials(ctx, "porter", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)

	// Unknown principals fail closed the same way
	user, ok, err = env.users.VerifyCredentials(ctx, "nobody", "whatever")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestVerifyCredentialsCorruptHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Grand Hotel", "GH01")

	// A row whose stored hash is not bcrypt at all
	broken := &model.AppUser{
		CustomerID: customerID,
		Username:   "broken",
		Password:   "plaintext-left-by-a-bad-import",
		FirstName:  "Bro",
		LastName:   "Ken",
	}
	require.NoError(t, env.db.Create(broken).Error)

	_, ok, err := env.users.VerifyCredentials(ctx, "broken", "plaintext-left-by-a-bad-import")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindCorruptCredential))

	// The incident lands in the audit trail
	var count int64
	require.NoError(t, env.db.Model(&model.AuditLog{}).
		Where("action = ?", model.ActionCorruptCredential).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUserReadsNeverExposeCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Grand Hotel", "GH01")

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		CustomerID: customerID,
		Username:   "chef",
		Password:   "mise-en-place",
		FirstName:  "Che",
		LastName:   "Fff",
	}, "admin")
	require.NoError(t, err)

	// Default projection leaves the password column unselected
	fromDefault, err := env.userRepo.GetByUsername(ctx, "chef")
	require.NoError(t, err)
	require.NotNil(t, fromDefault)
	assert.Empty(t, fromDefault.Password)

	// The elevated read is the only path that sees the hash
	fromElevated, err := env.userRepo.GetByUsernameWithCredentials(ctx, "chef")
	require.NoError(t, err)
	require.NotNil(t, fromElevated)
	assert.NotEmpty(t, fromElevated.Password)
	assert.NotEqual(t, "mise-en-place", fromElevated.Password)
}

func TestLoginFailureIsAudited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerID := env.seedCustomer(t, "Grand Hotel", "GH01")

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		CustomerID: customerID,
		Username:   "night",
		Password:   "auditme",
		FirstName:  "Nig",
		LastName:   "Ht",
	}, "admin")
	require.NoError(t, err)

	_, err = env.users.Login(ctx, LoginRequest{Username: "night", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	var count int64
	require.NoError(t, env.db.Model(&model.AuditLog{}).
		Where("action = ?", model.ActionLoginFailed).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
