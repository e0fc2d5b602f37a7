package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/edia-health/edia-backend/internal/config"
	"github.com/edia-health/edia-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = config.JWTConfig{
	Secret:     "test-secret",
	Issuer:     "edia-test",
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
}

func newAuthService(db *memDB) *AuthService {
	return NewAuthService(fakeUsers{db}, fakeGroups{db}, fakeProfiles{db}, fakeRevoker{db}, testJWT, config.DefaultRoleName)
}

func validRegister(username, email string) *RegisterRequest {
	return &RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  "secreto123",
		Password2: "secreto123",
		FirstName: "Ana",
	}
}

func requireValidation(t *testing.T, err error, field, code string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	assert.Equal(t, field, verr.Field)
	assert.Equal(t, code, verr.Code)
	assert.NotEmpty(t, verr.Message)
}

func TestRegister_CreatesProfileAndAssignsDefaultRole(t *testing.T) {
	db := newMemDB()
	db.addGroup(config.DefaultRoleName)
	svc := newAuthService(db)

	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secreto123", user.PasswordHash)

	summary := user.Summary()
	require.NotNil(t, summary.Role)
	assert.Equal(t, config.DefaultRoleName, *summary.Role)
	assert.Equal(t, []string{config.DefaultRoleName}, summary.Groups)

	profile, err := fakeProfiles{db}.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, profile.Onboarded)
	require.NotNil(t, profile.Role)
	assert.Equal(t, config.DefaultRoleName, profile.Role.Name)
}

func TestRegister_MissingDefaultGroupStillCreatesUser(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)

	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	assert.Nil(t, user.Summary().Role)
	assert.Empty(t, user.Summary().Groups)
	_, err = fakeProfiles{db}.GetByUserID(context.Background(), user.ID)
	assert.NoError(t, err)
}

func TestRegister_RoleAssignmentFailureKeepsAccount(t *testing.T) {
	db := newMemDB()
	db.addGroup(config.DefaultRoleName)
	db.addGroupErr = errors.New("connection reset")
	svc := newAuthService(db)

	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	exists, err := fakeUsers{db}.ExistsByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Nil(t, user.RoleName())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegister("ana", "other@example.com"))
	requireValidation(t, err, "username", CodeUnique)
	assert.Len(t, db.users, 1)
}

func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegister("beto", "ANA@example.com"))
	requireValidation(t, err, "email", CodeUnique)
}

func TestRegister_UniquenessCheckedBeforePassword(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	req := validRegister("ana", "ana@example.com")
	req.Password, req.Password2 = "abc", "xyz"
	_, err = svc.Register(context.Background(), req)
	requireValidation(t, err, "username", CodeUnique)
}

func TestRegister_LostRaceIsReportedAsUnique(t *testing.T) {
	db := newMemDB()
	db.createErr = repository.ErrEmailTaken
	svc := newAuthService(db)

	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	requireValidation(t, err, "email", CodeUnique)
}

func TestRegister_OverlongPasswordIsValidationError(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)

	req := validRegister("ana", "ana@example.com")
	req.Password = strings.Repeat("a", 80) + "1"
	req.Password2 = req.Password
	_, err := svc.Register(context.Background(), req)
	requireValidation(t, err, "password", CodeTooLong)
	assert.Empty(t, db.users)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		password2 string
		code      string
	}{
		{"mismatch", "abcdefg1", "abcdefg2", CodeMismatch},
		{"too short", "abc", "abc", CodeTooShort},
		{"no digit", "abcdefgh", "abcdefgh", CodeNoDigit},
		{"over bcrypt limit", strings.Repeat("a", 80) + "1", strings.Repeat("a", 80) + "1", CodeTooLong},
		{"exactly 72 bytes", strings.Repeat("a", 71) + "1", strings.Repeat("a", 71) + "1", ""},
		{"multibyte counted in bytes", strings.Repeat("ñ", 36) + "1", strings.Repeat("ñ", 36) + "1", CodeTooLong},
		{"mismatch wins over length", "abc", "abd", CodeMismatch},
		{"valid", "abcdefg1", "abcdefg1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.password2)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			requireValidation(t, err, "password", tt.code)
		})
	}
}

func TestLogin_ReturnsTokensAndSummary(t *testing.T) {
	db := newMemDB()
	db.addGroup(config.DefaultRoleName)
	svc := newAuthService(db)
	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.False(t, resp.User.Onboarded)
	require.NotNil(t, resp.User.Role)
	assert.Equal(t, config.DefaultRoleName, *resp.User.Role)

	claims, err := svc.ValidateAccessToken(resp.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "ana@example.com", claims.Email)
	require.NotNil(t, claims.Role)
	assert.Equal(t, config.DefaultRoleName, *claims.Role)
	assert.Equal(t, []string{config.DefaultRoleName}, claims.Groups)
	assert.Equal(t, testJWT.Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestLogin_TrimsUsername(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister(" ana ", "ana@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &LoginRequest{Username: " ana ", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "ana", resp.User.Username)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	_, errUnknown := svc.Login(context.Background(), &LoginRequest{Username: "nadie", Password: "secreto123"})
	_, errWrong := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "incorrecta1"})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(resp.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(context.Background(), resp.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsForeignSignatureAndAlgorithm(t *testing.T) {
	svc := newAuthService(newMemDB())

	claims := AccessClaims{UserID: 1, TokenType: TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    testJWT.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_Expires(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(testJWT.AccessTTL + time.Minute) }
	_, err = svc.ValidateAccessToken(resp.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_IssuesAccessToken(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Access)
	assert.Empty(t, resp.Refresh, "no rotation by default")

	_, err = svc.ValidateAccessToken(resp.Access)
	assert.NoError(t, err)
}

func TestRefresh_RotationRevokesOldToken(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	svc.jwtConfig.RotateRefresh = true
	_, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.Refresh)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Refresh)

	_, err = svc.Refresh(context.Background(), login.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(context.Background(), resp.Refresh)
	assert.NoError(t, err)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.ID, login.Refresh))
	require.Len(t, db.revoked, 1)
	for _, ttl := range db.revoked {
		assert.InDelta(t, testJWT.RefreshTTL.Seconds(), ttl.Seconds(), 5)
	}

	_, err = svc.Refresh(context.Background(), login.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RejectsAnotherUsersToken(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	ana, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), validRegister("beto", "beto@example.com"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), &LoginRequest{Username: "beto", Password: "secreto123"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), ana.ID, login.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, db.revoked)
}

func TestRefresh_DeletedUserIsInvalid(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)

	require.NoError(t, fakeUsers{db}.Delete(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), login.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMe(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	me, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", me.Username)
	assert.Equal(t, "Ana", me.FirstName)

	_, err = svc.Me(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBuildAccessClaims_WithoutRole(t *testing.T) {
	db := newMemDB()
	svc := newAuthService(db)
	user, err := svc.Register(context.Background(), validRegister("ana", "ana@example.com"))
	require.NoError(t, err)

	claims := BuildAccessClaims(user, user.Profile)
	assert.Nil(t, claims.Role)
	assert.NotNil(t, claims.Groups)
	assert.Empty(t, claims.Groups)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}
