package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dylanbaghel/devcamper-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// resetTokenTTL is how long a password-reset token stays valid.
const resetTokenTTL = 10 * time.Minute

// Claims is the session token payload: user id and role.
type Claims struct {
	UserID uint   `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies session tokens and manages the
// password-reset token lifecycle.
type AuthService struct {
	db     *gorm.DB
	secret []byte
	expire time.Duration
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, secret string, expire time.Duration) *AuthService {
	return &AuthService{db: db, secret: []byte(secret), expire: expire, now: time.Now}
}

// SetClock overrides the service clock. Tests use it to simulate expiry.
func (s *AuthService) SetClock(now func() time.Time) { s.now = now }

// IssueToken signs a session token carrying {id, role}.
func (s *AuthService) IssueToken(u *models.User) (string, error) {
	claims := &Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.expire)),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// ParseToken validates a session token and returns its claims.
func (s *AuthService) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if c, ok := token.Claims.(*Claims); ok && token.Valid {
		return c, nil
	}
	return nil, ErrInvalidToken
}

// HashPassword applies the slow salted hash used for stored passwords.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword reports whether plain matches the user's stored hash.
func VerifyPassword(plain string, u *models.User) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// FindByEmailAndPassword resolves login credentials to a user.
func (s *AuthService) FindByEmailAndPassword(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(password, &user) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// NewResetToken generates a reset token for the user, persists only its
// sha256 hash plus a 10-minute expiry, and returns the plaintext for
// out-of-band delivery.
func (s *AuthService) NewResetToken(u *models.User) (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	plain := hex.EncodeToString(buf)
	expire := s.now().Add(resetTokenTTL)
	err := s.db.Model(u).Updates(map[string]any{
		"reset_password_token":  hashResetToken(plain),
		"reset_password_expire": expire,
	}).Error
	if err != nil {
		return "", err
	}
	return plain, nil
}

// ClearResetToken rolls back the reset fields, e.g. when mail delivery fails.
func (s *AuthService) ClearResetToken(u *models.User) error {
	return s.db.Model(u).Updates(map[string]any{
		"reset_password_token":  "",
		"reset_password_expire": nil,
	}).Error
}

// ResetPassword consumes a plaintext reset token: on a match with an
// unexpired stored hash it sets the new password and clears the reset fields
// in one update. No match or expired both return ErrInvalidToken.
func (s *AuthService) ResetPassword(plainToken, newPassword string) (*models.User, error) {
	var user models.User
	err := s.db.Where("reset_password_token = ? AND reset_password_expire > ?",
		hashResetToken(plainToken), s.now()).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	err = s.db.Model(&user).Updates(map[string]any{
		"password":              hash,
		"reset_password_token":  "",
		"reset_password_expire": nil,
	}).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func hashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
