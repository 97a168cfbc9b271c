package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"form-builder-api/internal/domain"
	"form-builder-api/internal/dto"
	"form-builder-api/internal/response"
)

const testSecret = "test-secret"

func newAuthService(userRepo *MockUserRepository) AuthService {
	return NewAuthService(userRepo, testSecret, time.Hour, zap.NewNop())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestAuthService_Signup(t *testing.T) {
	t.Run("creates user and returns signed token", func(t *testing.T) {
		var created *domain.User
		userRepo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, user *domain.User) error {
				user.ID = uuid.New()
				created = user
				return nil
			},
		}
		svc := newAuthService(userRepo)

		result, err := svc.Signup(context.Background(), &dto.SignupRequest{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "hunter2hunter2",
		})
		if err != nil {
			t.Fatalf("Signup() unexpected error: %v", err)
		}

		if created.PasswordHash == "hunter2hunter2" {
			t.Error("Signup() stored the plaintext password")
		}
		if created.Role != domain.UserRoleUser {
			t.Errorf("new user role = %v, want USER", created.Role)
		}

		token, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("Signup() token does not verify: %v", err)
		}
		claims := token.Claims.(jwt.MapClaims)
		if claims["user_id"] != created.ID.String() {
			t.Errorf("token user_id = %v, want %v", claims["user_id"], created.ID)
		}
		if claims["role"] != "USER" {
			t.Errorf("token role = %v, want USER", claims["role"])
		}
	})

	t.Run("rejects taken email with conflict", func(t *testing.T) {
		userRepo := &MockUserRepository{
			EmailTakenFunc: func(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
				return true, nil
			},
		}
		svc := newAuthService(userRepo)

		_, err := svc.Signup(context.Background(), &dto.SignupRequest{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "hunter2hunter2",
		})
		if err == nil {
			t.Fatal("Signup() expected conflict error")
		}
		if code := errCode(t, err); code != response.ErrCodeAlreadyExists {
			t.Errorf("error code = %v, want ALREADY_EXISTS", code)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	password := "correct-horse"
	user := &domain.User{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		Name:         "Bob",
		Email:        "bob@example.com",
		Role:         domain.UserRoleUser,
	}

	tests := []struct {
		name     string
		email    string
		password string
		found    bool
		wantErr  bool
	}{
		{name: "valid credentials", email: user.Email, password: password, found: true},
		{name: "wrong password", email: user.Email, password: "incorrect", found: true, wantErr: true},
		{name: "unknown email", email: "ghost@example.com", password: password, found: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user.PasswordHash = hashPassword(t, password)
			userRepo := &MockUserRepository{
				FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
					if tt.found {
						return user, nil
					}
					return nil, gorm.ErrRecordNotFound
				},
			}
			svc := newAuthService(userRepo)

			result, err := svc.Login(context.Background(), &dto.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			})

			if tt.wantErr {
				if err == nil {
					t.Fatal("Login() expected error")
				}
				// Unknown email and wrong password must be indistinguishable
				if code := errCode(t, err); code != response.ErrCodeUnauthorized {
					t.Errorf("error code = %v, want UNAUTHORIZED", code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() unexpected error: %v", err)
			}
			if result.Token == "" {
				t.Error("Login() returned empty token")
			}
			if result.User.Email != user.Email {
				t.Errorf("Login() user email = %v, want %v", result.User.Email, user.Email)
			}
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	userID := uuid.New()
	user := &domain.User{
		BaseModel: domain.BaseModel{ID: userID},
		Name:      "Carol",
		Email:     "carol@example.com",
	}

	t.Run("rejects email already in use", func(t *testing.T) {
		userRepo := &MockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
				return user, nil
			},
			EmailTakenFunc: func(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
				if excludeID != userID {
					t.Errorf("EmailTaken excludeID = %v, want %v", excludeID, userID)
				}
				return true, nil
			},
		}
		svc := newAuthService(userRepo)

		newEmail := "taken@example.com"
		_, err := svc.UpdateProfile(context.Background(), userID, &dto.UpdateProfileRequest{Email: &newEmail})
		if err == nil {
			t.Fatal("UpdateProfile() expected conflict error")
		}
		if code := errCode(t, err); code != response.ErrCodeAlreadyExists {
			t.Errorf("error code = %v, want ALREADY_EXISTS", code)
		}
	})

	t.Run("updates name without touching email", func(t *testing.T) {
		emailChecked := false
		userRepo := &MockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
				return user, nil
			},
			EmailTakenFunc: func(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
				emailChecked = true
				return false, nil
			},
		}
		svc := newAuthService(userRepo)

		newName := "Caroline"
		got, err := svc.UpdateProfile(context.Background(), userID, &dto.UpdateProfileRequest{Name: &newName})
		if err != nil {
			t.Fatalf("UpdateProfile() unexpected error: %v", err)
		}
		if got.Name != "Caroline" {
			t.Errorf("name = %v, want Caroline", got.Name)
		}
		if emailChecked {
			t.Error("UpdateProfile() checked email uniqueness on a name-only change")
		}
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	userID := uuid.New()
	current := "old-password"

	t.Run("rejects wrong current password", func(t *testing.T) {
		userRepo := &MockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
				return &domain.User{
					BaseModel:    domain.BaseModel{ID: userID},
					PasswordHash: hashPassword(t, current),
				}, nil
			},
		}
		svc := newAuthService(userRepo)

		err := svc.ChangePassword(context.Background(), userID, &dto.ChangePasswordRequest{
			CurrentPassword: "not-it",
			NewPassword:     "new-password",
		})
		if err == nil {
			t.Fatal("ChangePassword() expected error")
		}
		if code := errCode(t, err); code != response.ErrCodeUnauthorized {
			t.Errorf("error code = %v, want UNAUTHORIZED", code)
		}
	})

	t.Run("stores new hash on success", func(t *testing.T) {
		var updated *domain.User
		userRepo := &MockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
				return &domain.User{
					BaseModel:    domain.BaseModel{ID: userID},
					PasswordHash: hashPassword(t, current),
				}, nil
			},
			UpdateFunc: func(ctx context.Context, user *domain.User) error {
				updated = user
				return nil
			},
		}
		svc := newAuthService(userRepo)

		if err := svc.ChangePassword(context.Background(), userID, &dto.ChangePasswordRequest{
			CurrentPassword: current,
			NewPassword:     "new-password",
		}); err != nil {
			t.Fatalf("ChangePassword() unexpected error: %v", err)
		}
		if updated == nil {
			t.Fatal("ChangePassword() did not persist the user")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-password")); err != nil {
			t.Error("stored hash does not match the new password")
		}
	})
}
