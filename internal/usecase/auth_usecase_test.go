package usecase

import (
	"context"
	"testing"

	"starfruit/internal/config"
	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func authFixture() (*AuthUsecase, *UserRepoMock, *RiderProfileRepoMock) {
	users := new(UserRepoMock)
	riders := new(RiderProfileRepoMock)
	cfg := config.Config{JWTSecret: "test-secret"}
	return NewAuthUsecase(cfg, users, riders), users, riders
}

func TestAuth_Register_HashesPassword(t *testing.T) {
	uc, users, _ := authFixture()

	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		//平文が保存されていないこと
		return u.PasswordHash != "segredo123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo123")) == nil
	})).Return(nil)

	out, err := uc.Register(context.Background(), AuthRegisterRequest{
		Email: "Ana@Example.com", Password: "segredo123", UserType: "customer", FullName: "Ana",
	})
	assert.NoError(t, err)
	assert.Equal(t, "ana@example.com", out.Email)
	assert.Equal(t, "customer", out.UserType)

	users.AssertExpectations(t)
}

func TestAuth_Register_RiderGetsProfile(t *testing.T) {
	uc, users, riders := authFixture()

	users.On("FindByEmail", mock.Anything, mock.Anything).Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	riders.On("GetOrCreate", mock.Anything, mock.Anything).Return(model.RiderProfile{Available: true}, nil)

	_, err := uc.Register(context.Background(), AuthRegisterRequest{
		Email: "joao@example.com", Password: "segredo123", UserType: "rider",
	})
	assert.NoError(t, err)
	riders.AssertCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestAuth_Register_InvalidUserType(t *testing.T) {
	uc, _, _ := authFixture()

	_, err := uc.Register(context.Background(), AuthRegisterRequest{
		Email: "x@example.com", Password: "segredo123", UserType: "admin",
	})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	uc, users, _ := authFixture()

	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(model.User{ID: "u-1"}, nil)

	_, err := uc.Register(context.Background(), AuthRegisterRequest{
		Email: "ana@example.com", Password: "segredo123", UserType: "customer",
	})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestAuth_Login_TokenCarriesUserType(t *testing.T) {
	uc, users, _ := authFixture()

	hash, _ := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.DefaultCost)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(model.User{
		ID: "u-1", Email: "ana@example.com", PasswordHash: string(hash), UserType: model.UserTypeStore,
	}, nil)

	out, err := uc.Login(context.Background(), AuthLoginRequest{Email: "ana@example.com", Password: "segredo123"})
	assert.NoError(t, err)

	token, err := jwt.Parse(out.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "u-1", claims["sub"])
	assert.Equal(t, "store", claims["utype"])
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	uc, users, _ := authFixture()

	hash, _ := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.DefaultCost)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(model.User{
		ID: "u-1", PasswordHash: string(hash),
	}, nil)

	_, err := uc.Login(context.Background(), AuthLoginRequest{Email: "ana@example.com", Password: "errada"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 401, he.Status)
}
