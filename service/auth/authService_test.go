package authsvc

import (
	"context"
	"errors"
	"testing"

	"nebeng/model"
	authrepo "nebeng/repository/auth"
	"nebeng/util/hash"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ authrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Register(ctx, model.RegisterReq{
		FirstName: "Naufal",
		LastName:  "A",
		Email:     "USER@Example.COM",
		Username:  "naufal",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, "customer", u.Role, "role defaults to customer")
	require.NotEmpty(t, u.PasswordHash)
}

func TestRegister_DriverRoleKept(t *testing.T) {
	m := &mockRepo{createFn: func(ctx context.Context, u *model.User) error { u.ID = 1; return nil }}
	svc := New(m, "test-secret")

	u, _, err := svc.Register(context.Background(), model.RegisterReq{
		FirstName: "D", LastName: "R", Email: "drv@example.com",
		Username: "drv", Password: "123456", Role: "driver",
	})
	require.NoError(t, err)
	require.Equal(t, "driver", u.Role)
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		FirstName: "N", LastName: "A", Email: "taken@example.com",
		Username: "n", Password: "123456",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_UsernameTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		FirstName: "N", LastName: "A", Email: "n@example.com",
		Username: "taken", Password: "123456",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_Success(t *testing.T) {
	pwHash, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, Role: "customer", PasswordHash: pwHash}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(context.Background(), model.LoginReq{Email: "u@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, tok)
}

func TestLogin_WrongPassword(t *testing.T) {
	pwHash, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, PasswordHash: pwHash}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err = svc.Login(context.Background(), model.LoginReq{Email: "u@example.com", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_UnknownEmail(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("sql: no rows in result set")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "ghost@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
