package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/user"
	"github.com/MrJamesThe3rd/bursar/internal/user/store"
)

func TestService_Register(t *testing.T) {
	type testCase struct {
		name      string
		params    user.RegisterParams
		setupMock func(m *user.MockRepository)
		wantField string
		wantErr   error
	}

	valid := user.RegisterParams{
		FullName: "Ada Student",
		Email:    " Ada@Example.edu ",
		Password: "correct horse",
		Role:     application.RoleStudent,
	}

	with := func(mut func(p *user.RegisterParams)) user.RegisterParams {
		p := valid
		mut(&p)

		return p
	}

	tests := []testCase{
		{
			name:   "Success",
			params: valid,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "SystemRoleNotAssignable",
			params:    with(func(p *user.RegisterParams) { p.Role = application.RoleSystem }),
			wantField: "role",
		},
		{
			name:      "ShortPassword",
			params:    with(func(p *user.RegisterParams) { p.Password = "short" }),
			wantField: "password",
		},
		{
			name:      "BadEmail",
			params:    with(func(p *user.RegisterParams) { p.Email = "nope" }),
			wantField: "email",
		},
		{
			name:   "EmailTaken",
			params: valid,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(user.ErrEmailTaken)
			},
			wantErr: user.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := user.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := user.NewService(repo).WithCost(bcrypt.MinCost)
			got, err := svc.Register(context.Background(), tt.params)

			switch {
			case tt.wantField != "":
				var verr *application.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "ada@example.edu", got.Email)
				assert.NotEqual(t, []byte(tt.params.Password), got.PasswordHash)
			}
		})
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(store.NewMemory()).WithCost(bcrypt.MinCost)

	registered, err := svc.Register(ctx, user.RegisterParams{
		FullName: "Rita Reviewer",
		Email:    "rita@bursar.local",
		Password: "s3cret-pass",
		Role:     application.RoleReviewer,
	})
	require.NoError(t, err)

	got, err := svc.Login(ctx, "RITA@bursar.local", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, got.ID)
	assert.Equal(t, application.RoleReviewer, got.Role)

	_, err = svc.Login(ctx, "rita@bursar.local", "wrong-pass")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@bursar.local", "s3cret-pass")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Register(ctx, user.RegisterParams{
		FullName: "Rita Again",
		Email:    "rita@bursar.local",
		Password: "another-pass",
		Role:     application.RoleStudent,
	})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestService_SeedDemo(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(store.NewMemory()).WithCost(bcrypt.MinCost)

	require.NoError(t, svc.SeedDemo(ctx))
	require.NoError(t, svc.SeedDemo(ctx))

	for _, email := range []string{"student@bursar.local", "reviewer@bursar.local", "finance@bursar.local"} {
		_, err := svc.Login(ctx, email, user.DemoPassword)
		assert.NoError(t, err, email)
	}
}
