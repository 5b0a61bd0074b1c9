package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcandylab/candylab-backend/internal/users"
	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db/dbtest"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/security"
)

func TestRegisterCreatesUser(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client})
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Register(ctx, RegisterRequest{
		Email:       " Mochi@Example.COM ",
		Password:    "sweet-tooth",
		DisplayName: " 모찌 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "mochi@example.com", dto.Email)
	assert.Equal(t, "모찌", dto.DisplayName)
	assert.Equal(t, enums.UserRoleUser, dto.Role)
	assert.True(t, dto.IsActive)

	stored, err := users.NewRepository(client.DB()).FindByEmail(ctx, "mochi@example.com")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("sweet-tooth", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Register(ctx, RegisterRequest{Email: "twin@example.com", Password: "sweet-tooth", DisplayName: "A"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "TWIN@example.com", Password: "sweet-tooth", DisplayName: "B"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestRegisterValidatesInput(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: config.PasswordConfig{}})
	require.NoError(t, err)

	cases := map[string]RegisterRequest{
		"short password":     {Email: "a@example.com", Password: "short", DisplayName: "A"},
		"blank email":        {Email: " ", Password: "sweet-tooth", DisplayName: "A"},
		"blank name":         {Email: "a@example.com", Password: "sweet-tooth", DisplayName: "  "},
		"name over 30 runes": {Email: "a@example.com", Password: "sweet-tooth", DisplayName: "젤리젤리젤리젤리젤리젤리젤리젤리젤리젤리젤리젤리젤리젤리젤리젤"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), req)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestNewRegisterServiceRequiresDB(t *testing.T) {
	_, err := NewRegisterService(RegisterServiceParams{})
	assert.Error(t, err)
}

func TestRegisterReportsEveryInvalidField(t *testing.T) {
	svc, err := NewRegisterService(RegisterServiceParams{DB: dbtest.Open(t)})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "x"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "display_name")
}
