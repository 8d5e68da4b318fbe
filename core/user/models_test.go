package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classpoll/core"
)

func newValidate() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestUser_CheckPassword(t *testing.T) {
	hashed := User{Email: "a@b.c"}
	require.NoError(t, hashed.SetPassword("secret1"))

	tests := []struct {
		name    string
		usr     User
		pwd     string
		wantErr bool
	}{
		{name: "hashed ok", usr: hashed, pwd: "secret1"},
		{name: "hashed wrong", usr: hashed, pwd: "secret2", wantErr: true},
		{name: "legacy plaintext ok", usr: User{Secret: "passer25"}, pwd: "passer25"},
		{name: "legacy plaintext wrong", usr: User{Secret: "passer25"}, pwd: "passer26", wantErr: true},
		{name: "empty secret", usr: User{}, pwd: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.usr.CheckPassword(tt.pwd); (err != nil) != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeedAdmin(t *testing.T) {
	usr, err := SeedAdmin()
	require.NoError(t, err)
	assert.Equal(t, SeedAdminID, usr.ID)
	assert.Equal(t, RoleAdmin, usr.Role)
	assert.True(t, usr.IsProtected())
	assert.NotEqual(t, DefaultSecret, usr.Secret)
	assert.NoError(t, usr.CheckPassword(DefaultSecret))

	legacy := User{ID: "u-1", Email: "FAYE@ECO.COM"}
	assert.True(t, legacy.IsProtected())

	renamed := User{ID: SeedAdminID, Email: "boss@school.sn"}
	assert.True(t, renamed.IsProtected())

	assert.False(t, (&User{ID: "u-2", Email: "awa@school.sn"}).IsProtected())
}

func TestNewUser_Validate(t *testing.T) {
	validate := newValidate()

	tests := []struct {
		name    string
		nu      NewUser
		wantErr bool
	}{
		{
			name: "valid student",
			nu:   NewUser{Name: "Awa Diop", Email: " Awa@School.sn ", Password: "kiwi-42x", Role: RoleStudent, ClassGroup: "6eA"},
		},
		{
			name: "admin without class",
			nu:   NewUser{Name: "Root", Email: "root@school.sn", Password: "zz-top-9", Role: RoleAdmin},
		},
		{
			name:    "student without class",
			nu:      NewUser{Name: "Awa Diop", Email: "awa@school.sn", Password: "kiwi-42x", Role: RoleStudent},
			wantErr: true,
		},
		{
			name:    "blank name",
			nu:      NewUser{Name: "   ", Email: "awa@school.sn", Password: "kiwi-42x", Role: RoleStudent, ClassGroup: "6eA"},
			wantErr: true,
		},
		{
			name:    "unknown role",
			nu:      NewUser{Name: "Awa", Email: "awa@school.sn", Password: "kiwi-42x", Role: "GUEST", ClassGroup: "6eA"},
			wantErr: true,
		},
		{
			name:    "password with space",
			nu:      NewUser{Name: "Awa", Email: "awa@school.sn", Password: "kiwi 42x", Role: RoleStudent, ClassGroup: "6eA"},
			wantErr: true,
		},
		{
			name:    "password similar to email",
			nu:      NewUser{Name: "Awa", Email: "awa@school.sn", Password: "awa@school", Role: RoleStudent, ClassGroup: "6eA"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			if err := nu.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewUser_Validate_cleansInput(t *testing.T) {
	nu := NewUser{Name: "  Awa Diop ", Email: " Awa@School.SN", Password: "kiwi-42x", Role: RoleStudent, ClassGroup: " 6eA "}
	require.NoError(t, nu.Validate(newValidate()))
	assert.Equal(t, "Awa Diop", nu.Name)
	assert.Equal(t, "awa@school.sn", nu.Email)
	assert.Equal(t, "6eA", nu.ClassGroup)
}

func TestUpdateUser_Apply(t *testing.T) {
	usr := User{ID: "u1", Name: "Old", Email: "old@school.sn", Role: RoleStudent, ClassGroup: "6eA", Secret: "legacy"}

	t.Run("keeps secret when password empty", func(t *testing.T) {
		got, err := UpdateUser{Name: "New", Email: "new@school.sn", Role: RoleStudent, ClassGroup: "5eB"}.Apply(usr)
		require.NoError(t, err)
		assert.Equal(t, "legacy", got.Secret)
		assert.Equal(t, "5eB", got.ClassGroup)
		assert.Equal(t, "u1", got.ID)
	})

	t.Run("hashes new password", func(t *testing.T) {
		got, err := UpdateUser{Name: "New", Email: "new@school.sn", Password: "mango-77", Role: RoleAdmin}.Apply(usr)
		require.NoError(t, err)
		assert.NoError(t, got.CheckPassword("mango-77"))
		assert.Empty(t, got.ClassGroup)
	})
}
