package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/facialanalyzer/internal/models"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM \n"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		errMsg  string
		wantErr bool
	}{
		{
			name:  "valid email",
			email: "alice@example.com",
		},
		{
			name:  "valid email - subdomain",
			email: "bob.smith@mail.example.co.uk",
		},
		{
			name:    "invalid - empty",
			email:   "",
			wantErr: true,
			errMsg:  "email cannot be empty",
		},
		{
			name:    "invalid - no at sign",
			email:   "alice.example.com",
			wantErr: true,
			errMsg:  "valid email",
		},
		{
			name:    "invalid - no dot in domain",
			email:   "alice@localhost",
			wantErr: true,
			errMsg:  "valid email",
		},
		{
			name:    "invalid - whitespace",
			email:   "alice smith@example.com",
			wantErr: true,
			errMsg:  "valid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
		wantErr  bool
	}{
		{name: "min length", password: "secret"},
		{name: "long password", password: strings.Repeat("x", 72)},
		{name: "empty", password: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "too short", password: "12345", wantErr: true, errMsg: "at least 6"},
		{name: "multibyte counted as characters", password: "ééé", wantErr: true, errMsg: "at least 6"},
		{name: "six multibyte characters", password: "пароль"},
		{name: "multibyte over bcrypt limit", password: strings.Repeat("ж", 37), wantErr: true, errMsg: "must not exceed 72"},
		{name: "too long for bcrypt", password: strings.Repeat("x", 73), wantErr: true, errMsg: "must not exceed 72"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Alice"))
	// 50 символов кириллицы - это 100 байт, но 50 рун
	assert.NoError(t, ValidateName(strings.Repeat("я", 50)))

	err := ValidateName("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	err = ValidateName(strings.Repeat("a", 51))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed 50")
}

func TestValidateProfile(t *testing.T) {
	age := func(v int) *int { return &v }

	tests := []struct {
		name    string
		profile models.Profile
		wantErr bool
	}{
		{name: "empty profile", profile: models.Profile{}},
		{
			name:    "full profile",
			profile: models.Profile{Age: age(30), Gender: models.GenderFemale, SkinType: models.SkinTypeOily},
		},
		{name: "negative age", profile: models.Profile{Age: age(-1)}, wantErr: true},
		{name: "age too large", profile: models.Profile{Age: age(200)}, wantErr: true},
		{name: "unknown gender", profile: models.Profile{Gender: "robot"}, wantErr: true},
		{name: "unknown skin type", profile: models.Profile{SkinType: "scaly"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
