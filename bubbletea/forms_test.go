package bubbletea_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vedaai/veda"
	bt "github.com/vedaai/veda/bubbletea"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"asha@example.com", "a.b+c@veda.ai"} {
		assert.NoError(t, bt.ValidateEmail(ok), ok)
	}
	for _, bad := range []string{"", "   ", "asha", "Asha <asha@example.com>", "@example.com"} {
		assert.Error(t, bt.ValidateEmail(bad), bad)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	assert.Error(t, bt.ValidatePassword("12345"))
	assert.NoError(t, bt.ValidatePassword("123456"))
}

func TestForms_Build(t *testing.T) {
	t.Parallel()

	var c veda.Credentials
	assert.NotNil(t, bt.LoginForm(&c))

	var r veda.Registration
	assert.NotNil(t, bt.RegisterForm(&r))
}
