package runtime_test

import (
	"testing"

	"github.com/aretw0/uiengineer/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionURL(t *testing.T) {
	tests := []struct {
		app, action, want string
	}{
		{"todo-list", "add_item", "/todo-list?action=add_item"},
		{"todo-list", "add item", "/todo-list?action=add%20item"},
		{"todo-list", "", "/todo-list?action="},
		{"todo-list", "a&b=c", "/todo-list?action=a%26b%3Dc"},
		{"todo-list", "1+1", "/todo-list?action=1%2B1"},
		{"my app", "x", "/my%20app?action=x"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, runtime.ActionURL(tt.app, tt.action))
		})
	}
}

func TestParseAction_RoundTrip(t *testing.T) {
	actions := []string{
		"add_item",
		"add item",
		"a&b=c",
		"jump to #anchor",
		"100% done?",
		"1+1 = 2",
		"label: value\nother: thing",
		"emoji ✓ and ünïcode",
		"",
	}
	apps := []string{"todo-list", "my app", "notes/2024"}

	for _, app := range apps {
		for _, action := range actions {
			gotApp, gotAction, err := runtime.ParseAction(runtime.ActionURL(app, action))
			require.NoError(t, err)
			assert.Equal(t, app, gotApp)
			assert.Equal(t, action, gotAction)
		}
	}
}

func TestParseAction_Invalid(t *testing.T) {
	_, _, err := runtime.ParseAction("/?action=x")
	assert.Error(t, err)

	_, _, err = runtime.ParseAction("%zz")
	assert.Error(t, err)
}

func TestSubmitURL(t *testing.T) {
	assert.Equal(t, "/api/todo-list", runtime.SubmitURL("todo-list"))
	assert.Equal(t, "/api/my%20app", runtime.SubmitURL("my app"))
}
