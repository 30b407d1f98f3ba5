package mockwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

func newTestRegistry() *Registry {
	return NewRegistry(func() Config { return Config{} })
}

func TestRegistry_AddAndCount(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/users", Response: "ok"}))
	require.NoError(t, r.Add(&Definition{Method: "POST", Path: "/users", Response: "ok"}))
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/users/:id", Response: "ok"}))

	assert.Equal(t, 3, r.Count())
}

func TestRegistry_AddValidation(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name string
		def  Definition
	}{
		{"missing method", Definition{Path: "/users"}},
		{"missing path", Definition{Method: "GET"}},
		{
			"two response sources",
			Definition{
				Method:   "GET",
				Path:     "/users",
				Response: "literal",
				Handler:  func(ctx *RequestContext) (interface{}, error) { return nil, nil },
			},
		},
		{
			"script plus literal",
			Definition{
				Method:   "GET",
				Path:     "/users",
				Response: "literal",
				Script:   "(ctx) => 1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Add(&tt.def)
			require.Error(t, err)
			var me *util.MockwireError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, util.ValidationError, me.Type)
		})
	}

	assert.Equal(t, 0, r.Count(), "failed registrations must not be stored")
}

func TestRegistry_NoResponseSourceIsValid(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/ping"}))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Remove(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/users/:id"}))

	// Removal takes the original pattern, not a concrete path.
	err := r.Remove("GET", "/users/42")
	require.Error(t, err)
	var me *util.MockwireError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, util.MissingResourceError, me.Type)

	require.NoError(t, r.Remove("GET", "/users/:id"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_RemoveDropsAllRegistrationsOfShape(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/users", Priority: 1}))
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/users", Priority: 2}))

	require.NoError(t, r.Remove("GET", "/users"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_Clear(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/a"}))
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/b"}))

	r.Clear()
	assert.Equal(t, 0, r.Count())

	// Clearing an empty registry is fine.
	r.Clear()
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_AllReturnsRegistrationOrder(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/c"}))
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/a"}))
	require.NoError(t, r.Add(&Definition{Method: "GET", Path: "/b"}))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "/c", all[0].pattern.raw)
	assert.Equal(t, "/a", all[1].pattern.raw)
	assert.Equal(t, "/b", all[2].pattern.raw)
}
