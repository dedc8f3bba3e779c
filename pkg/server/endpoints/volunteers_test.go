package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

func sampleRegistrations() []model.VolunteerRegistration {
	return []model.VolunteerRegistration{
		{ID: "r1", GridID: "g1", CreatedByID: "u1", VolunteerName: "Alice",
			VolunteerPhone: strPtr("0911"), VolunteerEmail: strPtr("alice@example.com"), GridCreatorID: "u2"},
		{ID: "r2", GridID: "g1", CreatedByID: "u3", VolunteerName: "Carol",
			VolunteerPhone: strPtr("0933"), GridCreatorID: "u2"},
	}
}

func TestListGridVolunteers(t *testing.T) {
	t.Run("grid owner sees everyone", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		token := env.session(t, bob())
		env.grids.On("FetchGrid", mock.Anything, "g1").Return(&model.Grid{ID: "g1", CreatedByID: "u2"}, nil)
		env.volunteers.On("ListRegistrations", mock.Anything, store.ListOptions{GridID: "g1", Limit: 50}).
			Return(sampleRegistrations(), nil)

		rec := env.do(t, "GET", "/grids/g1/volunteers", nil, withToken(token))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []model.VolunteerRegistration
		decodeBody(t, rec, &got)
		require.Len(t, got, 2)
		assert.NotNil(t, got[0].VolunteerPhone)
		assert.NotNil(t, got[0].VolunteerEmail)
		assert.NotNil(t, got[1].VolunteerPhone)
	})

	t.Run("volunteer sees only self", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		token := env.session(t, carol())
		env.grids.On("FetchGrid", mock.Anything, "g1").Return(&model.Grid{ID: "g1", CreatedByID: "u2"}, nil)
		env.volunteers.On("ListRegistrations", mock.Anything, store.ListOptions{GridID: "g1", Limit: 50}).
			Return(sampleRegistrations(), nil)

		rec := env.do(t, "GET", "/grids/g1/volunteers", nil, withToken(token))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []model.VolunteerRegistration
		decodeBody(t, rec, &got)
		require.Len(t, got, 2)
		assert.Nil(t, got[0].VolunteerPhone)
		assert.Nil(t, got[0].VolunteerEmail)
		assert.Equal(t, "Alice", got[0].VolunteerName)
		require.NotNil(t, got[1].VolunteerPhone)
		assert.Equal(t, "0933", *got[1].VolunteerPhone)
		assert.NotContains(t, rec.Body.String(), "grid_created_by_id")
	})

	t.Run("unknown grid", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		env.grids.On("FetchGrid", mock.Anything, "nope").Return(nil, store.ErrNotFound)

		rec := env.do(t, "GET", "/grids/nope/volunteers", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		env.volunteers.AssertNotCalled(t, "ListRegistrations", mock.Anything, mock.Anything)
	})
}

func TestListAllVolunteers(t *testing.T) {
	env := newTestEnv(t, defaultRules())
	env.volunteers.On("ListRegistrations", mock.Anything, store.ListOptions{Limit: 50}).
		Return(sampleRegistrations(), nil)

	rec := env.do(t, "GET", "/volunteers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "0911")
	assert.NotContains(t, rec.Body.String(), "0933")
}

func TestCreateRegistration(t *testing.T) {
	t.Run("created pending", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		token := env.session(t, carol())
		env.volunteers.On("CreateRegistration", mock.Anything, mock.MatchedBy(func(r *model.VolunteerRegistration) bool {
			return r.GridID == "g1" && r.CreatedByID == "u3" && r.Status == model.RegistrationPending
		})).Return(nil)

		rec := env.do(t, "POST", "/grids/g1/volunteers",
			RegistrationRequest{VolunteerName: "Carol", VolunteerPhone: strPtr("0933"), Skills: "lifting"},
			withToken(token))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "0933")
	})

	t.Run("name required", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		token := env.session(t, carol())

		rec := env.do(t, "POST", "/grids/g1/volunteers", RegistrationRequest{}, withToken(token))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "volunteer_name is required", errorMessage(t, rec))
	})

	t.Run("unknown grid", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		token := env.session(t, carol())
		env.volunteers.On("CreateRegistration", mock.Anything, mock.Anything).Return(store.ErrNotFound)

		rec := env.do(t, "POST", "/grids/nope/volunteers", RegistrationRequest{VolunteerName: "Carol"}, withToken(token))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
