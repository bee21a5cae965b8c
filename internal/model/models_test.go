package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"ADMIN", RoleAdmin, false},
		{"integrator", RoleIntegrator, false},
		{" scr ", RoleSCR, false},
		{"Resident", RoleResident, false},
		{"", "", true},
		{"owner", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "MOTOVIGIA", RoleSCR.Label())
	assert.Equal(t, "RESIDENT", RoleResident.Label())
}

func TestParseAlertType(t *testing.T) {
	got, err := ParseAlertType("panic")
	require.NoError(t, err)
	assert.Equal(t, AlertPanic, got)
	assert.Equal(t, "PÂNICO", got.DefaultText())

	_, err = ParseAlertType("FIRE")
	assert.ErrorIs(t, err, ErrInvalidAlertType)
}

func TestLookupPlan(t *testing.T) {
	p, err := LookupPlan("family")
	require.NoError(t, err)
	assert.Equal(t, PlanFamily, p.ID)
	assert.Equal(t, 39.90, p.Price)
	assert.Equal(t, "Plano Família - Atalaia", p.Title)

	p, err = LookupPlan("PREMIUM")
	require.NoError(t, err)
	assert.Equal(t, 79.90, p.Price)

	_, err = LookupPlan("GOLD")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestPlansIsACopy(t *testing.T) {
	ps := Plans()
	require.Len(t, ps, 3)
	assert.Equal(t, PlanFree, ps[0].ID)

	ps[0].Price = 100
	assert.Zero(t, Plans()[0].Price)
}

func TestCanViewCameras(t *testing.T) {
	assert.False(t, User{Role: RoleResident, Plan: PlanFree}.CanViewCameras())
	assert.True(t, User{Role: RoleResident, Plan: PlanFamily}.CanViewCameras())
	assert.True(t, User{Role: RoleAdmin, Plan: PlanFree}.CanViewCameras())
}

func TestSameNeighborhood(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	aCopy := a

	assert.True(t, SameNeighborhood(nil, nil))
	assert.True(t, SameNeighborhood(&a, &aCopy))
	assert.False(t, SameNeighborhood(&a, &b))
	assert.False(t, SameNeighborhood(&a, nil))
	assert.False(t, SameNeighborhood(nil, &b))
	assert.True(t, ChatMessage{NeighborhoodID: &a}.InNeighborhood(&aCopy))
}
