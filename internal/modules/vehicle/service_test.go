// README: Vehicle service tests.
package vehicle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*Service, *Type) {
	t.Helper()
	svc := NewService(NewMemStore())
	vt, err := svc.CreateType(context.Background(), "sedan")
	require.NoError(t, err)
	return svc, vt
}

func TestCreateRequiresKnownType(t *testing.T) {
	svc, vt := newFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCommand{ClientID: "c1", TypeID: "nope", Plate: "AB-123"})
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := svc.Create(ctx, CreateCommand{ClientID: "c1", TypeID: vt.ID, Plate: "AB-123"})
	require.NoError(t, err)
	assert.Equal(t, vt.ID, v.TypeID)
}

func TestCreateValidation(t *testing.T) {
	svc, vt := newFixture(t)
	_, err := svc.Create(context.Background(), CreateCommand{TypeID: vt.ID, Plate: "AB-123"})
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = svc.Create(context.Background(), CreateCommand{ClientID: "c1", TypeID: vt.ID})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestOwnershipLookups(t *testing.T) {
	svc, vt := newFixture(t)
	ctx := context.Background()

	v1, err := svc.Create(ctx, CreateCommand{ClientID: "c1", TypeID: vt.ID, Plate: "AA-111"})
	require.NoError(t, err)
	v2, err := svc.Create(ctx, CreateCommand{ClientID: "c1", TypeID: vt.ID, Plate: "BB-222"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCommand{ClientID: "c2", TypeID: vt.ID, Plate: "CC-333"})
	require.NoError(t, err)

	owner, err := svc.VehicleOwner(ctx, v1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, "c1", owner)

	ids, err := svc.IDsOwnedBy(ctx, "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{v1.ID, v2.ID}, ids)

	typeID, err := svc.TypeOf(ctx, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, vt.ID, typeID)

	_, err = svc.TypeOf(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
