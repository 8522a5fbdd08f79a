// README: HTTP-level tests over the full router with in-memory stores.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "revline/internal/http"
	"revline/internal/modules/checklist"
	"revline/internal/modules/identity"
	"revline/internal/modules/order"
	"revline/internal/modules/vehicle"
	"revline/internal/types"
)

type fixture struct {
	t      *testing.T
	router http.Handler

	identity  *identity.Service
	vehicles  *vehicle.Service
	checklist *checklist.Service
	orders    *order.Service

	tokens map[string]string // username -> bearer token
	users  map[string]*identity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	identityStore := identity.NewMemStore()
	vehicleStore := vehicle.NewMemStore()
	checklistStore := checklist.NewMemStore()
	orderStore := order.NewMemStore()

	identitySvc := identity.NewService(identityStore, "test-secret", time.Hour)
	vehicleSvc := vehicle.NewService(vehicleStore)
	checklistSvc := checklist.NewService(checklistStore, orderStore, vehicleSvc)
	orderSvc := order.NewService(orderStore, checklistSvc, checklistSvc, vehicleSvc, nil, log)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Identity:  identitySvc,
		Order:     orderSvc,
		Vehicle:   vehicleSvc,
		Checklist: checklistSvc,
		Log:       log,
	})

	return &fixture{
		t:         t,
		router:    router,
		identity:  identitySvc,
		vehicles:  vehicleSvc,
		checklist: checklistSvc,
		orders:    orderSvc,
		tokens:    make(map[string]string),
		users:     make(map[string]*identity.User),
	}
}

func (f *fixture) addUser(username string, role identity.Role) *identity.User {
	f.t.Helper()
	ctx := context.Background()
	u, err := f.identity.Register(ctx, identity.RegisterCommand{
		Username: username,
		Email:    username + "@example.com",
		Password: "long-enough-pw",
		Role:     role,
	})
	require.NoError(f.t, err)
	token, _, err := f.identity.Login(ctx, username, "long-enough-pw")
	require.NoError(f.t, err)
	f.tokens[username] = token
	f.users[username] = u
	return u
}

func (f *fixture) do(method, path, username string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[username])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// seedGarage provisions a vehicle type with one required checklist item, a
// client with one vehicle, an operator and an admin.
func (f *fixture) seedGarage() (clientVehicle *vehicle.Vehicle, itemID types.ID) {
	f.t.Helper()
	ctx := context.Background()

	client := f.addUser("carla", identity.RoleClient)
	f.addUser("otto", identity.RoleOperator)
	f.addUser("oscar", identity.RoleOperator)
	f.addUser("alice", identity.RoleAdmin)

	vt, err := f.vehicles.CreateType(ctx, "sedan")
	require.NoError(f.t, err)
	it, err := f.checklist.CreateItem(ctx, checklist.CreateItemCommand{
		VehicleTypeID: vt.ID,
		Name:          "Brake inspection",
		IsRequired:    true,
	})
	require.NoError(f.t, err)
	v, err := f.vehicles.Create(ctx, vehicle.CreateCommand{
		ClientID: client.ID,
		TypeID:   vt.ID,
		Plate:    "AB-123-CD",
		Make:     "Fiat",
		Model:    "Panda",
		Year:     2019,
	})
	require.NoError(f.t, err)
	return v, it.ID
}

func (f *fixture) createOrder(v *vehicle.Vehicle) string {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/orders", "carla", gin.H{
		"vehicle_id":  string(v.ID),
		"description": "strange noise when braking",
	})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(f.t, w)["id"].(string)
}

func TestAuthEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "carla",
		"email":    "carla@example.com",
		"password": "long-enough-pw",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "client", decode(t, w)["role"])

	// admin accounts cannot be self-registered
	w = f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "mallory",
		"email":    "mallory@example.com",
		"password": "long-enough-pw",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "carla",
		"password": "long-enough-pw",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "carla",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// protected routes reject anonymous callers
	w = f.do(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderCreationForcesClientIdentity(t *testing.T) {
	f := newFixture(t)
	v, _ := f.seedGarage()
	f.addUser("cesar", identity.RoleClient)

	// a client cannot open an order on someone else's vehicle even by
	// spoofing client_id
	w := f.do(http.MethodPost, "/api/orders", "cesar", gin.H{
		"client_id":   string(f.users["carla"].ID),
		"vehicle_id":  string(v.ID),
		"description": "not my car",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTakeRequiresOperatorRole(t *testing.T) {
	f := newFixture(t)
	v, _ := f.seedGarage()
	id := f.createOrder(v)

	w := f.do(http.MethodPost, "/api/orders/"+id+"/take", "carla", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(http.MethodPost, "/api/orders/"+id+"/take", "alice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/orders/"+id+"/take", "otto", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// take-once over HTTP
	w = f.do(http.MethodPost, "/api/orders/"+id+"/take", "oscar", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReleaseRules(t *testing.T) {
	f := newFixture(t)
	v, _ := f.seedGarage()
	id := f.createOrder(v)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/orders/"+id+"/take", "otto", nil).Code)

	// a reason is mandatory
	w := f.do(http.MethodPost, "/api/orders/"+id+"/release", "otto", gin.H{"notes": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// only the assignee may release
	w = f.do(http.MethodPost, "/api/orders/"+id+"/release", "oscar", gin.H{"notes": "taking over"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/orders/"+id+"/release", "otto", gin.H{"notes": "waiting for parts"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCompletionBlockedByChecklist(t *testing.T) {
	f := newFixture(t)
	v, itemID := f.seedGarage()
	id := f.createOrder(v)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/orders/"+id+"/take", "otto", nil).Code)

	w := f.do(http.MethodPost, "/api/orders/"+id+"/status", "otto", gin.H{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	require.Contains(t, body, "errors")
	assert.Contains(t, body["errors"].([]any)[0], "Brake inspection")

	// complete the item, then the transition goes through
	w = f.do(http.MethodPost, fmt.Sprintf("/api/orders/%s/checklist/%s/complete", id, itemID), "otto", gin.H{"notes": "pads replaced"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/orders/"+id+"/checklist/validate", "otto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_valid"])

	w = f.do(http.MethodPost, "/api/orders/"+id+"/status", "otto", gin.H{"status": "completed"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBillingAndHistory(t *testing.T) {
	f := newFixture(t)
	v, itemID := f.seedGarage()
	id := f.createOrder(v)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/orders/"+id+"/take", "otto", nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost,
		fmt.Sprintf("/api/orders/%s/checklist/%s/complete", id, itemID), "otto", gin.H{}).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/orders/"+id+"/status", "otto", gin.H{"status": "completed"}).Code)

	// billing is a staff transition with a final cost
	w := f.do(http.MethodPost, "/api/orders/"+id+"/status", "alice", gin.H{
		"status":     "billed",
		"final_cost": gin.H{"amount": 24900, "currency": "EUR"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(http.MethodPost, "/api/orders/"+id+"/status", "alice", gin.H{"status": "closed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/orders/"+id, "carla", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "closed", body["status"])
	require.NotNil(t, body["final_cost"])
	assert.EqualValues(t, 24900, body["final_cost"].(map[string]any)["amount"])

	w = f.do(http.MethodGet, "/api/orders/"+id+"/history", "carla", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["history"].([]any)
	assert.Len(t, history, 4) // take, complete, billed, closed
	first := history[0].(map[string]any)
	assert.Equal(t, "pending", first["previous_status"])
	assert.Equal(t, "take", first["operator_action"])
}

func TestVisibilityOverHTTP(t *testing.T) {
	f := newFixture(t)
	v, _ := f.seedGarage()
	f.addUser("cesar", identity.RoleClient)
	id := f.createOrder(v)

	// another client cannot see or fetch the order
	w := f.do(http.MethodGet, "/api/orders", "cesar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["orders"])

	w = f.do(http.MethodGet, "/api/orders/"+id, "cesar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// an operator sees nothing until taking the order
	w = f.do(http.MethodGet, "/api/orders", "otto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["orders"])

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/orders/"+id+"/take", "otto", nil).Code)
	w = f.do(http.MethodGet, "/api/orders", "otto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["orders"], 1)

	// the owner keeps full read access, admins see everything
	w = f.do(http.MethodGet, "/api/orders?status=active", "carla", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["orders"], 1)

	w = f.do(http.MethodGet, "/api/orders", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["orders"], 1)
}

func TestStatusEndpointRejectsClients(t *testing.T) {
	f := newFixture(t)
	v, _ := f.seedGarage()
	id := f.createOrder(v)

	w := f.do(http.MethodPost, "/api/orders/"+id+"/status", "carla", gin.H{"status": "in_progress"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
