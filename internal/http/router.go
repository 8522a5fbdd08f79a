// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"revline/internal/http/handlers"
	"revline/internal/http/middleware"
	"revline/internal/modules/checklist"
	"revline/internal/modules/identity"
	"revline/internal/modules/order"
	"revline/internal/modules/vehicle"
)

type RouterDeps struct {
	Identity  *identity.Service
	Order     *order.Service
	Vehicle   *vehicle.Service
	Checklist *checklist.Service
	Log       *logrus.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authHandler := handlers.NewAuthHandler(deps.Identity)
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	api := r.Group("/api", middleware.Auth(deps.Identity))

	staff := []identity.Role{identity.RoleAdmin, identity.RoleSuperAdmin}
	staffOrOperator := append([]identity.Role{identity.RoleOperator}, staff...)

	orderHandler := handlers.NewOrderHandler(deps.Order)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/:id", orderHandler.Get)
	api.POST("/orders", middleware.Require(identity.RoleClient, identity.RoleAdmin, identity.RoleSuperAdmin), orderHandler.Create)
	api.POST("/orders/:id/take", middleware.Require(identity.RoleOperator), orderHandler.Take)
	api.POST("/orders/:id/release", middleware.Require(identity.RoleOperator), orderHandler.Release)
	api.POST("/orders/:id/status", middleware.Require(staffOrOperator...), orderHandler.ChangeStatus)
	api.GET("/orders/:id/history", orderHandler.History)

	checklistHandler := handlers.NewChecklistHandler(deps.Checklist, deps.Order)
	api.GET("/orders/:id/checklist", checklistHandler.Rows)
	api.GET("/orders/:id/checklist/validate", middleware.Require(staffOrOperator...), checklistHandler.Validate)
	api.POST("/orders/:id/checklist/:itemID/complete", middleware.Require(staffOrOperator...), checklistHandler.CompleteItem)
	api.POST("/checklist-items", middleware.Require(staff...), checklistHandler.CreateItem)

	vehicleHandler := handlers.NewVehicleHandler(deps.Vehicle)
	api.GET("/vehicles", vehicleHandler.List)
	api.POST("/vehicles", middleware.Require(identity.RoleClient, identity.RoleAdmin, identity.RoleSuperAdmin), vehicleHandler.Create)
	api.POST("/vehicle-types", middleware.Require(staff...), vehicleHandler.CreateType)

	return r
}
