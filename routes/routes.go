package routes

import (
	"restopos-backend/config"
	"restopos-backend/controllers"
	"restopos-backend/models"
	"restopos-backend/services"
	"restopos-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries what the router needs beyond the handlers.
type Options struct {
	Hub         *services.FloorHub
	Metrics     *utils.Metrics
	CORSOrigins []string
}

func SetupRouter(h *controllers.Handler, opts Options) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger(h.Logger, opts.Metrics))

	r.GET("/health", h.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	authRequired := utils.AuthMiddleware(h.Auth.Secret)
	managers := utils.RequireRole(models.RoleAdmin, models.RoleManager)
	floorStaff := utils.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleCashier, models.RoleWaiter)
	tills := utils.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleCashier)
	// the kitchen advances tickets through preparing and ready
	kitchenFlow := utils.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleCashier, models.RoleWaiter, models.RoleKitchen)

	if opts.Hub != nil {
		r.GET("/ws/floor", authRequired, gin.WrapF(opts.Hub.ServeWS))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		auth.Use(authRequired)
		auth.GET("/me", h.Me)
	}

	api := r.Group("/api")
	api.Use(authRequired)
	{
		staff := api.Group("/staff", utils.RequireRole(models.RoleAdmin))
		{
			staff.GET("", h.GetStaff)
			staff.POST("", h.CreateStaff)
		}

		menu := api.Group("/menu")
		{
			menu.GET("", h.GetMenu)
			menu.GET("/items/:id", h.GetMenuItem)
			menu.GET("/combos", h.GetCombos)
			menu.GET("/modifiers", h.GetModifiers)

			menu.POST("/categories", managers, h.CreateCategory)
			menu.POST("/items", managers, h.CreateMenuItem)
			menu.PUT("/items/:id/availability", managers, h.SetItemAvailability)
			menu.POST("/combos", managers, h.CreateCombo)
			menu.POST("/modifiers", managers, h.CreateModifier)
		}

		tables := api.Group("/tables")
		{
			tables.GET("", h.GetTables)
			tables.POST("", managers, h.CreateTable)
			tables.GET("/:id", h.GetTable)
			tables.PUT("/:id/status", floorStaff, h.SetTableStatus)
			tables.PUT("/:id/server", managers, h.AssignServer)
			tables.POST("/:id/order", floorStaff, h.OpenTableOrder)
			tables.GET("/:id/order", h.GetTableOrder)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", h.GetOrders)
			orders.POST("", floorStaff, h.CreateOrder)
			orders.GET("/:id", h.GetOrder)
			orders.DELETE("/:id", floorStaff, h.CancelOrder)
			orders.POST("/:id/items", floorStaff, h.AddOrderItem)
			orders.POST("/:id/combos", floorStaff, h.AddOrderCombo)
			orders.POST("/:id/confirm", floorStaff, h.ConfirmOrder)
			orders.PUT("/:id/status", kitchenFlow, h.UpdateOrderStatus)
			orders.POST("/:id/move", floorStaff, h.MoveOrder)
			orders.PUT("/:id/discount", tills, h.ApplyDiscount)
			orders.PUT("/:id/customer", floorStaff, h.AttachCustomer)
			orders.GET("/:id/history", h.GetOrderHistory)

			orders.POST("/:id/settle", tills, h.SettleOrder)
			orders.POST("/:id/settle-split", tills, h.SettleSplit)
			orders.GET("/:id/bill", h.GetOrderBill)
			orders.GET("/:id/payments", h.GetOrderPayments)
		}

		items := api.Group("/order-items", floorStaff)
		{
			items.PUT("/:id", h.UpdateOrderItem)
			items.DELETE("/:id", h.RemoveOrderItem)
		}

		bills := api.Group("/bills")
		{
			bills.GET("/:id", h.GetBill)
			bills.GET("/:id/qr", h.GetBillQR)
			bills.POST("/:id/receipt", tills, h.SendReceipt)
			bills.GET("/:id/receipts", h.GetReceipts)
		}

		api.POST("/payments/:id/refunds", managers, h.RefundPayment)

		customers := api.Group("/customers")
		{
			customers.GET("", h.GetCustomers)
			customers.POST("", floorStaff, h.CreateCustomer)
			customers.GET("/:id", h.GetCustomer)
		}

		reports := api.Group("/reports", managers)
		{
			reports.GET("/sales", h.GetSalesReport)
			reports.GET("/snapshots", h.GetSnapshots)
		}

		api.GET("/dashboard", managers, h.GetDashboard)
	}

	return r
}
