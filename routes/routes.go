package routes

import (
	"net/http"

	"github.com/Majorzinnn/botDC/controllers"
	"github.com/Majorzinnn/botDC/middleware"

	"github.com/gin-gonic/gin"
)

// Register wires all HTTP routes under the /api prefix the dashboard
// expects. Mutating admin routes sit behind the auth middleware; the
// payment endpoints are driven by the buyer-facing return flow and stay
// open like the rest of the read surface.
func Register(
	r *gin.Engine,
	pc *controllers.PaymentController,
	prc *controllers.ProductController,
	cc *controllers.ConversationController,
	bc *controllers.BotController,
) {
	api := r.Group("/api")

	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Discord Bot API funcionando!"})
	})

	payments := api.Group("/payments")
	payments.POST("/checkout", pc.CreateCheckout)
	payments.GET("/status/:session_id", pc.GetStatus)
	payments.GET("/transactions", pc.ListTransactions)

	api.GET("/products", prc.GetProducts)
	api.GET("/conversations", cc.GetConversations)
	api.GET("/bot/status", bc.GetStatus)
	api.GET("/bot/config/:guild_id", bc.GetConfig)

	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware())
	admin.POST("/products", prc.CreateProduct)
	admin.DELETE("/products/:product_id", prc.DeleteProduct)
	admin.POST("/bot/start", bc.Start)
	admin.POST("/bot/stop", bc.Stop)
	admin.PUT("/bot/config/:guild_id", bc.UpdateConfig)
}
