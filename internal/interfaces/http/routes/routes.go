// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/notification"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
	"github.com/your-org/library-backend/internal/interfaces/http/handlers"
)

// Services bundles what the route handlers depend on
type Services struct {
	Books     *book.Service
	Users     *user.Service
	Wishlist  *wishlist.Service
	Summaries notification.SummaryReader
}

// SetupRoutes mounts every API route under rg
func SetupRoutes(rg *gin.RouterGroup, services Services) {
	SetupBookRoutes(rg, services.Books, services.Summaries)
	SetupUserRoutes(rg, services.Users)
	SetupWishlistRoutes(rg, services.Wishlist)
}

// SetupBookRoutes sets up book related routes
func SetupBookRoutes(rg *gin.RouterGroup, bookService *book.Service, summaries notification.SummaryReader) {
	bookHandler := handlers.NewBookHandler(bookService, summaries)

	books := rg.Group("/books")
	{
		books.POST("", bookHandler.CreateBook)
		books.GET("", bookHandler.GetBooks)
		books.GET("/search", bookHandler.SearchBooks)
		books.GET("/:id", bookHandler.GetBook)
		books.PUT("/:id", bookHandler.UpdateBook)
		books.DELETE("/:id", bookHandler.DeleteBook)
		books.GET("/:id/notifications", bookHandler.GetNotificationSummary)
	}
}

// SetupUserRoutes sets up user related routes
func SetupUserRoutes(rg *gin.RouterGroup, userService *user.Service) {
	userHandler := handlers.NewUserHandler(userService)

	users := rg.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.GetUsers)
		users.GET("/userId/:userId", userHandler.GetUserByUserID)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}
}

// SetupWishlistRoutes sets up wishlist related routes
func SetupWishlistRoutes(rg *gin.RouterGroup, wishlistService *wishlist.Service) {
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)

	wishlists := rg.Group("/wishlist")
	{
		wishlists.POST("", wishlistHandler.AddToWishlist)
		wishlists.GET("", wishlistHandler.GetWishlists)
		wishlists.GET("/check", wishlistHandler.CheckWishlist)
		wishlists.GET("/user/:userId", wishlistHandler.GetUserWishlist)
		wishlists.DELETE("/user/:userId/book/:bookId", wishlistHandler.RemoveFromWishlist)
	}
}
