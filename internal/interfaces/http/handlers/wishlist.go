// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// AddToWishlist handles POST /wishlist
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	var req wishlist.AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationError(c, err)
		return
	}

	item, err := h.wishlistService.AddToWishlist(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "Failed to add book to wishlist")
		return
	}

	Created(c, "Book added to wishlist successfully", item)
}

// GetUserWishlist handles GET /wishlist/user/:userId
func (h *WishlistHandler) GetUserWishlist(c *gin.Context) {
	result, err := h.wishlistService.GetUserWishlist(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.handleError(c, err, "Failed to retrieve wishlist")
		return
	}

	Success(c, "Wishlist retrieved successfully", result)
}

// RemoveFromWishlist handles DELETE /wishlist/user/:userId/book/:bookId
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	err := h.wishlistService.RemoveFromWishlist(c.Request.Context(), c.Param("userId"), c.Param("bookId"))
	if err != nil {
		h.handleError(c, err, "Failed to remove book from wishlist")
		return
	}

	Success(c, "Book removed from wishlist successfully", nil)
}

// CheckWishlist handles GET /wishlist/check
func (h *WishlistHandler) CheckWishlist(c *gin.Context) {
	result, err := h.wishlistService.CheckWishlist(c.Request.Context(), c.Query("userId"), c.Query("bookId"))
	if err != nil {
		h.handleError(c, err, "Failed to check wishlist status")
		return
	}

	Success(c, "Wishlist status checked successfully", result)
}

// GetWishlists handles GET /wishlist
func (h *WishlistHandler) GetWishlists(c *gin.Context) {
	var req wishlist.WishlistListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ValidationError(c, err)
		return
	}

	result, err := h.wishlistService.GetWishlists(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve wishlists")
		return
	}

	Success(c, "Wishlists retrieved successfully", result)
}

func (h *WishlistHandler) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, wishlist.ErrMissingCheckParams):
		Error(c, http.StatusBadRequest, "userId and bookId are required")
	case errors.Is(err, book.ErrInvalidBookID):
		Error(c, http.StatusBadRequest, "Invalid book ID")
	case errors.Is(err, user.ErrUserNotFound):
		Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, book.ErrBookNotFound):
		Error(c, http.StatusNotFound, "Book not found")
	case errors.Is(err, wishlist.ErrWishlistItemNotFound):
		Error(c, http.StatusNotFound, "Book not found in wishlist")
	case errors.Is(err, wishlist.ErrAlreadyInWishlist):
		Error(c, http.StatusConflict, "Book is already in wishlist")
	default:
		InternalError(c, fallback, err)
	}
}
