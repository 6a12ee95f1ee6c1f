// internal/interfaces/http/handlers/book.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/notification"
)

// BookHandler handles book endpoints
type BookHandler struct {
	bookService *book.Service
	summaries   notification.SummaryReader
}

// NewBookHandler creates a new book handler. summaries may be nil.
func NewBookHandler(bookService *book.Service, summaries notification.SummaryReader) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		summaries:   summaries,
	}
}

// CreateBook handles POST /books
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req book.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationError(c, err)
		return
	}

	created, err := h.bookService.CreateBook(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "Failed to create book")
		return
	}

	Created(c, "Book created successfully", created)
}

// GetBooks handles GET /books
func (h *BookHandler) GetBooks(c *gin.Context) {
	var req book.BookListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ValidationError(c, err)
		return
	}

	result, err := h.bookService.GetBooks(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, "Failed to retrieve books", err)
		return
	}

	Success(c, "Books retrieved successfully", result)
}

// SearchBooks handles GET /books/search
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var req book.BookSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ValidationError(c, err)
		return
	}

	result, err := h.bookService.SearchBooks(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, "Failed to search books", err)
		return
	}

	Success(c, "Search completed successfully", result)
}

// GetBook handles GET /books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	found, err := h.bookService.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "Failed to retrieve book")
		return
	}

	Success(c, "Book retrieved successfully", found)
}

// UpdateBook handles PUT /books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req book.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationError(c, err)
		return
	}

	if req.IsEmpty() {
		EmptyUpdate(c)
		return
	}

	updated, err := h.bookService.UpdateBook(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err, "Failed to update book")
		return
	}

	Success(c, "Book updated successfully", updated)
}

// DeleteBook handles DELETE /books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.bookService.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err, "Failed to delete book")
		return
	}

	Success(c, "Book deleted successfully", nil)
}

// GetNotificationSummary handles GET /books/:id/notifications
func (h *BookHandler) GetNotificationSummary(c *gin.Context) {
	bookID, err := book.ParseID(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if h.summaries == nil {
		Error(c, http.StatusNotFound, "No notification summary recorded for this book")
		return
	}

	summary, err := h.summaries.Latest(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, notification.ErrSummaryNotFound) {
			Error(c, http.StatusNotFound, "No notification summary recorded for this book")
			return
		}
		InternalError(c, "Failed to retrieve notification summary", err)
		return
	}

	Success(c, "Notification summary retrieved successfully", summary)
}

func (h *BookHandler) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, book.ErrInvalidBookID):
		Error(c, http.StatusBadRequest, "Invalid book ID")
	case errors.Is(err, book.ErrBookNotFound):
		Error(c, http.StatusNotFound, "Book not found")
	case errors.Is(err, book.ErrDuplicateISBN):
		Error(c, http.StatusConflict, "Book with this ISBN already exists")
	default:
		InternalError(c, fallback, err)
	}
}
