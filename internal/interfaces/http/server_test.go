package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/library-backend/internal/config"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/notification"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
	httpserver "github.com/your-org/library-backend/internal/interfaces/http"
	"github.com/your-org/library-backend/internal/interfaces/http/routes"
	"github.com/your-org/library-backend/internal/pkg/logger"
	"github.com/your-org/library-backend/internal/testutil"
)

type healthyDB struct{}

func (healthyDB) Health(ctx context.Context) error { return nil }

type recordingDispatcher struct {
	mu        sync.Mutex
	submitted []uuid.UUID
}

func (r *recordingDispatcher) Submit(bookID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, bookID)
}

func (r *recordingDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submitted)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type testServer struct {
	t          *testing.T
	server     *httpserver.Server
	dispatcher *recordingDispatcher
	summaries  *notification.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Discard()

	dispatcher := &recordingDispatcher{}
	summaries := notification.NewMemoryStore()
	books := book.NewService(db, notification.NewTrigger(dispatcher, log), log)
	users := user.NewService(db, log)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "Library Management API", Version: "test", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"https://library.example.com"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
		},
	}

	server, err := httpserver.NewServer(cfg, httpserver.Dependencies{
		DB:     healthyDB{},
		Logger: log,
		Services: routes.Services{
			Books:     books,
			Users:     users,
			Wishlist:  wishlist.NewService(db, books, users),
			Summaries: summaries,
		},
	})
	require.NoError(t, err)

	return &testServer{t: t, server: server, dispatcher: dispatcher, summaries: summaries}
}

func (s *testServer) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.server.Engine().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) createBook(title, isbn string, status book.AvailabilityStatus) book.Book {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/api/books", map[string]interface{}{
		"title":              title,
		"author":             "Frank Herbert",
		"isbn":               isbn,
		"publishedYear":      1965,
		"availabilityStatus": status,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var b book.Book
	require.NoError(s.t, json.Unmarshal(env.Data, &b))
	return b
}

func (s *testServer) createUser(userID, email string) user.User {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/api/users", map[string]string{
		"userId":   userID,
		"userName": "Reader " + userID,
		"email":    email,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var u user.User
	require.NoError(s.t, json.Unmarshal(env.Data, &u))
	return u
}

func fields(env envelope) []string {
	out := make([]string, 0, len(env.Errors))
	for _, e := range env.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestBookEndpoints(t *testing.T) {
	s := newTestServer(t)
	dune := s.createBook("Dune", "isbn-1", book.StatusAvailable)

	t.Run("duplicate isbn", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/books", map[string]interface{}{
			"title": "Other", "author": "Someone", "isbn": "isbn-1", "publishedYear": 2000,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Book with this ISBN already exists", env.Message)
	})

	t.Run("validation errors", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/books", map[string]interface{}{
			"title": "   ", "author": "Someone", "isbn": "isbn-9",
			"publishedYear": time.Now().Year() + 1, "availabilityStatus": "Lost",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation error", env.Message)
		assert.ElementsMatch(t, []string{"title", "publishedYear", "availabilityStatus"}, fields(env))
	})

	t.Run("malformed json", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/books", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("get", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/books/"+dune.ID.String(), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Book retrieved successfully", env.Message)

		rec, env = s.do(http.MethodGet, "/api/books/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid book ID", env.Message)

		rec, env = s.do(http.MethodGet, "/api/books/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Book not found", env.Message)
	})

	t.Run("list and search", func(t *testing.T) {
		s.createBook("Neuromancer", "isbn-2", book.StatusAvailable)

		rec, env := s.do(http.MethodGet, "/api/books?limit=1&page=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var page book.BookListResponse
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page.Books, 1)
		assert.Equal(t, int64(2), page.Pagination.TotalItems)
		assert.Equal(t, 2, page.Pagination.CurrentPage)

		rec, _ = s.do(http.MethodGet, "/api/books?limit=500", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, env = s.do(http.MethodGet, "/api/books/search?query=neuro", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(env.Data, &page))
		require.Len(t, page.Books, 1)
		assert.Equal(t, "neuro", page.Query)

		rec, _ = s.do(http.MethodGet, "/api/books/search", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec, env := s.do(http.MethodPut, "/api/books/"+dune.ID.String(), map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{"body"}, fields(env))

		rec, env = s.do(http.MethodPut, "/api/books/"+dune.ID.String(), map[string]interface{}{"title": "Dune (Deluxe)"})
		require.Equal(t, http.StatusOK, rec.Code)
		var updated book.Book
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "Dune (Deluxe)", updated.Title)
		assert.Equal(t, "isbn-1", updated.ISBN)
	})

	t.Run("delete", func(t *testing.T) {
		rec, env := s.do(http.MethodDelete, "/api/books/"+dune.ID.String(), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Book deleted successfully", env.Message)

		rec, _ = s.do(http.MethodGet, "/api/books/"+dune.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateBook_SubmitsRunOnlyWhenReturned(t *testing.T) {
	s := newTestServer(t)
	b := s.createBook("Dune", "isbn-1", book.StatusBorrowed)
	path := "/api/books/" + b.ID.String()

	rec, _ := s.do(http.MethodPut, path, map[string]string{"availabilityStatus": "Available"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.dispatcher.count())

	rec, _ = s.do(http.MethodPut, path, map[string]string{"availabilityStatus": "Available"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodPut, path, map[string]string{"availabilityStatus": "Borrowed"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodPut, path, map[string]string{"title": "Dune II"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.dispatcher.count())

	rec, _ = s.do(http.MethodPut, path, map[string]string{"availabilityStatus": "Available"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, s.dispatcher.count())
	assert.Equal(t, b.ID, s.dispatcher.submitted[1])
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	ada := s.createUser("u1", "ada@example.com")

	rec, env := s.do(http.MethodPost, "/api/users", map[string]string{
		"userId": "u2", "userName": "Other", "email": "ADA@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User with this email already exists", env.Message)

	rec, env = s.do(http.MethodPost, "/api/users", map[string]string{
		"userId": "u1", "userName": "Other", "email": "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User with this User ID already exists", env.Message)

	rec, env = s.do(http.MethodPost, "/api/users", map[string]string{
		"userId": "u3", "userName": "Other", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"email"}, fields(env))

	rec, env = s.do(http.MethodGet, "/api/users/userId/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got user.User
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, ada.ID, got.ID)

	rec, _ = s.do(http.MethodGet, "/api/users/"+ada.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/users/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid user ID", env.Message)

	rec, env = s.do(http.MethodPut, "/api/users/"+ada.ID.String(), map[string]string{"userName": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Ada Lovelace", got.UserName)

	rec, _ = s.do(http.MethodGet, "/api/users?userName=lovelace", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodDelete, "/api/users/"+ada.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/users/userId/u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", env.Message)
}

func TestWishlistEndpoints(t *testing.T) {
	s := newTestServer(t)
	b := s.createBook("Dune", "isbn-1", book.StatusBorrowed)
	s.createUser("u1", "ada@example.com")

	add := func(userID, bookID string) (*httptest.ResponseRecorder, envelope) {
		return s.do(http.MethodPost, "/api/wishlist", map[string]string{"userId": userID, "bookId": bookID})
	}

	rec, env := add("u1", b.ID.String())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Book added to wishlist successfully", env.Message)

	tests := []struct {
		name    string
		userID  string
		bookID  string
		code    int
		message string
	}{
		{"duplicate", "u1", b.ID.String(), http.StatusConflict, "Book is already in wishlist"},
		{"unknown user", "ghost", b.ID.String(), http.StatusNotFound, "User not found"},
		{"unknown book", "u1", uuid.NewString(), http.StatusNotFound, "Book not found"},
		{"malformed book", "u1", "xyz", http.StatusBadRequest, "Invalid book ID"},
		{"missing user", "", b.ID.String(), http.StatusBadRequest, "Validation error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := add(tt.userID, tt.bookID)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, env.Message)
		})
	}

	rec, env = s.do(http.MethodGet, "/api/wishlist/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine wishlist.UserWishlistResponse
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine.Wishlist, 1)
	require.NotNil(t, mine.Wishlist[0].Book)
	assert.Equal(t, "Dune", mine.Wishlist[0].Book.Title)

	rec, env = s.do(http.MethodGet, "/api/wishlist/check?userId=u1&bookId="+b.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var check wishlist.CheckResponse
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.True(t, check.IsInWishlist)

	rec, env = s.do(http.MethodGet, "/api/wishlist/check?userId=u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "userId and bookId are required", env.Message)

	rec, env = s.do(http.MethodGet, "/api/wishlist?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all wishlist.WishlistListResponse
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Equal(t, int64(1), all.Pagination.Total)

	path := "/api/wishlist/user/u1/book/" + b.ID.String()
	rec, env = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Book removed from wishlist successfully", env.Message)

	rec, env = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found in wishlist", env.Message)
}

func TestNotificationSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	bookID := uuid.New()

	rec, _ := s.do(http.MethodGet, "/api/books/"+bookID.String()+"/notifications", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/books/nope/notifications", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, s.summaries.Record(context.Background(), notification.Summary{
		BookID: bookID, Title: "Dune", Attempted: 2, Succeeded: 1, Failed: 1,
	}))

	rec, env := s.do(http.MethodGet, "/api/books/"+bookID.String()+"/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary notification.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 1, summary.Failed)
}

func TestServerEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec, _ = s.do(http.MethodGet, "/server-status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")

	rec, env := s.do(http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "Library Management API", rec.Header().Get("Server"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "https://library.example.com")
	rec := httptest.NewRecorder()
	s.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://library.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.server.Engine().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
