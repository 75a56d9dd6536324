package api

import (
	"net/http"

	"coinboard/internal/activity"
	"coinboard/internal/auth"
	"coinboard/internal/board"
	"coinboard/internal/bookmark"
	"coinboard/internal/comment"
	"coinboard/internal/feed"
	"coinboard/internal/market"
	"coinboard/internal/notice"
	"coinboard/internal/notification"
	"coinboard/internal/post"
	"coinboard/internal/tag"
	"coinboard/internal/trending"
	"coinboard/internal/vote"
	"coinboard/internal/watchlist"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Services bundles everything the HTTP layer dispatches to.
type Services struct {
	Auth          *auth.Service
	Boards        *board.Service
	Posts         *post.Service
	Comments      *comment.Service
	Votes         *vote.Service
	Bookmarks     *bookmark.Service
	Notifications *notification.Service
	Notices       *notice.Service
	Activity      *activity.Service
	Tags          *tag.Service
	Trending      *trending.Engine
	Market        *market.Service
	Watchlist     *watchlist.Service
	Feed          *feed.Service
}

// Server is the HTTP surface over the forum and market services.
type Server struct {
	services Services
	tokens   *auth.TokenProvider
	logger   *zap.Logger
}

// NewServer creates the API server.
func NewServer(services Services, tokens *auth.TokenProvider, logger *zap.Logger) *Server {
	return &Server{services: services, tokens: tokens, logger: logger}
}

// Router builds the route table with middleware applied.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	api.HandleFunc("/boards", s.handleListBoards).Methods(http.MethodGet)
	api.HandleFunc("/boards", s.requireAdmin(s.handleCreateBoard)).Methods(http.MethodPost)
	api.HandleFunc("/boards/{slug}", s.handleGetBoard).Methods(http.MethodGet)
	api.HandleFunc("/boards/{slug}/posts", s.handleListBoardPosts).Methods(http.MethodGet)

	api.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", s.requireAuth(s.handleCreatePost)).Methods(http.MethodPost)
	api.HandleFunc("/posts/search", s.handleSearchPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/trending", s.handleTrending).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", s.handleReadPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", s.requireAuth(s.handleUpdatePost)).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id:[0-9]+}", s.requireAuth(s.handleDeletePost)).Methods(http.MethodDelete)

	api.HandleFunc("/posts/{id:[0-9]+}/comments", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}/comments", s.requireAuth(s.handleCreateComment)).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id:[0-9]+}", s.requireAuth(s.handleUpdateComment)).Methods(http.MethodPut)
	api.HandleFunc("/comments/{id:[0-9]+}", s.requireAuth(s.handleDeleteComment)).Methods(http.MethodDelete)

	api.HandleFunc("/posts/{id:[0-9]+}/votes", s.handlePostVoteSummary).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}/votes", s.requireAuth(s.handleVotePost)).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id:[0-9]+}/votes", s.handleCommentVoteSummary).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id:[0-9]+}/votes", s.requireAuth(s.handleVoteComment)).Methods(http.MethodPost)

	api.HandleFunc("/bookmarks", s.requireAuth(s.handleListBookmarks)).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}/bookmark", s.requireAuth(s.handleAddBookmark)).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id:[0-9]+}/bookmark", s.requireAuth(s.handleRemoveBookmark)).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", s.requireAuth(s.handleListNotifications)).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", s.requireAuth(s.handleUnreadCount)).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", s.requireAuth(s.handleMarkAllRead)).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", s.requireAuth(s.handleMarkRead)).Methods(http.MethodPost)

	api.HandleFunc("/notices", s.handleListNotices).Methods(http.MethodGet)

	api.HandleFunc("/posts/{id:[0-9]+}/tags", s.handleListPostTags).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}/tags", s.requireAuth(s.handleSetPostTags)).Methods(http.MethodPut)
	api.HandleFunc("/tags/popular", s.handlePopularTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/{name}/posts", s.handlePostsByTag).Methods(http.MethodGet)

	api.HandleFunc("/members/{id:[0-9]+}/activity", s.handleMemberActivity).Methods(http.MethodGet)
	api.HandleFunc("/members/me/activity", s.requireAuth(s.handleOwnActivity)).Methods(http.MethodGet)
	api.HandleFunc("/rankings", s.handleRankings).Methods(http.MethodGet)

	api.HandleFunc("/coins/markets", s.handleMarketCoins).Methods(http.MethodGet)
	api.HandleFunc("/coins/prices", s.handleSimplePrices).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}/chart", s.handleMarketChart).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}", s.handleCoinDetail).Methods(http.MethodGet)

	api.HandleFunc("/watchlist", s.handleWatchlistView).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/entries", s.requireAuth(s.handleListWatchlistEntries)).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/entries", s.requireAuth(s.handleAddWatchlistEntry)).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/entries/{id:[0-9]+}", s.requireAuth(s.handleRemoveWatchlistEntry)).Methods(http.MethodDelete)

	api.HandleFunc("/feed/home", s.handleHomeFeed).Methods(http.MethodGet)

	return withCORS(s.withLogging(s.withAuth(r)))
}
