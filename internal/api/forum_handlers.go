package api

import (
	"net/http"
	"strconv"
	"time"

	"coinboard/internal/apperr"
	"coinboard/internal/comment"
	"coinboard/internal/post"
	"coinboard/internal/trending"
	"github.com/gorilla/mux"
)

func pathID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput("invalid id: %s", raw)
	}
	return uint(id), nil
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

func pageParams(r *http.Request) (int, int) {
	return queryInt(r, "page", 1), queryInt(r, "size", 20)
}

// --- boards ---

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.services.Boards.List()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, boards)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	found, err := s.services.Boards.GetBySlug(mux.Vars(r)["slug"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, found)
}

type createBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request, _ Principal) {
	var req createBoardRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.services.Boards.Create(req.Name, req.Description, req.Slug, req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListBoardPosts(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := s.services.Posts.ListByBoardSlug(mux.Vars(r)["slug"], pageNumber, pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// --- posts ---

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := s.services.Posts.List(pageNumber, pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSearchPosts(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	filter := post.SearchFilter{BoardID: uint(queryInt(r, "board_id", 0))}
	if start, ok := queryMillis(r, "start"); ok {
		filter.From = &start
	}
	if end, ok := queryMillis(r, "end"); ok {
		filter.To = &end
	}
	if raw := r.URL.Query().Get("min_views"); raw != "" {
		if minViews, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.MinViews = &minViews
		}
	}
	page, err := s.services.Posts.Search(r.URL.Query().Get("q"), filter, pageNumber, pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// queryMillis parses a unix-milliseconds query parameter.
func queryMillis(r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("window")
	if window == "" {
		window = trending.Window24h
	}
	posts, err := s.services.Trending.Trending(window, queryInt(r, "limit", 0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleReadPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	viewer := post.Viewer{ClientIP: clientIP(r), UserAgent: r.UserAgent()}
	if principal, ok := PrincipalFrom(r.Context()); ok {
		viewer.MemberID = principal.MemberID
	}
	found, err := s.services.Posts.Read(id, viewer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, principal Principal) {
	var req post.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.services.Posts.Create(principal.MemberID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Tags) > 0 {
		if _, err := s.services.Tags.SetPostTags(created.ID, req.Tags); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req post.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.services.Posts.Update(id, principal.MemberID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Posts.Delete(id, principal.MemberID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// --- comments ---

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	comments, err := s.services.Comments.ListByPost(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req comment.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.PostID = id
	created, err := s.services.Comments.Create(principal.MemberID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Comments.Update(id, principal.MemberID, req.Content); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Comments.Delete(id, principal.MemberID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// --- votes ---

type voteRequest struct {
	Value int `json:"value"`
}

func (s *Server) handleVotePost(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req voteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.services.Votes.VotePost(id, principal.MemberID, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleVoteComment(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req voteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.services.Votes.VoteComment(id, principal.MemberID, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePostVoteSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var memberID uint
	if principal, ok := PrincipalFrom(r.Context()); ok {
		memberID = principal.MemberID
	}
	summary, err := s.services.Votes.PostSummary(id, memberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCommentVoteSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var memberID uint
	if principal, ok := PrincipalFrom(r.Context()); ok {
		memberID = principal.MemberID
	}
	summary, err := s.services.Votes.CommentSummary(id, memberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// --- bookmarks ---

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request, principal Principal) {
	bookmarks, err := s.services.Bookmarks.List(principal.MemberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, bookmarks)
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Bookmarks.Add(principal.MemberID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "bookmarked"})
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Bookmarks.Remove(principal.MemberID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// --- notifications ---

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request, principal Principal) {
	pageNumber, pageSize := pageParams(r)
	page, err := s.services.Notifications.List(principal.MemberID, pageNumber, pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request, principal Principal) {
	count, err := s.services.Notifications.UnreadCount(principal.MemberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Notifications.MarkRead(id, principal.MemberID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request, principal Principal) {
	if err := s.services.Notifications.MarkAllRead(principal.MemberID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// --- tags ---

func (s *Server) handleListPostTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tags, err := s.services.Tags.PostTags(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tags)
}

type setTagsRequest struct {
	Tags []string `json:"tags"`
}

func (s *Server) handleSetPostTags(w http.ResponseWriter, r *http.Request, principal Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	found, err := s.services.Posts.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if found.AuthorID != principal.MemberID {
		s.writeError(w, r, apperr.Forbidden("not the author of post %d", id))
		return
	}
	var req setTagsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tags, err := s.services.Tags.SetPostTags(id, req.Tags)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handlePopularTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.services.Tags.Popular(queryInt(r, "limit", 10))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handlePostsByTag(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := s.services.Tags.PostsByTag(mux.Vars(r)["name"], pageNumber, pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// --- notices ---

func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := s.services.Notices.Active(queryInt(r, "limit", 0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, notices)
}

// --- activity ---

func (s *Server) handleMemberActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.services.Activity.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleOwnActivity(w http.ResponseWriter, r *http.Request, principal Principal) {
	summary, err := s.services.Activity.Get(principal.MemberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := s.services.Activity.Rankings(queryInt(r, "limit", 10))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rankings)
}

// --- feed ---

func (s *Server) handleHomeFeed(w http.ResponseWriter, r *http.Request) {
	var memberID uint
	if principal, ok := PrincipalFrom(r.Context()); ok {
		memberID = principal.MemberID
	}
	home, err := s.services.Feed.Home(r.Context(), memberID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, home)
}
