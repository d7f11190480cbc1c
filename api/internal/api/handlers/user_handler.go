package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
	"github.com/careerdesk/careerdesk/api/internal/core/services"
)

type VerifyPINRequest struct {
	PIN string `json:"pin" validate:"required,len=4,numeric"`
}

type AppendConversationRequest struct {
	AIName   string               `json:"aiName" validate:"required,max=100"`
	AIType   domain.AIType        `json:"aiType" validate:"required,oneof=human dog"`
	AIAvatar string               `json:"aiAvatar" validate:"max=100"`
	Messages []domain.ChatMessage `json:"messages" validate:"max=500,dive"`
	Summary  string               `json:"summary" validate:"max=20000"`
	Date     string               `json:"date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// UserHandler serves the client side: registration, PIN login and the
// consultation history.
type UserHandler struct {
	Users         *services.UserService
	Conversations *services.ConversationService
}

func NewUserHandler(users *services.UserService, conversations *services.ConversationService) *UserHandler {
	return &UserHandler{Users: users, Conversations: conversations}
}

// Register handles POST /api/v1/users. The PIN is returned exactly once.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Register(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	user.PIN = ""
	writeJSON(w, http.StatusOK, user)
}

// VerifyPIN handles POST /api/v1/users/{id}/pin
func (h *UserHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req VerifyPINRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	if !h.Users.VerifyPIN(r.Context(), chi.URLParam(r, "id"), req.PIN) {
		HandleError(w, r, domain.ErrInvalidCredentials)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// ListConversations handles GET /api/v1/users/{id}/conversations
func (h *UserHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.Conversations.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	if convs == nil {
		convs = []domain.StoredConversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

// AppendConversation handles POST /api/v1/users/{id}/conversations
func (h *UserHandler) AppendConversation(w http.ResponseWriter, r *http.Request) {
	var req AppendConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	saved, err := h.Conversations.Append(r.Context(), chi.URLParam(r, "id"), domain.StoredConversation{
		AIName:   req.AIName,
		AIType:   req.AIType,
		AIAvatar: req.AIAvatar,
		Messages: req.Messages,
		Summary:  req.Summary,
		Date:     req.Date,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// DeleteConversation handles DELETE /api/v1/users/{id}/conversations/{conversationID}
func (h *UserHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	convID, err := strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid conversation ID format")
		return
	}
	if err := h.Conversations.Delete(r.Context(), chi.URLParam(r, "id"), convID); err != nil {
		HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
