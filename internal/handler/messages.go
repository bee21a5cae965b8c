package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/model"
)

// MessageService loads and persists chat messages.
type MessageService interface {
	History(ctx context.Context, hood *uuid.UUID) ([]model.ChatMessage, error)
	Persist(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error)
}

// ServeMessages returns the recent history of the user's channel.
func ServeMessages(svc MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, _ := auth.CurrentUser(ctx)

		msgs, err := svc.History(ctx, user.NeighborhoodID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("%v", err)
			respondError(w, http.StatusInternalServerError, "Database error.")
			return
		}
		respondJSON(w, http.StatusOK, msgs)
	}
}

type postMessageRequest struct {
	Content     string `json:"content"`
	ClientMsgID string `json:"client_msg_id"`
	AlertType   string `json:"alert_type"`
	Image       string `json:"image"`
}

func newMessage(user model.User, req postMessageRequest) model.ChatMessage {
	return model.ChatMessage{
		NeighborhoodID: user.NeighborhoodID,
		UserID:         user.ID,
		Username:       user.Name,
		UserRole:       user.Role,
		Content:        strings.TrimSpace(req.Content),
		CreatedAt:      time.Now().UTC(),
		ClientMsgID:    req.ClientMsgID,
	}
}

// PostMessage stores a chat message sent over HTTP. Sessions receive it
// through the change feed like any other message.
func PostMessage(svc MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.CurrentUser(r.Context())

		var req postMessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}

		msg := newMessage(user, req)
		if msg.Content == "" {
			respondError(w, http.StatusBadRequest, "Message is empty.")
			return
		}

		stored, err := svc.Persist(r.Context(), msg)
		if err != nil {
			log.Printf("%v", err)
			respondError(w, http.StatusInternalServerError, "Could not send message.")
			return
		}
		respondJSON(w, http.StatusCreated, stored)
	}
}

// PostAlert raises a system alert in the user's channel. Without text the
// alert carries its category's default text.
func PostAlert(svc MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.CurrentUser(r.Context())

		var req postMessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}

		alertType, err := model.ParseAlertType(req.AlertType)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid alert type.")
			return
		}

		msg := newMessage(user, req)
		msg.IsSystemAlert = true
		msg.AlertType = alertType
		msg.Image = strings.TrimSpace(req.Image)
		if msg.Content == "" {
			msg.Content = alertType.DefaultText()
		}

		stored, err := svc.Persist(r.Context(), msg)
		if err != nil {
			log.Printf("%v", err)
			respondError(w, http.StatusInternalServerError, "Could not send alert.")
			return
		}
		respondJSON(w, http.StatusCreated, stored)
	}
}
