package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/atalaia/internal/model"
)

type fakeMessages struct {
	mu      sync.Mutex
	stored  []model.ChatMessage
	history []model.ChatMessage
	asked   *uuid.UUID
	err     error
}

func (f *fakeMessages) History(ctx context.Context, hood *uuid.UUID) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = hood
	return f.history, f.err
}

func (f *fakeMessages) Persist(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.ChatMessage{}, f.err
	}
	msg.ID = uuid.New()
	f.stored = append(f.stored, msg)
	return msg, nil
}

func TestServeMessages(t *testing.T) {
	hood := uuid.New()
	svc := &fakeMessages{history: []model.ChatMessage{{ID: uuid.New(), NeighborhoodID: &hood, Content: "oi"}}}

	rec := httptest.NewRecorder()
	withUser(resident(&hood), ServeMessages(svc)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.asked)
	assert.Equal(t, hood, *svc.asked)

	var got []model.ChatMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "oi", got[0].Content)

	svc.err = errors.New("db down")
	rec = httptest.NewRecorder()
	withUser(resident(&hood), ServeMessages(svc)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostMessage(t *testing.T) {
	hood := uuid.New()
	user := resident(&hood)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"ok", `{"content":"  bom dia  ","client_msg_id":"tok-1"}`, http.StatusCreated},
		{"blank", `{"content":"   "}`, http.StatusBadRequest},
		{"bad_json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeMessages{}
			rec := httptest.NewRecorder()
			withUser(user, PostMessage(svc)).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusCreated {
				assert.Empty(t, svc.stored)
				return
			}
			require.Len(t, svc.stored, 1)
			msg := svc.stored[0]
			assert.Equal(t, "bom dia", msg.Content)
			assert.Equal(t, "tok-1", msg.ClientMsgID)
			assert.Equal(t, user.ID, msg.UserID)
			assert.Equal(t, &hood, msg.NeighborhoodID)
			assert.False(t, msg.IsSystemAlert)
		})
	}
}

func TestPostAlert(t *testing.T) {
	user := resident(nil)

	svc := &fakeMessages{}
	rec := httptest.NewRecorder()
	withUser(user, PostAlert(svc)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(`{"alert_type":"panic"}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, svc.stored, 1)
	assert.True(t, svc.stored[0].IsSystemAlert)
	assert.Equal(t, model.AlertPanic, svc.stored[0].AlertType)
	assert.Equal(t, "PÂNICO", svc.stored[0].Content)
	assert.Nil(t, svc.stored[0].NeighborhoodID)

	rec = httptest.NewRecorder()
	withUser(user, PostAlert(svc)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(`{"alert_type":"FIRE"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = errors.New("store unavailable")
	rec = httptest.NewRecorder()
	withUser(user, PostAlert(svc)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/alerts", strings.NewReader(`{"alert_type":"OK","content":"tudo certo"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
