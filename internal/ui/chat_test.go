package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/atalaia/internal/model"
	ws "github.com/johndosdos/atalaia/internal/websocket"
)

type fakeConn struct {
	mu   sync.Mutex
	sent []ws.Inbound
}

func (f *fakeConn) Send(ctx context.Context, in ws.Inbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	return nil
}

func (f *fakeConn) Next(ctx context.Context) (ws.Frame, error) {
	<-ctx.Done()
	return ws.Frame{}, ctx.Err()
}

func (f *fakeConn) inbound() []ws.Inbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ws.Inbound(nil), f.sent...)
}

func newModel(t *testing.T) (Model, *fakeConn, model.User) {
	t.Helper()
	hood := uuid.New()
	user := model.User{ID: uuid.New(), Name: "Ana", Role: model.RoleResident, NeighborhoodID: &hood}
	conn := &fakeConn{}

	m := New(context.Background(), user, conn)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), conn, user
}

func TestApplyFrames(t *testing.T) {
	m, _, user := newModel(t)

	other := model.ChatMessage{
		ID:             uuid.New(),
		NeighborhoodID: user.NeighborhoodID,
		Username:       "Bruno",
		UserRole:       model.RoleSCR,
		Content:        "ronda feita",
		CreatedAt:      time.Now(),
	}
	m.apply(ws.Frame{Type: ws.FrameHistory, Messages: []model.ChatMessage{other}})
	require.Equal(t, 1, m.sync.Len())

	m.apply(ws.Frame{Type: ws.FrameMessage, Message: &other})
	assert.Equal(t, 1, m.sync.Len())

	count := 3
	m.apply(ws.Frame{Type: ws.FramePresence, Count: &count})
	assert.Equal(t, 3, m.online)

	m.apply(ws.Frame{Type: ws.FrameRateLimited, RetryIn: 2})
	assert.Contains(t, m.notice, "2s")

	m.refresh()
	assert.Contains(t, m.View(), "ronda feita")
	assert.Contains(t, m.View(), "MOTOVIGIA")
}

func TestSendAndConfirm(t *testing.T) {
	m, conn, _ := newModel(t)

	m.send("bom dia")
	m.sync.Wait()

	msgs := m.sync.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Pending)

	sent := conn.inbound()
	require.Len(t, sent, 1)
	assert.Equal(t, ws.FrameMessage, sent[0].Type)
	assert.Equal(t, msgs[0].ClientMsgID, sent[0].ClientMsgID)

	// The server echo of the optimistic copy does not confirm it.
	echo := msgs[0]
	m.apply(ws.Frame{Type: ws.FrameMessage, Message: &echo})
	assert.True(t, m.sync.Messages()[0].Pending)

	stored := msgs[0]
	stored.ID = uuid.New()
	stored.Pending = false
	m.apply(ws.Frame{Type: ws.FrameConfirm, Message: &stored, TempID: &msgs[0].ID})

	got := m.sync.Messages()
	require.Len(t, got, 1)
	assert.False(t, got[0].Pending)
	assert.Equal(t, stored.ID, got[0].ID)
}

func TestPanicShortcut(t *testing.T) {
	m, conn, _ := newModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	m = next.(Model)
	m.sync.Wait()

	sent := conn.inbound()
	require.Len(t, sent, 1)
	assert.Equal(t, ws.FrameAlert, sent[0].Type)
	assert.Equal(t, model.AlertPanic, sent[0].AlertType)
	assert.Contains(t, m.View(), "PÂNICO")
}

func TestReadErrorQuits(t *testing.T) {
	m, _, _ := newModel(t)

	next, cmd := m.Update(errMsg{errors.New("connection closed")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.EqualError(t, next.(Model).Err(), "connection closed")
}
