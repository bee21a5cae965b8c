package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
	"github.com/johndosdos/atalaia/internal/testutil"
)

func TestMessageQueries(t *testing.T) {
	pool := testutil.DbInit(t)
	q := database.New(pool)
	ctx := context.Background()

	hood, err := q.CreateNeighborhood(ctx, database.CreateNeighborhoodParams{Name: "Centro"})
	require.NoError(t, err)
	user := testutil.CreateUser(t, q, "ana")

	hoodID := uuid.UUID(hood.ID.Bytes)
	base := time.Now().UTC().Truncate(time.Millisecond)
	msg := func(hood *uuid.UUID, text, token string, offset time.Duration) model.ChatMessage {
		return model.ChatMessage{
			NeighborhoodID: hood,
			UserID:         user.UserID.Bytes,
			Username:       user.Name,
			UserRole:       model.RoleResident,
			Content:        text,
			CreatedAt:      base.Add(offset),
			ClientMsgID:    token,
		}
	}

	t.Run("same_token_is_stored_once", func(t *testing.T) {
		first, err := q.CreateMessage(ctx, database.MessageParams(msg(&hoodID, "primeira", "tok-1", 0)))
		require.NoError(t, err)

		again, err := q.CreateMessage(ctx, database.MessageParams(msg(&hoodID, "primeira", "tok-1", time.Second)))
		require.NoError(t, err)

		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, first.CreatedAt.Time, again.CreatedAt.Time)
	})

	t.Run("history_is_scoped_and_ascending", func(t *testing.T) {
		_, err := q.CreateMessage(ctx, database.MessageParams(msg(&hoodID, "segunda", "tok-2", time.Minute)))
		require.NoError(t, err)
		_, err = q.CreateMessage(ctx, database.MessageParams(msg(nil, "global", "tok-3", time.Minute)))
		require.NoError(t, err)

		rows, err := q.ListMessagesByNeighborhood(ctx, database.ListMessagesByNeighborhoodParams{
			NeighborhoodID: hood.ID,
			Limit:          50,
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "primeira", rows[0].Text)
		assert.Equal(t, "segunda", rows[1].Text)

		rows, err = q.ListMessagesByNeighborhood(ctx, database.ListMessagesByNeighborhoodParams{
			NeighborhoodID: hood.ID,
			Limit:          1,
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "segunda", rows[0].Text)

		global, err := q.ListGlobalMessages(ctx, 50)
		require.NoError(t, err)
		require.Len(t, global, 1)
		assert.Nil(t, global[0].ToModel().NeighborhoodID)
	})

	t.Run("alert_round_trip", func(t *testing.T) {
		alert := msg(&hoodID, "PÂNICO", "tok-4", 2*time.Minute)
		alert.IsSystemAlert = true
		alert.AlertType = model.AlertPanic

		row, err := q.CreateMessage(ctx, database.MessageParams(alert))
		require.NoError(t, err)

		got := row.ToModel()
		assert.True(t, got.IsSystemAlert)
		assert.Equal(t, model.AlertPanic, got.AlertType)
		assert.Equal(t, "tok-4", got.ClientMsgID)
	})

	t.Run("same_token_from_two_users_is_stored_twice", func(t *testing.T) {
		other := testutil.CreateUser(t, q, "bia")

		mine, err := q.CreateMessage(ctx, database.MessageParams(msg(&hoodID, "da ana", "tok-5", 3*time.Minute)))
		require.NoError(t, err)

		theirs := msg(&hoodID, "da bia", "tok-5", 4*time.Minute)
		theirs.UserID = other.UserID.Bytes
		theirs.Username = other.Name
		row, err := q.CreateMessage(ctx, database.MessageParams(theirs))
		require.NoError(t, err)

		assert.NotEqual(t, mine.ID, row.ID)
		assert.Equal(t, other.UserID, row.UserID)
		assert.Equal(t, "da bia", row.Text)
	})
}

func TestNeighborhoodDeleteDetachesUsers(t *testing.T) {
	pool := testutil.DbInit(t)
	q := database.New(pool)
	ctx := context.Background()

	hood, err := q.CreateNeighborhood(ctx, database.CreateNeighborhoodParams{Name: "Vila Nova"})
	require.NoError(t, err)

	user, err := q.CreateUser(ctx, database.CreateUserParams{
		UserID:         database.UUID(uuid.New()),
		Name:           "bruno",
		Email:          uuid.NewString() + "@test.com",
		Role:           string(model.RoleResident),
		NeighborhoodID: hood.ID,
		Plan:           string(model.PlanFree),
	})
	require.NoError(t, err)

	n, err := q.DeleteNeighborhood(ctx, hood.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := q.GetUserById(ctx, user.UserID)
	require.NoError(t, err)
	assert.False(t, got.NeighborhoodID.Valid)

	_, err = q.GetNeighborhood(ctx, hood.ID)
	assert.True(t, database.IsNotFound(err))
}
