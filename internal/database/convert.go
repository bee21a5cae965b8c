package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/atalaia/internal/model"
)

// IsNotFound reports whether err is pgx.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// UUID wraps id as a non-null pgtype.UUID.
func UUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// NullUUID maps a nil pointer to SQL NULL.
func NullUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return UUID(*id)
}

// UUIDPtr is the inverse of NullUUID.
func UUIDPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := uuid.UUID(id.Bytes)
	return &u
}

func NullFloat8(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

func float8Ptr(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// NullText maps the empty string to SQL NULL.
func NullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// ToModel converts a stored user.
func (u User) ToModel() model.User {
	return model.User{
		ID:             u.UserID.Bytes,
		Name:           u.Name,
		Email:          u.Email,
		Role:           model.Role(u.Role),
		NeighborhoodID: UUIDPtr(u.NeighborhoodID),
		Plan:           model.PlanID(u.Plan),
		CreatedAt:      u.CreatedAt.Time,
	}
}

// ToModel converts a stored neighborhood.
func (n Neighborhood) ToModel() model.Neighborhood {
	return model.Neighborhood{
		ID:        n.ID.Bytes,
		Name:      n.Name,
		IframeURL: n.IframeUrl,
		Lat:       float8Ptr(n.Lat),
		Lng:       float8Ptr(n.Lng),
		CreatedAt: n.CreatedAt.Time,
	}
}

// ToModel converts a stored chat message.
func (m ChatMessage) ToModel() model.ChatMessage {
	return model.ChatMessage{
		ID:             m.ID.Bytes,
		NeighborhoodID: UUIDPtr(m.NeighborhoodID),
		UserID:         m.UserID.Bytes,
		Username:       m.UserName,
		UserRole:       model.Role(m.UserRole),
		Content:        m.Text,
		CreatedAt:      m.CreatedAt.Time,
		IsSystemAlert:  m.IsSystemAlert,
		AlertType:      model.AlertType(m.AlertType.String),
		Image:          m.Image.String,
		ClientMsgID:    m.ClientMsgID,
	}
}

// ToModel converts a stored camera protocol.
func (p CameraProtocol) ToModel() model.CameraProtocol {
	return model.CameraProtocol{
		ID:          p.ID.Bytes,
		CameraName:  p.CameraName,
		RTMP:        p.Rtmp,
		RTSP:        p.Rtsp,
		Lat:         float8Ptr(p.Lat),
		Lng:         float8Ptr(p.Lng),
		RequestedBy: p.RequestedBy,
		CreatedAt:   p.CreatedAt.Time,
	}
}

// MessageParams builds the insert parameters for msg.
func MessageParams(msg model.ChatMessage) CreateMessageParams {
	return CreateMessageParams{
		NeighborhoodID: NullUUID(msg.NeighborhoodID),
		UserID:         UUID(msg.UserID),
		UserName:       msg.Username,
		UserRole:       string(msg.UserRole),
		Text:           msg.Content,
		CreatedAt:      pgtype.Timestamptz{Time: msg.CreatedAt, Valid: true},
		IsSystemAlert:  msg.IsSystemAlert,
		AlertType:      NullText(string(msg.AlertType)),
		Image:          NullText(msg.Image),
		ClientMsgID:    msg.ClientMsgID,
	}
}
