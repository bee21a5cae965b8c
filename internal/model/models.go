// Package model defines data structure.
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRole      = errors.New("model: invalid role")
	ErrInvalidPlan      = errors.New("model: invalid plan")
	ErrInvalidAlertType = errors.New("model: invalid alert type")
)

// Role is the fixed set of user roles.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleIntegrator Role = "INTEGRATOR"
	RoleSCR        Role = "SCR"
	RoleResident   Role = "RESIDENT"
)

// ParseRole accepts a role tag in any letter case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleIntegrator, RoleSCR, RoleResident:
		return r, nil
	}
	return "", ErrInvalidRole
}

// Label is the name shown next to a sender. SCR members are motorcycle
// patrols.
func (r Role) Label() string {
	if r == RoleSCR {
		return "MOTOVIGIA"
	}
	return string(r)
}

// AlertType is the category of a system alert.
type AlertType string

const (
	AlertPanic      AlertType = "PANIC"
	AlertDanger     AlertType = "DANGER"
	AlertSuspicious AlertType = "SUSPICIOUS"
	AlertOK         AlertType = "OK"
)

func ParseAlertType(s string) (AlertType, error) {
	switch a := AlertType(strings.ToUpper(strings.TrimSpace(s))); a {
	case AlertPanic, AlertDanger, AlertSuspicious, AlertOK:
		return a, nil
	}
	return "", ErrInvalidAlertType
}

// DefaultText is the body used when an alert is raised without text.
func (a AlertType) DefaultText() string {
	switch a {
	case AlertPanic:
		return "PÂNICO"
	case AlertDanger:
		return "PERIGO"
	case AlertSuspicious:
		return "ATITUDE SUSPEITA"
	case AlertOK:
		return "TUDO OK"
	}
	return string(a)
}

// Neighborhood is a community unit with a live video feed.
type Neighborhood struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IframeURL string    `json:"iframe_url"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the subset of account fields the application reads and writes.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id"`
	Plan           PlanID     `json:"plan"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CanViewCameras reports whether the user's plan unlocks camera feeds.
// Admins always can.
func (u User) CanViewCameras() bool {
	return u.Role == RoleAdmin || u.Plan != PlanFree
}

// CameraProtocol holds the ingest addresses generated for an integrator's
// camera.
type CameraProtocol struct {
	ID          uuid.UUID `json:"id"`
	CameraName  string    `json:"camera_name"`
	RTMP        string    `json:"rtmp"`
	RTSP        string    `json:"rtsp"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
