package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
)

// ProtocolStore is the part of the database the protocol handlers use.
type ProtocolStore interface {
	CreateCameraProtocol(ctx context.Context, arg database.CreateCameraProtocolParams) (database.CameraProtocol, error)
	ListCameraProtocols(ctx context.Context) ([]database.CameraProtocol, error)
}

// StreamHosts are the ingest servers cameras are pointed at.
type StreamHosts struct {
	RTMP string
	RTSP string
}

// GenerateProtocol builds the ingest addresses for a camera. The name is
// lower-cased.
func GenerateProtocol(hosts StreamHosts, cameraName string, lat, lng *float64) (model.CameraProtocol, error) {
	name := strings.ToLower(strings.TrimSpace(cameraName))
	if name == "" {
		return model.CameraProtocol{}, FormError("Camera name is required.")
	}
	if strings.ContainsAny(name, " /?#") {
		return model.CameraProtocol{}, FormError("Camera name cannot contain spaces or URL separators.")
	}

	return model.CameraProtocol{
		CameraName: name,
		RTMP:       fmt.Sprintf("rtmp://%s/live/%s", hosts.RTMP, name),
		RTSP:       fmt.Sprintf("rtsp://%s:8554/%s", hosts.RTSP, name),
		Lat:        lat,
		Lng:        lng,
	}, nil
}

type protocolRequest struct {
	CameraName string   `json:"camera_name"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

func decodeProtocol(w http.ResponseWriter, r *http.Request, hosts StreamHosts) (model.CameraProtocol, bool) {
	var req protocolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return model.CameraProtocol{}, false
	}

	p, err := GenerateProtocol(hosts, req.CameraName, req.Lat, req.Lng)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return model.CameraProtocol{}, false
	}
	return p, true
}

// PreviewProtocol returns the generated addresses without storing them.
func PreviewProtocol(hosts StreamHosts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := decodeProtocol(w, r, hosts)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

// CreateProtocol sends the generated addresses to the administrators.
func CreateProtocol(db ProtocolStore, hosts StreamHosts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := decodeProtocol(w, r, hosts)
		if !ok {
			return
		}

		user, _ := auth.CurrentUser(r.Context())
		row, err := db.CreateCameraProtocol(r.Context(), database.CreateCameraProtocolParams{
			CameraName:  p.CameraName,
			Rtmp:        p.RTMP,
			Rtsp:        p.RTSP,
			Lat:         database.NullFloat8(p.Lat),
			Lng:         database.NullFloat8(p.Lng),
			UserID:      database.UUID(user.ID),
			RequestedBy: user.Name,
		})
		if err != nil {
			respondStoreError(w, err, "Protocol")
			return
		}
		respondJSON(w, http.StatusCreated, row.ToModel())
	}
}

func ListProtocols(db ProtocolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.ListCameraProtocols(r.Context())
		if err != nil {
			respondStoreError(w, err, "Protocol")
			return
		}

		out := make([]model.CameraProtocol, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.ToModel())
		}
		respondJSON(w, http.StatusOK, out)
	}
}
