package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/atalaia/internal/model"
)

var hosts = StreamHosts{RTMP: "ingest.atalaia.test", RTSP: "rtsp.atalaia.test"}

func TestGenerateProtocol(t *testing.T) {
	lat := -23.5
	p, err := GenerateProtocol(hosts, " Portao-Norte ", &lat, nil)
	require.NoError(t, err)

	assert.Equal(t, "portao-norte", p.CameraName)
	assert.Equal(t, "rtmp://ingest.atalaia.test/live/portao-norte", p.RTMP)
	assert.Equal(t, "rtsp://rtsp.atalaia.test:8554/portao-norte", p.RTSP)
	assert.Equal(t, &lat, p.Lat)
	assert.Nil(t, p.Lng)

	_, err = GenerateProtocol(hosts, "   ", nil, nil)
	assert.Error(t, err)

	_, err = GenerateProtocol(hosts, "portao norte", nil, nil)
	assert.Error(t, err)
}

func TestProtocolHandlers(t *testing.T) {
	store := newFakeStore()
	integrator := model.User{Name: "Carlos", Role: model.RoleIntegrator}

	rec := httptest.NewRecorder()
	PreviewProtocol(hosts).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/protocols/preview",
		strings.NewReader(`{"camera_name":"CAM1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rtmp://ingest.atalaia.test/live/cam1")
	assert.Empty(t, store.protocols)

	rec = httptest.NewRecorder()
	withUser(integrator, CreateProtocol(store, hosts)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/protocols",
		strings.NewReader(`{"camera_name":"CAM1","lat":1.5,"lng":2.5}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	ListProtocols(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/protocols", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.CameraProtocol
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Carlos", got[0].RequestedBy)
	assert.Equal(t, "rtsp://rtsp.atalaia.test:8554/cam1", got[0].RTSP)

	rec = httptest.NewRecorder()
	PreviewProtocol(hosts).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/protocols/preview",
		strings.NewReader(`{"camera_name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
