package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/model"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/weight"
)

// serialConnectRequest carries the operator-supplied indicator configuration.
type serialConnectRequest struct {
	Port     string  `json:"port"`
	BaudRate int     `json:"baud_rate"`
	ByteSize int     `json:"byte_size"`
	Parity   string  `json:"parity"`
	StopBits float64 `json:"stop_bits"`
	Simulate bool    `json:"simulate"`
}

func (r *serialConnectRequest) applyDefaults() {
	if r.BaudRate <= 0 {
		r.BaudRate = 9600
	}
	if r.ByteSize <= 0 {
		r.ByteSize = 8
	}
	if r.Parity == "" {
		r.Parity = "N"
	}
	if r.StopBits <= 0 {
		r.StopBits = 1
	}
}

type serialSettingsResponse struct {
	Port            string     `json:"port"`
	BaudRate        int        `json:"baud_rate"`
	ByteSize        int        `json:"byte_size"`
	Parity          string     `json:"parity"`
	StopBits        float64    `json:"stop_bits"`
	Simulate        bool       `json:"simulate"`
	LastConnectedAt *time.Time `json:"last_connected_at"`
	Connected       bool       `json:"connected"`
	LastWeightKg    *float64   `json:"last_weight_kg"`
	LastWeightTime  *time.Time `json:"last_weight_time"`
}

func settingsResponse(stored *model.SerialSettings, reading weight.Reading) serialSettingsResponse {
	return serialSettingsResponse{
		Port:            stored.Port,
		BaudRate:        stored.BaudRate,
		ByteSize:        stored.ByteSize,
		Parity:          stored.Parity,
		StopBits:        stored.StopBits,
		Simulate:        stored.Simulate,
		LastConnectedAt: stored.LastConnectedAt,
		Connected:       reading.Connected,
		LastWeightKg:    reading.WeightKg,
		LastWeightTime:  reading.CapturedAt,
	}
}

// GetSerialSettings handles GET /api/serial/settings.
func (h *Handler) GetSerialSettings(c *gin.Context) {
	stored, err := h.store.SerialSettings(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse(stored, h.weights.Reading()))
}

// ConnectSerial handles POST /api/serial/connect: applies the supplied
// configuration, opens the session and persists the settings on success.
func (h *Handler) ConnectSerial(c *gin.Context) {
	var req serialConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.applyDefaults()

	stored, err := h.store.SerialSettings(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.weights.Configure(weight.Config{
		Port:     req.Port,
		BaudRate: req.BaudRate,
		ByteSize: req.ByteSize,
		Parity:   req.Parity,
		StopBits: req.StopBits,
		Simulate: req.Simulate,
	})
	if err := h.weights.Connect(); err != nil {
		abortWithError(c, err)
		return
	}

	stored.Port = req.Port
	stored.BaudRate = req.BaudRate
	stored.ByteSize = req.ByteSize
	stored.Parity = req.Parity
	stored.StopBits = req.StopBits
	stored.Simulate = req.Simulate
	if req.Simulate {
		stored.LastConnectedAt = nil
	} else {
		now := time.Now().UTC()
		stored.LastConnectedAt = &now
	}
	if err := h.store.SaveSerialSettings(c.Request.Context(), stored); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, settingsResponse(stored, h.weights.Reading()))
}

// DisconnectSerial handles POST /api/serial/disconnect.
func (h *Handler) DisconnectSerial(c *gin.Context) {
	h.weights.Disconnect()

	stored, err := h.store.SerialSettings(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	stored.LastConnectedAt = nil
	if err := h.store.SaveSerialSettings(c.Request.Context(), stored); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connected": false})
}

// GetLiveWeight handles GET /api/weight/live.
func (h *Handler) GetLiveWeight(c *gin.Context) {
	c.JSON(http.StatusOK, h.weights.Reading())
}
