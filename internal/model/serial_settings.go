package model

import "time"

// SerialSettingsID is the fixed primary key of the singleton settings row.
const SerialSettingsID = 1

// SerialSettings is the persisted indicator configuration. Exactly one row
// exists; it is written on every successful connect so the operator's last
// working configuration survives a restart.
type SerialSettings struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Port            string     `gorm:"size:128" json:"port"`
	BaudRate        int        `gorm:"not null;default:9600" json:"baud_rate"`
	ByteSize        int        `gorm:"not null;default:8" json:"byte_size"`
	Parity          string     `gorm:"size:1;not null;default:N" json:"parity"`
	StopBits        float64    `gorm:"not null;default:1" json:"stop_bits"`
	Simulate        bool       `gorm:"not null" json:"simulate"`
	LastConnectedAt *time.Time `json:"last_connected_at"`
}

func (SerialSettings) TableName() string {
	return "serial_settings"
}
