package weight

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/goburrow/serial"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/errs"
)

// Source identifies where the current reading comes from.
type Source string

const (
	SourceIdle      Source = "idle"
	SourceSerial    Source = "serial"
	SourceSimulated Source = "simulated"
)

// Reading is a snapshot of the last-known weight. WeightKg and CapturedAt are
// nil until a sampler has produced a value.
type Reading struct {
	WeightKg   *float64   `json:"weight_kg"`
	CapturedAt *time.Time `json:"captured_at"`
	Connected  bool       `json:"connected"`
	Source     Source     `json:"source"`
}

// Config is the pending connection configuration applied by the next Connect.
type Config struct {
	Port     string  `json:"port"`
	BaudRate int     `json:"baud_rate"`
	ByteSize int     `json:"byte_size"`
	Parity   string  `json:"parity"`
	StopBits float64 `json:"stop_bits"`
	Simulate bool    `json:"simulate"`
}

// PortOpener opens a serial port. Swapped out in tests.
type PortOpener func(cfg *serial.Config) (io.ReadWriteCloser, error)

// Random-walk simulation bounds and timing from the indicator's typical
// live-load range.
const (
	simInitialMin = 1200.0
	simInitialMax = 1500.0
	simMaxStep    = 2.0

	samplerGracePeriod = 500 * time.Millisecond
	readErrorBackoff   = 200 * time.Millisecond
)

// Manager owns the connection to the weight indicator and keeps the latest
// reading cached so API reads never block on device I/O. One Manager instance
// exists per process; at most one background sampler runs at a time.
type Manager struct {
	readTimeout time.Duration
	simInterval time.Duration
	openPort    PortOpener

	// opMu serializes connect/disconnect transitions so two samplers can
	// never race on the shared reading state.
	opMu sync.Mutex
	port io.ReadWriteCloser
	stop chan struct{}
	done chan struct{}

	// mu guards the reading snapshot and the pending config.
	mu         sync.Mutex
	cfg        Config
	lastWeight *float64
	lastAt     *time.Time
	connected  bool
	source     Source
}

// NewManager creates a disconnected Manager. simulateByDefault seeds the
// pending config so a bare Connect on a dev box starts the simulator.
func NewManager(readTimeout, simInterval time.Duration, simulateByDefault bool) *Manager {
	return &Manager{
		readTimeout: readTimeout,
		simInterval: simInterval,
		openPort: func(cfg *serial.Config) (io.ReadWriteCloser, error) {
			return serial.Open(cfg)
		},
		cfg:    Config{Simulate: simulateByDefault},
		source: SourceIdle,
	}
}

// Configure atomically replaces the configuration used by the next Connect.
// It never opens a connection itself.
func (m *Manager) Configure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// Connect stops any existing session and starts a new sampler, simulated or
// serial depending on the pending config.
func (m *Manager) Connect() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stopSampler()

	m.mu.Lock()
	cfg := m.cfg
	m.mu.Unlock()

	if cfg.Simulate {
		m.setState(false, SourceSimulated)
		m.stop = make(chan struct{})
		m.done = make(chan struct{})
		go m.simulateLoop(m.stop, m.done)
		return nil
	}

	if cfg.Port == "" {
		return errs.Validation("serial port is required to connect")
	}

	port, err := m.openPort(serialConfig(cfg, m.readTimeout))
	if err != nil {
		return errs.Connection(fmt.Sprintf("failed to open serial port %s", cfg.Port), err)
	}

	m.port = port
	m.setState(true, SourceSerial)
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.readLoop(port, m.stop, m.done)
	return nil
}

// Disconnect stops the sampler, closes the device and resets to idle.
// Safe to call when already disconnected.
func (m *Manager) Disconnect() {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.stopSampler()
}

// Reading returns the last-known reading snapshot. Never blocks on device
// I/O; safe to call concurrently with sampler updates and connect/disconnect.
func (m *Manager) Reading() Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Reading{
		WeightKg:   m.lastWeight,
		CapturedAt: m.lastAt,
		Connected:  m.connected,
		Source:     m.source,
	}
}

// stopSampler signals the running sampler, waits a bounded grace period for
// it to exit, releases the device and resets the state to idle.
// Caller holds opMu.
func (m *Manager) stopSampler() {
	if m.stop != nil {
		close(m.stop)
		select {
		case <-m.done:
		case <-time.After(samplerGracePeriod):
			log.Println("weight sampler did not stop within grace period")
		}
		m.stop = nil
		m.done = nil
	}
	if m.port != nil {
		if err := m.port.Close(); err != nil {
			log.Printf("error closing serial port: %v", err)
		}
		m.port = nil
	}
	m.setState(false, SourceIdle)
}

func (m *Manager) setState(connected bool, source Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
	m.source = source
}

func (m *Manager) setReading(w float64) {
	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastWeight = &w
	m.lastAt = &now
}

// readLoop reads indicator lines until stopped. Timeouts and transient read
// errors keep the loop alive; lines with no numeric token are ignored.
func (m *Manager) readLoop(port io.ReadWriteCloser, stop, done chan struct{}) {
	defer close(done)

	buf := make([]byte, 256)
	var pending []byte

	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := port.Read(buf)
		if err != nil {
			if err == serial.ErrTimeout {
				continue
			}
			log.Printf("%v", errs.ReadTransient("indicator read failed", err))
			select {
			case <-stop:
				return
			case <-time.After(readErrorBackoff):
			}
			continue
		}
		if n == 0 {
			continue
		}

		pending = append(pending, buf[:n]...)
		for {
			idx := bytes.IndexByte(pending, '\n')
			if idx < 0 {
				break
			}
			line := string(pending[:idx])
			pending = pending[idx+1:]
			if w, ok := extractWeight(line); ok {
				m.setReading(w)
			}
		}
		// A stream with no newlines is noise, not frames.
		if len(pending) > 1024 {
			pending = pending[:0]
		}
	}
}

// simulateLoop produces a bounded random-walk reading at a fixed cadence so
// the operator UI stays usable without hardware.
func (m *Manager) simulateLoop(stop, done chan struct{}) {
	defer close(done)

	m.mu.Lock()
	w := simInitialMin + rand.Float64()*(simInitialMax-simInitialMin)
	if m.lastWeight != nil {
		w = *m.lastWeight
	}
	m.mu.Unlock()

	ticker := time.NewTicker(m.simInterval)
	defer ticker.Stop()

	for {
		w += rand.Float64()*2*simMaxStep - simMaxStep
		if w < 0 {
			w = 0
		}
		m.setReading(math.Round(w*100) / 100)

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// serialConfig maps the operator-supplied config onto the device library's,
// falling back to indicator-standard defaults.
func serialConfig(cfg Config, timeout time.Duration) *serial.Config {
	sc := &serial.Config{
		Address:  cfg.Port,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.ByteSize,
		StopBits: int(cfg.StopBits),
		Parity:   cfg.Parity,
		Timeout:  timeout,
	}
	if sc.BaudRate == 0 {
		sc.BaudRate = 9600
	}
	if sc.DataBits == 0 {
		sc.DataBits = 8
	}
	if sc.StopBits == 0 {
		sc.StopBits = 1
	}
	if sc.Parity == "" {
		sc.Parity = "N"
	}
	return sc
}
