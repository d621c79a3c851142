package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/oomph-ac/netmove/interpolation"
	"github.com/oomph-ac/netmove/movement"
	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be configured for a server and its clients.
type Settings struct {
	// Movement is the movement config the server simulates with. It is sent to every client on
	// join, so clients never read it from their own settings.
	Movement      movement.Config
	Interpolation interpolation.Config

	Server struct {
		// Address is the UDP address the server listens on.
		Address string
		// TickRate is the number of ticks the server simulates per second.
		TickRate int
		// SnapshotInterval is the number of ticks between two snapshots sent to a client about its
		// own entity.
		SnapshotInterval int
		// MaxQueuedInputs is the number of inputs buffered per entity. Inputs arriving while the
		// queue is full are dropped.
		MaxQueuedInputs int
		// Validation configures how rejected movement is handled.
		Validation Basics
	}
	Client struct {
		// Address is the address of the server a client connects to.
		Address string
		// CorrectionSmoothing is the share of the position error removed by each snapshot.
		CorrectionSmoothing float64
	}
}

// Basics are the basic settings of a violation check.
type Basics struct {
	// Enabled is whether violations are counted at all.
	Enabled bool
	// FailBuffer is the number of recent failures needed before a failure counts as a violation.
	// MaxBuffer caps the number of recent failures remembered.
	FailBuffer float64
	MaxBuffer  float64
	// MaxViolations is the amount of violations after which a client is disconnected, if Enabled.
	MaxViolations float64
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	settings := Settings{
		Movement:      movement.DefaultConfig(),
		Interpolation: interpolation.DefaultConfig(),
	}

	settings.Server.Address = ":19133"
	settings.Server.TickRate = 30
	settings.Server.SnapshotInterval = 3
	settings.Server.MaxQueuedInputs = 64
	settings.Server.Validation = Basics{
		Enabled:       true,
		FailBuffer:    2,
		MaxBuffer:     4,
		MaxViolations: 20,
	}

	settings.Client.Address = "127.0.0.1:19133"
	settings.Client.CorrectionSmoothing = movement.DefaultCorrectionSmoothing
	return settings
}

// Validate returns an error if any of the settings can not be used.
func (s Settings) Validate() error {
	if err := s.Movement.Validate(); err != nil {
		return err
	}
	if err := s.Interpolation.Validate(); err != nil {
		return err
	}
	switch {
	case s.Server.TickRate <= 0:
		return fmt.Errorf("server tick rate must be positive, got %d", s.Server.TickRate)
	case s.Server.SnapshotInterval <= 0:
		return fmt.Errorf("server snapshot interval must be positive, got %d", s.Server.SnapshotInterval)
	case s.Server.MaxQueuedInputs <= 0:
		return fmt.Errorf("server input queue must hold at least one input, got %d", s.Server.MaxQueuedInputs)
	case !(s.Client.CorrectionSmoothing > 0 && s.Client.CorrectionSmoothing <= 1):
		return fmt.Errorf("client correction smoothing must be in (0, 1], got %v", s.Client.CorrectionSmoothing)
	}
	return nil
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return fmt.Errorf("failed encoding default settings: %v", err)
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed creating settings file: %v", err)
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from your settings file, and return an error if the file does not
// exist or holds settings that can not be used.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %v", err)
	}

	settings := DefaultSettings()
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %v", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %v", err)
	}
	return settings, nil
}

// LoadOrCreate loads the settings file at path, creating it with the default settings first if it
// does not exist.
func LoadOrCreate(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveDefault(path); err != nil {
			return Settings{}, err
		}
	}
	return Load(path)
}
