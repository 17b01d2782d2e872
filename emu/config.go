package emu

import (
	"io"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"mos6502/emu/log"
	"mos6502/hw"
	"mos6502/hw/hwio"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config describes a machine: a CPU, its memory and what to load in it.
type Config struct {
	Machine MachineConfig `toml:"machine"`
	Console ConsoleConfig `toml:"console"`
	Images  []ImageConfig `toml:"image"`

	TraceOut io.WriteCloser `toml:"-"`
}

type MachineConfig struct {
	Model      hw.Model `toml:"model"`
	MemorySize int      `toml:"memory_size"`

	// Entry overrides the PC after reset, -1 keeps it.
	Entry          int  `toml:"entry"`
	UseResetVector bool `toml:"use_reset_vector"`

	MaxCycles  uint64 `toml:"max_cycles"`
	StopOnTrap bool   `toml:"stop_on_trap"`

	// SuccessPC is the address of the trap reached by a successful program,
	// -1 if there's none.
	SuccessPC int `toml:"success_pc"`
}

type ConsoleConfig struct {
	// Out is the address of the console output port, -1 disables it.
	Out int `toml:"out"`
}

const (
	FormatBin  = "bin"
	FormatDump = "dump"
)

type ImageConfig struct {
	Path    string `toml:"path"`
	Address int    `toml:"address"`
	Format  string `toml:"format"`

	// ReadOnly write-protects the loaded bytes, writes are then ignored.
	ReadOnly bool `toml:"readonly"`
}

func DefaultConfig() Config {
	return Config{
		Machine: MachineConfig{
			Model:      hw.NMOS,
			MemorySize: hwio.DefaultSize,
			Entry:      -1,
			StopOnTrap: true,
			SuccessPC:  -1,
		},
		Console: ConsoleConfig{
			Out: -1,
		},
	}
}

// LoadConfig loads the machine configuration at path on top of the default
// one. Relative image paths are relative to the directory of path.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("Unknown config key").
			String("file", path).
			String("key", key.String()).
			End()
	}

	dir := filepath.Dir(path)
	for i := range cfg.Images {
		if p := cfg.Images[i].Path; p != "" && !filepath.IsAbs(p) {
			cfg.Images[i].Path = filepath.Join(dir, cfg.Images[i].Path)
		}
	}

	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EncodeConfig writes cfg in TOML.
func EncodeConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

func inAddrSpace(v int) bool { return v >= 0 && v <= 0xFFFF }

// Check validates the configuration, and fills in the image formats left
// empty.
func (cfg *Config) Check() error {
	mc := &cfg.Machine
	if mc.MemorySize < hwio.MinSize || mc.MemorySize > hwio.MaxSize {
		return errors.Wrapf(ErrInvalidConfig, "memory_size %#x not in [%#x, %#x]", mc.MemorySize, hwio.MinSize, hwio.MaxSize)
	}
	if mc.Entry != -1 && !inAddrSpace(mc.Entry) {
		return errors.Wrapf(ErrInvalidConfig, "entry %#x", mc.Entry)
	}
	if mc.SuccessPC != -1 && !inAddrSpace(mc.SuccessPC) {
		return errors.Wrapf(ErrInvalidConfig, "success_pc %#x", mc.SuccessPC)
	}
	if mc.UseResetVector && mc.MemorySize < int(hw.ResetVector)+2 {
		return errors.Wrapf(ErrInvalidConfig, "use_reset_vector with memory_size %#x", mc.MemorySize)
	}
	if out := cfg.Console.Out; out != -1 && (out < 0 || out >= mc.MemorySize) {
		return errors.Wrapf(ErrInvalidConfig, "console out %#x", out)
	}

	for i := range cfg.Images {
		img := &cfg.Images[i]
		if img.Path == "" {
			return errors.Wrapf(ErrInvalidConfig, "image %d: missing path", i)
		}
		switch img.Format {
		case "":
			img.Format = FormatBin
		case FormatBin, FormatDump:
		default:
			return errors.Wrapf(ErrInvalidConfig, "image %s: unknown format %q", img.Path, img.Format)
		}
		if img.Address < 0 || img.Address >= mc.MemorySize {
			return errors.Wrapf(ErrInvalidConfig, "image %s: address %#x", img.Path, img.Address)
		}
	}
	return nil
}
