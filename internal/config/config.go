// Package config holds the node's process-level and protocol-engine
// configuration: data directory, network addresses, protocol timings, and
// logger construction. Grounded on the teacher's src/config (bindAddr,
// data dir resolution, prefixed logrus formatter) and node.Config
// (protocol timing knobs), merged into one struct the way a smaller
// service typically does.
package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default configuration values (spec.md §9 Open Question 4: tau/propose
// tick/batch size are not specified by the source; these are the chosen
// defaults).
const (
	DefaultBindAddr        = "127.0.0.1:1337"
	DefaultLogLevel        = "debug"
	DefaultGossipDeadline  = 200 * time.Millisecond
	DefaultProposeDeadline = 500 * time.Millisecond
	DefaultCommitDeadline  = 1 * time.Second
	DefaultHeartbeatPeriod = 500 * time.Millisecond
	DefaultHeartbeatTau    = 2 * time.Second
	DefaultProposeTick     = 1 * time.Second
	DefaultProposeBatch    = 64
	DefaultElectionCheck   = 500 * time.Millisecond
)

// Config is the full configuration of one node.
type Config struct {
	// DataDir is the top-level directory containing keys, the chain
	// index, block files, and the peer list.
	DataDir string `mapstructure:"datadir"`

	// BindAddr is this node's own listen address, and also the address
	// it advertises to peers.
	BindAddr string `mapstructure:"listen"`

	// Peers is the list of other cluster members' addresses, supplied by
	// the Bootstrapper (spec.md §1) or loaded from peers.json.
	Peers []string `mapstructure:"peers"`

	LogLevel string `mapstructure:"log"`
	LogFile  string `mapstructure:"log-file"`

	GossipDeadline  time.Duration `mapstructure:"gossip-deadline"`
	ProposeDeadline time.Duration `mapstructure:"propose-deadline"`
	CommitDeadline  time.Duration `mapstructure:"commit-deadline"`
	HeartbeatPeriod time.Duration `mapstructure:"heartbeat-period"`
	HeartbeatTau    time.Duration `mapstructure:"heartbeat-tau"`
	ProposeTick     time.Duration `mapstructure:"propose-tick"`
	ProposeBatch    int           `mapstructure:"propose-batch"`
	ElectionCheck   time.Duration `mapstructure:"election-check"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a Config populated with the package defaults.
func NewDefaultConfig() *Config {
	return &Config{
		DataDir:         DefaultDataDir(),
		BindAddr:        DefaultBindAddr,
		LogLevel:        DefaultLogLevel,
		GossipDeadline:  DefaultGossipDeadline,
		ProposeDeadline: DefaultProposeDeadline,
		CommitDeadline:  DefaultCommitDeadline,
		HeartbeatPeriod: DefaultHeartbeatPeriod,
		HeartbeatTau:    DefaultHeartbeatTau,
		ProposeTick:     DefaultProposeTick,
		ProposeBatch:    DefaultProposeBatch,
		ElectionCheck:   DefaultElectionCheck,
	}
}

// Logger returns a formatted logrus Entry tagged with this node's address,
// constructing the underlying *logrus.Logger on first use. Mirrors the
// teacher's Config.Logger(): prefixed console formatter, optional
// file-hook when LogFile is set.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			pathMap := lfshook.PathMap{
				logrus.InfoLevel:  c.LogFile,
				logrus.WarnLevel:  c.LogFile,
				logrus.ErrorLevel: c.LogFile,
			}
			c.logger.Hooks.Add(lfshook.NewHook(pathMap, &logrus.TextFormatter{}))
		}
	}
	return c.logger.WithField("node", c.BindAddr)
}

// LogLevel parses a level name, defaulting to Debug on anything
// unrecognised.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}

// DefaultDataDir resolves a per-OS default data directory, mirroring the
// teacher's DefaultDataDir/HomeDir helpers.
func DefaultDataDir() string {
	home := HomeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, ".auditledger")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "AUDITLEDGER")
	default:
		return filepath.Join(home, ".auditledger")
	}
}

// HomeDir returns the current user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
