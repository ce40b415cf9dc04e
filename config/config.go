// SPDX-License-Identifier: EPL-2.0

// Package config loads session settings from the environment. Nothing is
// written back.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidChannels   = errors.New("channels must be 1 or 2")
	ErrInvalidBlock      = errors.New("block size must be positive")
	ErrInvalidBitDepth   = errors.New("record bit depth must be 16, 24 or 32")
	ErrInvalidInterval   = errors.New("meter interval must be positive")
	ErrInvalidVolume     = errors.New("input volume must be in [0, 1]")
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Engine
	SampleRate  int // MIXDECK_SAMPLE_RATE
	Channels    int // MIXDECK_CHANNELS
	BlockFrames int // MIXDECK_BLOCK_FRAMES

	// Session
	RecordBitDepth int     // MIXDECK_RECORD_BIT_DEPTH
	InputVolume    float64 // MIXDECK_INPUT_VOLUME

	// Metering
	MeterInterval time.Duration // MIXDECK_METER_INTERVAL, Go duration syntax

	// Logging
	LogLevel    string // MIXDECK_LOG_LEVEL
	LogCapacity int    // MIXDECK_LOG_CAPACITY, entries kept for display
}

// Load reads configuration from environment variables with sane defaults.
// Unparsable values fall back to the default.
func Load() Config {
	return Config{
		SampleRate:  envInt("MIXDECK_SAMPLE_RATE", 44100),
		Channels:    envInt("MIXDECK_CHANNELS", 2),
		BlockFrames: envInt("MIXDECK_BLOCK_FRAMES", 1024),

		RecordBitDepth: envInt("MIXDECK_RECORD_BIT_DEPTH", 16),
		InputVolume:    envFloat("MIXDECK_INPUT_VOLUME", 0.8),

		MeterInterval: envDuration("MIXDECK_METER_INTERVAL", 50*time.Millisecond),

		LogLevel:    envStr("MIXDECK_LOG_LEVEL", "info"),
		LogCapacity: envInt("MIXDECK_LOG_CAPACITY", 500),
	}
}

// Validate reports the first setting the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, c.SampleRate)
	case c.Channels != 1 && c.Channels != 2:
		return fmt.Errorf("%w: %d", ErrInvalidChannels, c.Channels)
	case c.BlockFrames <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidBlock, c.BlockFrames)
	case c.RecordBitDepth != 16 && c.RecordBitDepth != 24 && c.RecordBitDepth != 32:
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, c.RecordBitDepth)
	case c.MeterInterval <= 0:
		return fmt.Errorf("%w: %v", ErrInvalidInterval, c.MeterInterval)
	case c.InputVolume < 0 || c.InputVolume > 1:
		return fmt.Errorf("%w: %v", ErrInvalidVolume, c.InputVolume)
	}
	return nil
}

// BlockDuration is the wall-clock length of one engine block.
func (c Config) BlockDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.BlockFrames) * time.Second / time.Duration(c.SampleRate)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
