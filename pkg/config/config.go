// Package config loads the tuning file for a kiln session. Every value has
// a default; a missing file is created with the defaults, unknown keys are
// reported and out-of-range values fall back to their default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the full tuning file.
type Settings struct {
	Session SessionSettings `toml:"session"`
	Wheel   WheelSettings   `toml:"wheel"`
	Firing  FiringSettings  `toml:"firing"`
	Glaze   GlazeSettings   `toml:"glaze"`
	Audio   AudioSettings   `toml:"audio"`
	Camera  CameraSettings  `toml:"camera"`
}

type SessionSettings struct {
	LoadingDelaySeconds float64 `toml:"loading_delay_seconds" comment:"Seconds the intro lingers before throwing starts"`
	FeedbackSeconds     float64 `toml:"feedback_seconds" comment:"Seconds a feedback message stays up"`
	FrameRate           int     `toml:"frame_rate" comment:"Frames per second of the session clock"`
}

type WheelSettings struct {
	SpinPerFrame float64 `toml:"spin_per_frame" comment:"Radians the wheel turns per frame"`
}

type FiringSettings struct {
	Step           float64 `toml:"step" comment:"Ramp progress per frame"`
	MaxTemperature float64 `toml:"max_temperature" comment:"Peak kiln temperature in degrees Celsius"`
}

type GlazeSettings struct {
	CanvasSize  int     `toml:"canvas_size" comment:"Side of the square glaze color map in pixels"`
	StampRadius float64 `toml:"stamp_radius" comment:"Brush radius in pixels"`
}

type AudioSettings struct {
	Enabled       bool    `toml:"enabled"`
	BaseFrequency float64 `toml:"base_frequency" comment:"Wheel hum at rest, in Hz"`
	PerRadian     float64 `toml:"per_radian" comment:"Hz added per radian of accumulated rotation"`
	Gain          float64 `toml:"gain"`
	SampleRate    int     `toml:"sample_rate"`
}

type CameraSettings struct {
	FovY float64    `toml:"fov" comment:"Vertical field of view in degrees"`
	Eye  [3]float64 `toml:"eye"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Session: SessionSettings{LoadingDelaySeconds: 2, FeedbackSeconds: 2, FrameRate: 60},
		Wheel:   WheelSettings{SpinPerFrame: 0.02},
		Firing:  FiringSettings{Step: 0.005, MaxTemperature: 1300},
		Glaze:   GlazeSettings{CanvasSize: 1024, StampRadius: 20},
		Audio:   AudioSettings{Enabled: true, BaseFrequency: 50, PerRadian: 10, Gain: 0.1, SampleRate: 44100},
		Camera:  CameraSettings{FovY: 60, Eye: [3]float64{0, 2, 5}},
	}
}

// LoadingDelay is the intro delay as a duration.
func (s *Settings) LoadingDelay() time.Duration {
	return seconds(s.Session.LoadingDelaySeconds)
}

// FeedbackDuration is how long a feedback message stays up.
func (s *Settings) FeedbackDuration() time.Duration {
	return seconds(s.Session.FeedbackSeconds)
}

// FrameInterval is the duration of one frame.
func (s *Settings) FrameInterval() time.Duration {
	return time.Second / time.Duration(s.Session.FrameRate)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// DefaultPath returns the settings file location under the user config
// directory, creating the directory if needed.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "kiln")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.toml"), nil
}

// Load reads the settings at path. A missing file is created with the
// defaults. A malformed file is reported and the defaults are used.
func Load(path string, logger *slog.Logger) (*Settings, error) {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("creating default settings file", "path", path)
			if err := Save(path, defaults); err != nil {
				logger.Warn("failed to create default settings file", "path", path, "err", err)
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	s, err := Parse(data, logger)
	if err != nil {
		logger.Warn("invalid settings file, using defaults", "path", path, "err", err)
		return defaults, nil
	}
	return s, nil
}

// Parse decodes TOML settings over the defaults and validates them.
// Unknown keys are logged, not rejected.
func Parse(data []byte, logger *slog.Logger) (*Settings, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(s)

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		for _, e := range strict.Errors {
			logger.Warn("unrecognised setting key", "key", strings.Join(e.Key(), "."))
		}
		s = Default()
		err = toml.Unmarshal(data, s)
	}
	if err != nil {
		return nil, err
	}
	s.Validate(logger)
	return s, nil
}

// Save writes s as TOML to path.
func Save(path string, s *Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate resets every out-of-range value to its default and logs it.
func (s *Settings) Validate(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	d := Default()
	reset := func(key string, got, want any) {
		logger.Warn("setting out of range, using default", "key", key, "value", got, "default", want)
	}

	if s.Session.LoadingDelaySeconds < 0 || s.Session.LoadingDelaySeconds > 60 {
		reset("session.loading_delay_seconds", s.Session.LoadingDelaySeconds, d.Session.LoadingDelaySeconds)
		s.Session.LoadingDelaySeconds = d.Session.LoadingDelaySeconds
	}
	if s.Session.FeedbackSeconds <= 0 || s.Session.FeedbackSeconds > 60 {
		reset("session.feedback_seconds", s.Session.FeedbackSeconds, d.Session.FeedbackSeconds)
		s.Session.FeedbackSeconds = d.Session.FeedbackSeconds
	}
	if s.Session.FrameRate < 1 || s.Session.FrameRate > 240 {
		reset("session.frame_rate", s.Session.FrameRate, d.Session.FrameRate)
		s.Session.FrameRate = d.Session.FrameRate
	}
	if s.Wheel.SpinPerFrame < 0 || s.Wheel.SpinPerFrame > 1 {
		reset("wheel.spin_per_frame", s.Wheel.SpinPerFrame, d.Wheel.SpinPerFrame)
		s.Wheel.SpinPerFrame = d.Wheel.SpinPerFrame
	}
	if s.Firing.Step <= 0 || s.Firing.Step > 1 {
		reset("firing.step", s.Firing.Step, d.Firing.Step)
		s.Firing.Step = d.Firing.Step
	}
	if s.Firing.MaxTemperature <= 0 || s.Firing.MaxTemperature > 2000 {
		reset("firing.max_temperature", s.Firing.MaxTemperature, d.Firing.MaxTemperature)
		s.Firing.MaxTemperature = d.Firing.MaxTemperature
	}
	if s.Glaze.CanvasSize < 16 || s.Glaze.CanvasSize > 4096 {
		reset("glaze.canvas_size", s.Glaze.CanvasSize, d.Glaze.CanvasSize)
		s.Glaze.CanvasSize = d.Glaze.CanvasSize
	}
	if s.Glaze.StampRadius <= 0 || s.Glaze.StampRadius > float64(s.Glaze.CanvasSize)/2 {
		reset("glaze.stamp_radius", s.Glaze.StampRadius, d.Glaze.StampRadius)
		s.Glaze.StampRadius = d.Glaze.StampRadius
	}
	if s.Audio.BaseFrequency <= 0 || s.Audio.BaseFrequency > 20000 {
		reset("audio.base_frequency", s.Audio.BaseFrequency, d.Audio.BaseFrequency)
		s.Audio.BaseFrequency = d.Audio.BaseFrequency
	}
	if s.Audio.PerRadian < 0 {
		reset("audio.per_radian", s.Audio.PerRadian, d.Audio.PerRadian)
		s.Audio.PerRadian = d.Audio.PerRadian
	}
	if s.Audio.Gain < 0 || s.Audio.Gain > 1 {
		reset("audio.gain", s.Audio.Gain, d.Audio.Gain)
		s.Audio.Gain = d.Audio.Gain
	}
	if s.Audio.SampleRate < 8000 || s.Audio.SampleRate > 192000 {
		reset("audio.sample_rate", s.Audio.SampleRate, d.Audio.SampleRate)
		s.Audio.SampleRate = d.Audio.SampleRate
	}
	if s.Camera.FovY <= 0 || s.Camera.FovY >= 180 {
		reset("camera.fov", s.Camera.FovY, d.Camera.FovY)
		s.Camera.FovY = d.Camera.FovY
	}
}
