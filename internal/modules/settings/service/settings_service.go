package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"toolhub/internal/modules/settings/port/out"
	"toolhub/internal/platform/config"
	apperrors "toolhub/internal/platform/errors"
)

// dataEndpointKey holds the saved data-endpoint descriptor consumed by
// pre-flight connectivity checks.
const dataEndpointKey = "data.endpoint"

// SettingsService exposes a closed set of typed accessors over a raw
// key/value store. Malformed stored values fall back to the caller's
// default rather than surfacing a parse error.
type SettingsService struct {
	store out.KVStore
	log   zerolog.Logger
}

func NewSettingsService(store out.KVStore, log zerolog.Logger) *SettingsService {
	return &SettingsService{store: store, log: log}
}

func (s *SettingsService) GetString(ctx context.Context, key, def string) (string, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return raw, nil
}

func (s *SettingsService) PutString(ctx context.Context, key, value string) error {
	if key == "" {
		return apperrors.ErrInvalidInput
	}
	return s.store.Put(ctx, key, value)
}

func (s *SettingsService) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	v, perr := strconv.ParseBool(raw)
	if perr != nil {
		s.log.Warn().Str("key", key).Str("value", raw).Msg("stored value is not a bool, using default")
		return def, nil
	}
	return v, nil
}

func (s *SettingsService) PutBool(ctx context.Context, key string, value bool) error {
	return s.PutString(ctx, key, strconv.FormatBool(value))
}

func (s *SettingsService) GetInt(ctx context.Context, key string, def int64) (int64, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	v, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		s.log.Warn().Str("key", key).Str("value", raw).Msg("stored value is not an integer, using default")
		return def, nil
	}
	return v, nil
}

func (s *SettingsService) PutInt(ctx context.Context, key string, value int64) error {
	return s.PutString(ctx, key, strconv.FormatInt(value, 10))
}

func (s *SettingsService) GetDuration(ctx context.Context, key string, def time.Duration) (time.Duration, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	v, perr := time.ParseDuration(raw)
	if perr != nil {
		s.log.Warn().Str("key", key).Str("value", raw).Msg("stored value is not a duration, using default")
		return def, nil
	}
	return v, nil
}

func (s *SettingsService) PutDuration(ctx context.Context, key string, value time.Duration) error {
	return s.PutString(ctx, key, value.String())
}

// GetJSON reports whether the key was present and decoded into target.
func (s *SettingsService) GetJSON(ctx context.Context, key string, target any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if uerr := json.Unmarshal([]byte(raw), target); uerr != nil {
		s.log.Warn().Str("key", key).Msg("stored value is not valid JSON, treating as absent")
		return false, nil
	}
	return true, nil
}

func (s *SettingsService) PutJSON(ctx context.Context, key string, value any) error {
	if key == "" {
		return apperrors.ErrInvalidInput
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, key, string(raw))
}

func (s *SettingsService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return apperrors.ErrInvalidInput
	}
	return s.store.Delete(ctx, key)
}

// DataEndpoint returns the saved endpoint descriptor, or a zero value
// when none has been saved yet.
func (s *SettingsService) DataEndpoint(ctx context.Context) (config.Endpoint, error) {
	var ep config.Endpoint
	_, err := s.GetJSON(ctx, dataEndpointKey, &ep)
	return ep, err
}

func (s *SettingsService) SetDataEndpoint(ctx context.Context, ep config.Endpoint) error {
	return s.PutJSON(ctx, dataEndpointKey, ep)
}
