package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/comigor/jargone-go/internal/logger"
	"github.com/comigor/jargone-go/internal/storage"
)

// ProfileKey is the storage key of the profile record.
const ProfileKey = "profile"

// Level is how deep an explanation should go.
type Level string

const (
	LevelBasic    Level = "basic"
	LevelDetailed Level = "detailed"
	LevelExpert   Level = "expert"
)

// ErrInvalidLevel is returned for levels other than basic, detailed, expert.
var ErrInvalidLevel = errors.New("invalid explanation level")

// ParseLevel validates s as a Level.
func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case LevelBasic, LevelDetailed, LevelExpert:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Profile holds the user's explanation preferences.
type Profile struct {
	ExplanationLevel Level  `json:"explanationLevel"`
	UserRole         string `json:"userRole"`
	DefaultContext   string `json:"defaultContext"`
}

// DefaultProfile is stored on first read.
func DefaultProfile() Profile {
	return Profile{ExplanationLevel: LevelBasic}
}

// Profiles reads and writes the singleton profile record.
type Profiles struct {
	kv storage.Store
}

func NewProfiles(kv storage.Store) *Profiles {
	return &Profiles{kv: kv}
}

// Get returns the stored profile, persisting the defaults if none exists.
func (p *Profiles) Get(ctx context.Context) (Profile, error) {
	raw, ok, err := p.kv.Get(ctx, ProfileKey)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if ok {
		var prof Profile
		if err := json.Unmarshal(raw, &prof); err == nil {
			if prof.ExplanationLevel == "" {
				prof.ExplanationLevel = LevelBasic
			}
			return prof, nil
		}
		logger.L.Warn("stored profile is unreadable; resetting to defaults", "error", err)
	}

	prof := DefaultProfile()
	if err := p.Save(ctx, prof); err != nil {
		return Profile{}, err
	}
	return prof, nil
}

// Save overwrites the stored profile.
func (p *Profiles) Save(ctx context.Context, prof Profile) error {
	if _, err := ParseLevel(string(prof.ExplanationLevel)); err != nil {
		return err
	}
	raw, err := json.Marshal(prof)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := p.kv.Set(ctx, ProfileKey, raw); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
