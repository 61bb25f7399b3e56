// Package prefs stores storefront UI preferences in
// ~/.config/storefront/prefs.toml: the theme and the email last used to sign
// in. The session credential is never written here.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds UI preferences.
type Prefs struct {
	Theme string `toml:"theme"`
	// LastEmail pre-fills the sign-in form.
	LastEmail string `toml:"last_email,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/storefront/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Normalize fills an empty theme and drops a last email that cannot be one.
func (p Prefs) Normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.LastEmail = normalizeEmail(p.LastEmail)
	return p
}

func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\n\"") {
		return ""
	}
	return email
}

// Load reads preferences from path. A missing, unreadable or malformed file
// yields the defaults; preferences never block startup.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults(), nil
	}
	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), nil
	}
	return p.Normalize(), nil
}

// Save writes preferences to path, creating directories as needed. The file
// is readable by the owner only since it holds an email address.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(p.Normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Update loads the file at path, applies fn and saves the result, so callers
// changing one field keep the others.
func Update(path string, fn func(*Prefs)) (Prefs, error) {
	if fn == nil {
		return Prefs{}, errors.New("update func is nil")
	}
	p, _ := Load(path)
	fn(&p)
	p = p.Normalize()
	if err := Save(path, p); err != nil {
		return p, err
	}
	return p, nil
}

// RememberEmail records the email of a successful sign-in.
func RememberEmail(path, email string) error {
	_, err := Update(path, func(p *Prefs) { p.LastEmail = email })
	return err
}

// ForgetEmail removes the remembered email.
func ForgetEmail(path string) error {
	_, err := Update(path, func(p *Prefs) { p.LastEmail = "" })
	return err
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
