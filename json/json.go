// Package json persists the auth cookie jar between CLI invocations.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// envelope is the v1 wire format for a persisted cookie set.
type envelope struct {
	Version int         `json:"version"`
	URL     string      `json:"url"`
	SavedAt time.Time   `json:"saved_at"`
	Cookies []cookieDTO `json:"cookies"`
}

type cookieDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MarshalCookies serializes the cookies a jar sends to u.
func MarshalCookies(u *url.URL, cookies []*http.Cookie) ([]byte, error) {
	env := envelope{
		Version: 1,
		URL:     u.String(),
		SavedAt: time.Now().UTC(),
		Cookies: make([]cookieDTO, len(cookies)),
	}
	for i, c := range cookies {
		env.Cookies[i] = cookieDTO{Name: c.Name, Value: c.Value}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalCookies deserializes a v1 envelope, returning the URL the
// cookies belong to.
func UnmarshalCookies(data []byte) (*url.URL, []*http.Cookie, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	u, err := url.Parse(env.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse url: %w", err)
	}
	cookies := make([]*http.Cookie, len(env.Cookies))
	for i, c := range env.Cookies {
		cookies[i] = &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"}
	}
	return u, cookies, nil
}

// SaveJar writes the cookies jar holds for u to path, creating parent
// directories as needed. The file is replaced atomically.
func SaveJar(path string, jar http.CookieJar, u *url.URL) error {
	data, err := MarshalCookies(u, jar.Cookies(u))
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// LoadJar restores cookies saved for u into jar. A missing file, or one
// saved for a different server, loads nothing.
func LoadJar(path string, jar http.CookieJar, u *url.URL) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	saved, cookies, err := UnmarshalCookies(data)
	if err != nil {
		return err
	}
	if saved.Scheme != u.Scheme || saved.Host != u.Host {
		return nil
	}
	jar.SetCookies(u, cookies)
	return nil
}
