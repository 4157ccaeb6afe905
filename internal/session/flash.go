package session

import (
	"encoding/base64"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

const flashCookieName = "logos_flash"

// Level classifies a flash message.
type Level string

// Flash levels, rendered as CSS classes.
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Level   Level
	Message string
}

// SetFlash queues messages for the next page. It replaces any messages not
// yet shown.
func (m *Manager) SetFlash(w http.ResponseWriter, flashes ...Flash) {
	if len(flashes) == 0 {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encodeFlashes(flashes),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
}

// PopFlashes returns the queued messages and clears them. A malformed cookie
// yields no messages.
func (m *Manager) PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, m.expiredCookie(flashCookieName))

	flashes, err := decodeFlashes(c.Value)
	if err != nil {
		return nil
	}
	return flashes
}

func encodeFlashes(flashes []Flash) string {
	var e jx.Encoder
	e.ArrStart()
	for _, f := range flashes {
		e.ObjStart()
		e.FieldStart("level")
		e.Str(string(f.Level))
		e.FieldStart("message")
		e.Str(f.Message)
		e.ObjEnd()
	}
	e.ArrEnd()
	return base64.RawURLEncoding.EncodeToString(e.Bytes())
}

func decodeFlashes(value string) ([]Flash, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.Wrap(err, "decode base64")
	}

	var out []Flash
	if err := jx.DecodeBytes(raw).Arr(func(d *jx.Decoder) error {
		var f Flash
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "level":
				v, err := d.Str()
				f.Level = Level(v)
				return err
			case "message":
				v, err := d.Str()
				f.Message = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		out = append(out, f)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode flashes")
	}
	return out, nil
}
