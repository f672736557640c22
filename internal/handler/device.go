package handler

import (
	"log/slog"
	"net/http"

	"github.com/frisoboot/examenbuddy/internal/model"
	"github.com/frisoboot/examenbuddy/internal/store"
)

const deviceCookieName = "examenbuddy_device"

// deviceMiddleware makes sure every request carries a known device token.
// New or unrecognized browsers get a fresh token in a long-lived cookie; the
// token keys the device's stored profile.
func (h *Handler) deviceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(deviceCookieName); err == nil {
			token = cookie.Value
		}

		if token != "" {
			known, err := h.store.TouchDevice(token)
			if err != nil {
				slog.Error("touch device", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if !known {
				token = ""
			}
		}

		if token == "" {
			var err error
			token, err = h.store.CreateDevice()
			if err != nil {
				slog.Error("create device", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     deviceCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   60 * 60 * 24 * 365,
				HttpOnly: true,
				Secure:   h.config.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := model.ContextWithDevice(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func deviceToken(r *http.Request) string {
	return model.DeviceFromContext(r.Context())
}

// requireProfile loads the stored profile for the requesting device.
func (h *Handler) requireProfile(r *http.Request) (*model.UserProfile, error) {
	token := deviceToken(r)
	if token == "" {
		return nil, store.ErrNoProfile
	}
	return h.store.GetProfile(token)
}
