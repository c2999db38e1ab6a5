package middleware

import (
	"net/http"
	"strings"
)

// ContentSecurityPolicy builds the CSP for the web client. Loading the
// Google Maps script is only allowed when maps are enabled.
func ContentSecurityPolicy(mapsEnabled bool) string {
	scriptSrc := []string{"'self'", "https://cdn.jsdelivr.net"}
	if mapsEnabled {
		scriptSrc = append(scriptSrc, "https://maps.googleapis.com")
	}
	imgSrc := []string{"'self'", "data:", "https://maps.gstatic.com", "https://maps.googleapis.com", "https://www.google.com"}
	frameSrc := []string{"https://www.google.com", "https://maps.google.com", "https://www.google.com/maps"}

	return strings.Join([]string{
		"default-src 'self'",
		"base-uri 'self'",
		"object-src 'none'",
		"frame-ancestors 'self'",
		"script-src " + strings.Join(scriptSrc, " "),
		"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com",
		"font-src 'self' https://fonts.gstatic.com data:",
		"img-src " + strings.Join(imgSrc, " "),
		"connect-src 'self'",
		"frame-src " + strings.Join(frameSrc, " "),
	}, "; ") + ";"
}

func SecurityHeaders(mapsEnabled bool) func(http.Handler) http.Handler {
	csp := ContentSecurityPolicy(mapsEnabled)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("Permissions-Policy", "geolocation=(self)")
			h.Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}

// LimitBody caps request bodies at n bytes. Handlers see a
// *http.MaxBytesError when the limit is exceeded.
func LimitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
