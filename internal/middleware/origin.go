package middleware

import (
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// OriginCheck rejects state changing requests sent from foreign origins.
// Requests without Origin and Referer (curl, tests) are let through; the
// session cookie is SameSite=Lax on top of this.
func OriginCheck(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				if referer := r.Header.Get("Referer"); referer != "" {
					if u, err := url.Parse(referer); err == nil {
						origin = u.Scheme + "://" + u.Host
					}
				}
			}

			if origin == "" || origin == requestOrigin(r) || allowed[origin] {
				next.ServeHTTP(w, r)
				return
			}

			log.Warnf("origin check: origin [%s] not allowed for [%s %s]", origin, r.Method, r.URL.Path)
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
