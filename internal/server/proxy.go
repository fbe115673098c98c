package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/jonathan/profile-studio/internal/fetch"
)

// imageCacheControl lets browsers and CDNs keep proxied images for a day.
const imageCacheControl = "public, max-age=86400, s-maxage=86400"

// handleProxyImage fetches an allowlisted image server side. LinkedIn's CDN
// refuses hotlinked requests from other origins.
func (s *Server) handleProxyImage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing url parameter")
		return
	}
	if u, err := url.Parse(raw); err != nil || u.Host == "" {
		s.errorResponse(w, http.StatusBadRequest, "Invalid URL")
		return
	}
	if !s.allowImage(raw) {
		s.errorResponse(w, http.StatusForbidden, "URL domain not allowed")
		return
	}

	res, err := s.images.FetchWith(r.Context(), raw, fetch.PlatformOptions(fetch.PlatformLinkedIn))
	if err != nil {
		var ferr *fetch.Error
		if errors.As(err, &ferr) && ferr.StatusCode >= 400 {
			s.errorResponse(w, ferr.StatusCode, fmt.Sprintf("Upstream returned %d", ferr.StatusCode))
			return
		}
		log.Printf("[PROXY] Image fetch failed for %s: %v", raw, err)
		s.errorResponse(w, http.StatusBadGateway, "Failed to fetch image")
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", imageCacheControl)
	if res.FromCache {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)
}
