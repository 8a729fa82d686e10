package handler

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/auth"
	"terminalfleet/src/repository"
)

// AgentAPIKey guards the agent webhook surface via the x-api-key
// header. With no key configured: development lets heartbeats through
// when allowDevBypass is set, production treats it as a server
// misconfiguration for every route.
func AgentAPIKey(config Config, allowDevBypass bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.AgentAPIKey == "" {
				if allowDevBypass && !config.IsProduction() {
					next.ServeHTTP(w, r)
					return
				}
				logger.Error("FLEET_AGENT_API_KEY not configured")
				respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "server misconfigured"})
				return
			}

			provided := r.Header.Get("x-api-key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(config.AgentAPIKey)) != 1 {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid api key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OrchestratorSecret guards the config snapshot endpoint. An unset
// secret is a fatal misconfiguration, never an open door: this is the
// one place ciphertext becomes plaintext.
func OrchestratorSecret(config Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.OrchestratorSecret == "" {
				logger.Error("FLEET_ORCHESTRATOR_SECRET not configured")
				respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "server misconfigured"})
				return
			}

			provided := r.Header.Get("x-orchestrator-secret")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(config.OrchestratorSecret)) != 1 {
				respondJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveUser loads the acting user from the x-user-id header into the
// request context. The journal application's session auth sits in
// front of this core and injects the header.
func ResolveUser(users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("x-user-id")
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}

			user, err := users.GetByID(r.Context(), uint(id))
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
