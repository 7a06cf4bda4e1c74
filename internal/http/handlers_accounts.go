package http

import (
	"errors"
	"log/slog"
	"net/http"

	"budgetrip/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.lineItems.Accounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List accounts failed", "error", err)
		internalError(w, "failed to list accounts")
		return
	}

	out := make([]accountPayload, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountPayload{
			Provider:   string(a.Provider),
			LastSynced: a.LastSynced,
		})
	}

	writeData(w, http.StatusOK, out)
}

// handleRefreshAccount serves POST /api/accounts/{provider}/refresh: an
// on-demand pull outside the periodic refresh schedule.
func (s *Server) handleRefreshAccount(w http.ResponseWriter, r *http.Request) {
	provider := core.Provider(r.PathValue("provider"))
	if err := provider.Validate(); err != nil {
		notFound(w, "unknown provider")
		return
	}

	if s.refresher == nil {
		unprocessable(w, "no providers configured")
		return
	}

	if err := s.refresher.RefreshOne(r.Context(), provider); err != nil {
		if errors.Is(err, core.ErrUnknownProvider) {
			unprocessable(w, "provider not connected")
			return
		}
		slog.ErrorContext(r.Context(), "Account refresh failed",
			"provider", provider, "error", err)
		internalError(w, "refresh failed")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"provider": string(provider)})
}
