package httptransport

import (
	"net/http"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/chain"
	"meme-hunter/internal/program"
	"meme-hunter/internal/store"
)

type AdminHandlers struct {
	svc      *relay.Service
	defaults program.Options
}

func NewAdminHandlers(svc *relay.Service, defaults program.Options) *AdminHandlers {
	return &AdminHandlers{svc: svc, defaults: defaults}
}

// Initialize creates the game config with the token subject as authority.
func (h *AdminHandlers) Initialize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, _ := OperatorFromContext(r.Context())
		var in relay.InitializeInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Initialize(r.Context(), op.Address, in, h.defaults)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *AdminHandlers) Deposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, _ := OperatorFromContext(r.Context())
		var body struct {
			Amount uint64 `json:"amount"`
		}
		if err := decodeJSON(r, &body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Deposit(r.Context(), op.Address, body.Amount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ClaimReward pays out of a room vault; the token subject must be the
// configured relayer.
func (h *AdminHandlers) ClaimReward() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, _ := OperatorFromContext(r.Context())
		room, ok := addressParam(w, r, "room")
		if !ok {
			return
		}
		var in relay.ClaimInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.ClaimReward(r.Context(), op.Address, room, in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) Fund() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in relay.FundInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Fund(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		f := store.LedgerFilter{Kind: q.Get("kind"), RefType: q.Get("ref_type"), RefID: q.Get("ref_id")}
		if v := q.Get("address"); v != "" {
			addr, err := chain.ParseAddress(v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_address")
				return
			}
			f.Address = addr
		}
		resp, err := h.svc.Ledger(r.Context(), f, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
