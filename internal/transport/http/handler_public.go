package httptransport

import (
	"net/http"
	"strconv"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/chain"

	"github.com/go-chi/chi/v5"
)

type PublicHandlers struct {
	svc *relay.Service
}

func NewPublicHandlers(svc *relay.Service) *PublicHandlers {
	return &PublicHandlers{svc: svc}
}

func (h *PublicHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

func (h *PublicHandlers) Config() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Config(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PublicHandlers) Pool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Pool(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PublicHandlers) Window() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, err := strconv.ParseUint(chi.URLParam(r, "slot"), 10, 64)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_slot")
			return
		}
		resp, err := h.svc.Window(r.Context(), slot)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PublicHandlers) Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := addressParam(w, r, "owner")
		if !ok {
			return
		}
		resp, err := h.svc.Session(r.Context(), owner)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PublicHandlers) AuthorizeSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in relay.AuthorizeSessionInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.AuthorizeSession(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *PublicHandlers) RevokeSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := addressParam(w, r, "owner")
		if !ok {
			return
		}
		var in relay.RevokeSessionInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if in.Owner.IsZero() {
			in.Owner = owner
		}
		if in.Owner != owner {
			WriteHTTPError(w, http.StatusBadRequest, "owner_mismatch")
			return
		}
		if err := h.svc.RevokeSession(r.Context(), in); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *PublicHandlers) Hunt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in relay.HuntInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Hunt(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PublicHandlers) HuntHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := addressParam(w, r, "address")
		if !ok {
			return
		}
		limit, offset := ParsePagination(r)
		resp, err := h.svc.HuntHistory(r.Context(), player, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PublicHandlers) Room() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, ok := addressParam(w, r, "room")
		if !ok {
			return
		}
		resp, err := h.svc.Room(r.Context(), room)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PublicHandlers) CreateRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in relay.CreateRoomInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.CreateRoom(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *PublicHandlers) SettleRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, ok := addressParam(w, r, "room")
		if !ok {
			return
		}
		var in relay.SettleRoomInput
		if err := decodeJSON(r, &in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if in.Room.IsZero() {
			in.Room = room
		}
		if in.Room != room {
			WriteHTTPError(w, http.StatusBadRequest, "room_mismatch")
			return
		}
		resp, err := h.svc.SettleRoom(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func addressParam(w http.ResponseWriter, r *http.Request, name string) (chain.Address, bool) {
	addr, err := chain.ParseAddress(chi.URLParam(r, name))
	if err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_address")
		return chain.Address{}, false
	}
	return addr, true
}
