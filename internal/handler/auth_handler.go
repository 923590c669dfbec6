package handler

import (
	"net/http"

	"mediconnect/internal/api"
	mw "mediconnect/internal/middleware"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	sess, err := h.svc.Auth.Register(r.Context(), req.Input())
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusCreated, api.NewAuthResponse(sess))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	sess, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewAuthResponse(sess))
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profiles.Get(r.Context(), identity(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewUser(p))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateProfileRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	p, err := h.svc.Profiles.Update(r.Context(), identity(r), req.Input())
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewUser(p))
}
