package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mediconnect/internal/api"
	"mediconnect/internal/apperr"
	mw "mediconnect/internal/middleware"
	"mediconnect/internal/model"
	"mediconnect/internal/service"
)

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAppointmentRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		h.fail(w, err)
		return
	}
	a, err := h.svc.Appointments.Create(r.Context(), identity(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusCreated, api.NewAppointment(a))
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	in := service.ListAppointmentsInput{Page: queryInt(r, "page"), Limit: queryInt(r, "limit")}
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := model.ParseStatus(s)
		if err != nil {
			h.fail(w, apperr.Invalid("Invalid status"))
			return
		}
		in.Status = st
	}
	items, total, page, err := h.svc.Appointments.List(r.Context(), identity(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewAppointmentList(items, total, page))
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Appointments.Get(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewAppointment(a))
}

func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateAppointmentRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		h.fail(w, err)
		return
	}
	a, err := h.svc.Appointments.Update(r.Context(), identity(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewAppointment(a))
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Appointments.Delete(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, map[string]string{"message": "Appointment deleted successfully"})
}

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.ListDoctorsInput{
		Speciality: q.Get("speciality"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
	if v := q.Get("isOnline"); v != "" {
		online, err := strconv.ParseBool(v)
		if err != nil {
			h.fail(w, apperr.Invalid("isOnline must be true or false"))
			return
		}
		in.IsOnline = &online
	}
	ds, total, page, err := h.svc.Doctors.List(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.DoctorList{Doctors: api.NewDoctors(ds), Pagination: api.NewPagination(page, total)})
}

func (h *Handler) onlineDoctors(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.Doctors.ListOnline(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.OnlineDoctors{Doctors: api.NewDoctors(ds)})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req api.SetAvailabilityRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	d, err := h.svc.Doctors.SetAvailability(r.Context(), identity(r), *req.IsOnline)
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewDoctor(*d))
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	a, period, err := h.svc.Analytics.Get(r.Context(), identity(r), r.URL.Query().Get("period"))
	if err != nil {
		h.fail(w, err)
		return
	}
	mw.WriteJSON(w, http.StatusOK, api.NewAnalytics(a, period))
}
