package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/query"
	"github.com/harentsoaR/clinic-api/internal/services"
)

func (h *Handler) CreatePatient(c *gin.Context) {
	var in services.CreatePatientInput
	if !bind(c, &in) {
		return
	}
	p, err := h.Patients.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	newSuccessResponse(c, http.StatusCreated, "Patient created successfully", p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	var params query.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		_ = c.Error(err)
		newErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	page, err := h.Patients.List(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Patients listed successfully", page)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.Patients.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Patient retrieved successfully", p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var in services.UpdatePatientInput
	if !bind(c, &in) {
		return
	}
	p, err := h.Patients.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Patient updated successfully", p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if err := h.Patients.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Patient deleted", nil)
}
