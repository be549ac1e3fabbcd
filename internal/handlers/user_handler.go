package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
)

func (h *Handler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bind(c, &in) {
		return
	}
	res, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	newSuccessResponse(c, http.StatusCreated, "User registered successfully", res)
}

func (h *Handler) Login(c *gin.Context) {
	var in services.LoginInput
	if !bind(c, &in) {
		return
	}
	res, err := h.Users.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Login successful", res)
}

func (h *Handler) Refresh(c *gin.Context) {
	var in services.RefreshInput
	if !bind(c, &in) {
		return
	}
	res, err := h.Users.Refresh(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	newSuccessResponse(c, http.StatusOK, "Token refreshed", res)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	newSuccessResponse(c, http.StatusOK, "User retrieved successfully", user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var in services.UpdateUserInput
	if !bind(c, &in) {
		return
	}
	user, err := h.Users.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err, http.StatusBadRequest)
		return
	}
	newSuccessResponse(c, http.StatusOK, "User updated successfully", user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, http.StatusNotFound)
		return
	}
	newSuccessResponse(c, http.StatusOK, "User deleted", nil)
}
