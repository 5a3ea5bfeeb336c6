package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blog-platform/backend/internal/httpx"
	authmw "github.com/blog-platform/backend/internal/middleware/auth"
	"github.com/blog-platform/backend/internal/models"
	"github.com/blog-platform/backend/internal/repo"
	"github.com/blog-platform/backend/internal/util"
)

type UserHandler struct {
	Users *repo.UserRepo
	Posts *repo.PostRepo
}

func (h *UserHandler) Profile(c echo.Context) error {
	ident, _ := authmw.IdentityFrom(c)

	user, err := h.Users.ByID(c.Request().Context(), ident.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	return httpx.Success(c, http.StatusOK, "Profile fetched successfully", user)
}

func (h *UserHandler) Stats(c echo.Context) error {
	ident, _ := authmw.IdentityFrom(c)

	stats, err := h.Posts.StatsForAuthor(c.Request().Context(), ident.UserID)
	if err != nil {
		return err
	}

	return httpx.Success(c, http.StatusOK, "User stats fetched successfully", stats)
}

func (h *UserHandler) List(c echo.Context) error {
	role := c.QueryParam("role")
	if role != "" && role != models.RoleAdmin && role != models.RoleAuthor {
		return echo.NewHTTPError(http.StatusBadRequest, "Role must be either admin or author")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	from, limit := util.Calculate(page, size)

	users, total, err := h.Users.List(c.Request().Context(), role, c.QueryParam("search"), from, limit)
	if err != nil {
		return err
	}

	if page < 1 {
		page = 1
	}
	return httpx.Success(c, http.StatusOK, "Users fetched successfully", echo.Map{
		"users": users,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": util.Pages(total, limit),
		},
	})
}
