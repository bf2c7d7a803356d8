package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/hotel-reservation/pkg/auth"
	md "github.com/Astemirdum/hotel-reservation/pkg/middleware"
	"github.com/Astemirdum/hotel-reservation/pkg/validate"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/errs"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const msgRejected = "reservation rejected: check the dates, room number and room availability"

type Handler struct {
	reservationSvc ReservationService
	log            *zap.Logger
}

func New(reservationSvc ReservationService, log *zap.Logger) *Handler {
	return &Handler{
		reservationSvc: reservationSvc,
		log:            log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.AuthContext,
	)
	h.register(api)

	return e
}

func (h *Handler) register(g *echo.Group) {
	g.GET("/reservations", h.ListReservations)
	g.POST("/reservations", h.CreateReservation)
	g.GET("/reservations/:id", h.GetReservation)
	g.PUT("/reservations/:id", h.UpdateReservation)
	g.DELETE("/reservations/:id", h.DeleteReservation)
	g.GET("/rooms/:room/availability", h.RoomAvailability)
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// ListReservations shows admins everything and other users their own stays.
func (h *Handler) ListReservations(c echo.Context) error {
	ctx := c.Request().Context()
	userName, err := auth.GetUserName(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	items, err := h.reservationSvc.ListAll(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !auth.IsAdmin(ctx) {
		own := make([]model.Reservation, 0, len(items))
		for _, rsv := range items {
			if rsv.OwnerUserID == userName {
				own = append(own, rsv)
			}
		}
		items = own
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetReservation(c echo.Context) error {
	rsv, err := h.ownedReservation(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rsv)
}

func (h *Handler) CreateReservation(c echo.Context) error {
	ctx := c.Request().Context()
	userName, err := auth.GetUserName(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rsv := req.toModel()
	rsv.OwnerUserID = userName
	ok, err := h.reservationSvc.Create(ctx, &rsv)
	if err != nil {
		return h.internal(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, msgRejected)
	}
	return c.JSON(http.StatusCreated, rsv)
}

func (h *Handler) UpdateReservation(c echo.Context) error {
	ctx := c.Request().Context()
	existing, err := h.ownedReservation(c)
	if err != nil {
		return err
	}
	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rsv := req.toModel()
	rsv.ID = existing.ID
	if rsv.Status == "" {
		rsv.Status = existing.Status
	}
	ok, err := h.reservationSvc.Update(ctx, &rsv)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return h.internal(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, msgRejected)
	}
	return c.JSON(http.StatusOK, rsv)
}

func (h *Handler) DeleteReservation(c echo.Context) error {
	ctx := c.Request().Context()
	existing, err := h.ownedReservation(c)
	if err != nil {
		return err
	}
	deleted, err := h.reservationSvc.Delete(ctx, existing.ID)
	if err != nil {
		return h.internal(err)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, errs.ErrNotFound.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RoomAvailability(c echo.Context) error {
	room, err := strconv.Atoi(c.Param("room"))
	if err != nil || room <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "room is invalid")
	}
	start, err := model.ParseDate(c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start is invalid")
	}
	end, err := model.ParseDate(c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end is invalid")
	}
	if end.Before(start) {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrEndBeforeStart.Error())
	}
	q := model.AvailabilityQuery{RoomNumber: room, StartDate: start, EndDate: end}
	if excludeParam := c.QueryParam("excludeId"); excludeParam != "" {
		if q.ExcludeID, err = strconv.Atoi(excludeParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "excludeId is invalid")
		}
	}

	available, err := h.reservationSvc.IsRoomAvailable(c.Request().Context(), q)
	if err != nil {
		return h.internal(err)
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{Available: available})
}

// ownedReservation loads the :id reservation and refuses non-admins who do
// not own it.
func (h *Handler) ownedReservation(c echo.Context) (model.Reservation, error) {
	ctx := c.Request().Context()
	userName, err := auth.GetUserName(ctx)
	if err != nil {
		return model.Reservation{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return model.Reservation{}, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	rsv, err := h.reservationSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Reservation{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return model.Reservation{}, h.internal(err)
	}
	if !auth.IsAdmin(ctx) && rsv.OwnerUserID != userName {
		return model.Reservation{}, echo.NewHTTPError(http.StatusForbidden, errs.ErrForbidden.Error())
	}
	return rsv, nil
}

func (h *Handler) internal(err error) error {
	if errors.Is(err, errs.ErrUnknownOwner) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	h.log.Error("reservation service", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
