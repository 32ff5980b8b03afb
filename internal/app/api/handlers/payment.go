package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/checkout/internal/app/service/checkout"
	"github.com/fatflowers/checkout/internal/app/service/payment_record"
	"github.com/fatflowers/checkout/internal/app/service/reconciliation"
	"github.com/fatflowers/checkout/internal/platform/payhere"
	"github.com/fatflowers/checkout/internal/platform/token"
	"github.com/fatflowers/checkout/pkg/config"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/response"
)

func checkoutErrorStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func notifyErrorStatus(err error) int {
	switch {
	case errors.Is(err, reconciliation.ErrNotificationInProgress):
		return http.StatusConflict
	case errors.Is(err, reconciliation.ErrInvalidSignature),
		errors.Is(err, reconciliation.ErrUnknownPayment),
		errors.Is(err, reconciliation.ErrReconciliation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Process Payment
// @Description  Creates a PENDING payment attempt and returns the signed PayHere checkout payload.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body checkout.Request true "Checkout request"
// @Success      201  {object}  handlers.RespProcessPayment
// @Failure      400  {object}  handlers.RespError
// @Failure      500  {object}  handlers.RespError
// @Router       /payments/process [post]
func ApiProcessPayment(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkout.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](err.Error(), nil))
			return
		}
		req.Token = token.FromAuthorizationHeader(c.GetHeader("Authorization"))

		res, err := svc.Process(c.Request.Context(), &req)
		if err != nil {
			status := checkoutErrorStatus(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				logctx.FromGin(c, log).Errorw("payment_process_failed", "err", err)
				if errors.Is(err, payhere.ErrMisconfigured) {
					msg = "payment gateway is not configured"
				} else {
					msg = "failed to create payment"
				}
			}
			c.JSON(status, response.ErrorT[any](msg, nil))
			return
		}
		c.JSON(http.StatusCreated, response.OKMessageT("Payment initiated", res))
	}
}

// @Summary      PayHere Notification
// @Description  Server-to-server callback from PayHere. Accepts form-urlencoded or JSON bodies.
// @Tags         Payment
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        request body payhere.Notification true "PayHere notification"
// @Success      200  {object}  handlers.RespNotify
// @Failure      400  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Failure      500  {object}  handlers.RespError
// @Router       /payments/notify [post]
func ApiPayHereNotify(svc *reconciliation.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var n payhere.Notification
		if err := c.ShouldBind(&n); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](err.Error(), nil))
			return
		}
		res, err := svc.HandleNotification(c.Request.Context(), &n)
		if err != nil {
			status := notifyErrorStatus(err)
			if status == http.StatusInternalServerError {
				logctx.FromGin(c, log).Errorw("payhere_notify_failed", "attempt_id", n.OrderID, "err", err)
			}
			c.JSON(status, response.ErrorT[any](err.Error(), nil))
			return
		}
		c.JSON(http.StatusOK, response.OKMessageT("Notification processed", res))
	}
}

func redirectWithQuery(target string, c *gin.Context) string {
	if c.Request.URL.RawQuery == "" {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	for k, vs := range c.Request.URL.Query() {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// @Summary      Payment Return
// @Description  Browser landing after a completed checkout; redirects to the frontend orders page.
// @Tags         Payment
// @Success      302
// @Router       /payments/return [get]
func ApiPaymentReturn(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, redirectWithQuery(cfg.Frontend.ReturnURL, c))
	}
}

// @Summary      Payment Cancel
// @Description  Browser landing after a cancelled checkout; redirects to the frontend cart page.
// @Tags         Payment
// @Success      302
// @Router       /payments/cancel [get]
func ApiPaymentCancel(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, redirectWithQuery(cfg.Frontend.CancelURL, c))
	}
}

// @Summary      Get Payment
// @Tags         Payment
// @Produce      json
// @Param        paymentId path string true "Payment ID"
// @Success      200  {object}  handlers.RespPayment
// @Failure      404  {object}  handlers.RespError
// @Router       /payments/{paymentId} [get]
func ApiGetPayment(store *payment_record.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := store.FindByID(c.Request.Context(), c.Param("paymentId"))
		writePayment(c, p, err)
	}
}

// @Summary      Get Latest Payment For Order
// @Tags         Payment
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Success      200  {object}  handlers.RespPayment
// @Failure      404  {object}  handlers.RespError
// @Router       /payments/order/{orderId} [get]
func ApiGetPaymentByOrder(store *payment_record.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := store.FindByOrderID(c.Request.Context(), c.Param("orderId"))
		writePayment(c, p, err)
	}
}

func writePayment(c *gin.Context, p any, err error) {
	switch {
	case errors.Is(err, payment_record.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](err.Error(), nil))
	case err != nil:
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](err.Error(), nil))
	default:
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// PaymentDeps groups what the payment routes need.
type PaymentDeps struct {
	Checkout       *checkout.Service
	Reconciliation *reconciliation.Service
	Store          *payment_record.Store
	Config         *config.Config
	Log            *zap.SugaredLogger
}

func RegisterPaymentRoutes(r gin.IRouter, d PaymentDeps) {
	r.POST("/process", ApiProcessPayment(d.Checkout, d.Log))
	r.POST("/notify", ApiPayHereNotify(d.Reconciliation, d.Log))
	r.GET("/return", ApiPaymentReturn(d.Config))
	r.GET("/cancel", ApiPaymentCancel(d.Config))
	r.GET("/order/:orderId", ApiGetPaymentByOrder(d.Store))
	r.GET("/:paymentId", ApiGetPayment(d.Store))
}
